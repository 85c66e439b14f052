// Package manifest provides the requirements manifest loader.
//
// The format is line-oriented: a line is either a package name, a package
// name with a parenthetical annotation ("mutagen (built on 1.37)"), or an
// indented continuation denoting a transitive dependency of the preceding
// top-level entry. Blank lines and #-comments are ignored.
package manifest

import (
	"bufio"
	"io"
	"strings"

	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/zerr"
)

// Parse reads a manifest from r and returns the validated dependency graph.
//
// Transitive names that never appear on a top-level line are materialized as
// implicit leaf requirements so the whole graph resolves in one pass.
// Parsing is pure: the same input always yields the same manifest.
func Parse(r io.Reader) (*domain.Manifest, error) {
	m := domain.NewManifest()

	var current *domain.Requirement
	flush := func() error {
		if current == nil {
			return nil
		}
		if err := m.Add(current); err != nil {
			return err
		}
		current = nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		indented := raw[0] == ' ' || raw[0] == '\t'
		if !indented {
			// A top-level entry.
			if err := flush(); err != nil {
				return nil, err
			}
			name, annotation, err := parseEntry(trimmed, lineNo)
			if err != nil {
				return nil, err
			}
			req := &domain.Requirement{
				Name:       domain.NewInternedString(name),
				Annotation: annotation,
			}
			if min, ok := domain.MinVersionFromAnnotation(annotation); ok {
				req.MinVersion = min
			}
			current = req
			continue
		}

		// An indented continuation: a transitive dependency of the entry above.
		if current == nil {
			return nil, zerr.With(zerr.With(ErrDanglingContinuation, "line", lineNo), "text", trimmed)
		}
		name, _, err := parseEntry(trimmed, lineNo)
		if err != nil {
			return nil, err
		}
		appendRequire(current, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(err, "failed to read manifest")
	}
	if err := flush(); err != nil {
		return nil, err
	}

	materializeImplicit(m)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ErrDanglingContinuation is returned for an indented line with no preceding
// top-level entry.
var ErrDanglingContinuation = zerr.New("continuation line without a preceding entry")

// parseEntry splits a manifest line into name and optional annotation.
func parseEntry(text string, lineNo int) (name, annotation string, err error) {
	if idx := strings.Index(text, " ("); idx >= 0 {
		if !strings.HasSuffix(text, ")") {
			return "", "", invalidLine(text, lineNo, "unterminated annotation")
		}
		name = strings.TrimSpace(text[:idx])
		annotation = strings.TrimSpace(text[idx+2 : len(text)-1])
	} else {
		name = text
	}

	if name == "" || strings.ContainsAny(name, " \t()") {
		return "", "", invalidLine(text, lineNo, "malformed package name")
	}
	return name, annotation, nil
}

func invalidLine(text string, lineNo int, reason string) error {
	err := zerr.With(domain.ErrInvalidManifest, "line", lineNo)
	err = zerr.With(err, "text", text)
	return zerr.With(err, "reason", reason)
}

// appendRequire adds a transitive name, keeping the list duplicate-free.
func appendRequire(req *domain.Requirement, name string) {
	in := domain.NewInternedString(name)
	for _, existing := range req.Requires {
		if existing == in {
			return
		}
	}
	req.Requires = append(req.Requires, in)
}

// materializeImplicit adds leaf requirements for transitive names that have
// no top-level entry of their own, so Validate sees a complete graph.
func materializeImplicit(m *domain.Manifest) {
	var missing []domain.InternedString
	seen := make(map[domain.InternedString]bool)
	for req := range m.Declared() {
		for _, dep := range req.Requires {
			if _, ok := m.Requirement(dep); !ok && !seen[dep] {
				seen[dep] = true
				missing = append(missing, dep)
			}
		}
	}
	for _, name := range missing {
		// Add cannot fail here: names were just checked to be absent.
		_ = m.Add(&domain.Requirement{Name: name, Implicit: true})
	}
}
