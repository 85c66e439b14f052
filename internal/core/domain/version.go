package domain

import (
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// Version is a dotted-numeric version such as "1.37" or "4.2.1".
//
// Manifest annotations are not semver ("built on 1.37" carries no patch
// component, let alone a "v" prefix), so versions compare part-wise with
// missing parts treated as zero: 1.37 == 1.37.0 < 1.37.1.
type Version struct {
	raw   string
	parts []int
}

// ParseVersion parses a dotted-numeric version string.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if !versionPattern.MatchString(s) {
		return Version{}, zerr.With(ErrInvalidVersion, "version", s)
	}

	fields := strings.Split(s, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			// Only reachable for absurdly large components.
			return Version{}, zerr.With(ErrInvalidVersion, "version", s)
		}
		parts[i] = n
	}

	return Version{raw: s, parts: parts}, nil
}

// MustParseVersion is ParseVersion for literals in tests and defaults.
// It panics on invalid input.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether the version is the unconstrained zero value.
func (v Version) IsZero() bool {
	return v.raw == ""
}

// String returns the original version string.
func (v Version) String() string {
	return v.raw
}

// Compare returns -1, 0 or 1 comparing v against o part-wise.
// Missing parts compare as zero.
func (v Version) Compare(o Version) int {
	n := len(v.parts)
	if len(o.parts) > n {
		n = len(o.parts)
	}
	for i := range n {
		var a, b int
		if i < len(v.parts) {
			a = v.parts[i]
		}
		if i < len(o.parts) {
			b = o.parts[i]
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v satisfies the given minimum.
// A zero minimum is always satisfied.
func (v Version) AtLeast(min Version) bool {
	if min.IsZero() {
		return true
	}
	return v.Compare(min) >= 0
}

// MinVersionFromAnnotation extracts a minimum-version constraint from a
// free-text manifest annotation. Recognized forms are "built on <v>",
// ">= <v>" and a bare version string; anything else yields no constraint.
func MinVersionFromAnnotation(annotation string) (Version, bool) {
	s := strings.TrimSpace(annotation)
	if s == "" {
		return Version{}, false
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "built on"):
		s = strings.TrimSpace(s[len("built on"):])
	case strings.HasPrefix(s, ">="):
		s = strings.TrimSpace(s[len(">="):])
	}

	v, err := ParseVersion(s)
	if err != nil {
		return Version{}, false
	}
	return v, true
}
