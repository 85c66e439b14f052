// Package domain contains the core domain models for the requirements manifest.
package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// Manifest represents a parsed requirements manifest: a set of uniquely
// named requirements plus the dependency edges between them.
type Manifest struct {
	reqs         map[InternedString]Requirement
	names        []InternedString
	installOrder []InternedString
}

// NewManifest creates a new empty Manifest.
func NewManifest() *Manifest {
	return &Manifest{
		reqs: make(map[InternedString]Requirement),
	}
}

// Add adds a requirement to the manifest.
// It returns an error if a requirement with the same name already exists.
func (m *Manifest) Add(r *Requirement) error {
	if _, exists := m.reqs[r.Name]; exists {
		return zerr.With(ErrDuplicateDependency, "package", r.Name.String())
	}
	m.reqs[r.Name] = *r
	m.names = append(m.names, r.Name)
	return nil
}

// Requirement returns the requirement with the given name.
func (m *Manifest) Requirement(name InternedString) (Requirement, bool) {
	r, ok := m.reqs[name]
	return r, ok
}

// Len returns the number of requirements, implicit ones included.
func (m *Manifest) Len() int {
	return len(m.reqs)
}

// Validate checks that every referenced dependency exists and that the
// dependency graph is acyclic, using a depth-first topological sort.
// It populates the install order (dependencies before dependents).
func (m *Manifest) Validate() error {
	m.installOrder = make([]InternedString, 0, len(m.reqs))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		req, exists := m.reqs[u]
		if !exists {
			return zerr.With(ErrMissingDependency, "package", u.String())
		}

		for _, dep := range req.Requires {
			if visited[dep] == 1 {
				return m.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		m.installOrder = append(m.installOrder, u)
		return nil
	}

	// Iterate in declaration order so disconnected entries keep a
	// deterministic position in the install order.
	for _, name := range m.names {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (m *Manifest) buildCycleError(path []InternedString, dep InternedString) error {
	cyclePath := ""
	startIdx := -1
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i].String() + " -> "
	}
	cyclePath += dep.String()
	return zerr.With(ErrCycleDetected, "cycle", cyclePath)
}

// Walk returns an iterator that yields requirements in install order
// (dependencies first). It assumes Validate() has been called and returned nil.
func (m *Manifest) Walk() iter.Seq[Requirement] {
	return func(yield func(Requirement) bool) {
		for _, name := range m.installOrder {
			if !yield(m.reqs[name]) {
				return
			}
		}
	}
}

// Declared returns an iterator over requirements in declaration order,
// implicit entries last. It does not require Validate().
func (m *Manifest) Declared() iter.Seq[Requirement] {
	return func(yield func(Requirement) bool) {
		for _, name := range m.names {
			if !yield(m.reqs[name]) {
				return
			}
		}
	}
}
