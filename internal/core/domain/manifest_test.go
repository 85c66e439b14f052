package domain_test

import (
	"errors"
	"testing"

	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/zerr"
)

func req(name string, requires ...string) *domain.Requirement {
	r := &domain.Requirement{Name: domain.NewInternedString(name)}
	for _, dep := range requires {
		r.Requires = append(r.Requires, domain.NewInternedString(dep))
	}
	return r
}

func TestManifest_Add_Duplicate(t *testing.T) {
	m := domain.NewManifest()

	if err := m.Add(req("mutagen")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := m.Add(req("mutagen"))
	if err == nil {
		t.Fatal("expected error when adding duplicate requirement, got nil")
	}
	if !errors.Is(err, domain.ErrDuplicateDependency) {
		t.Errorf("expected ErrDuplicateDependency, got %v", err)
	}

	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	if name, ok := zErr.Metadata()["package"].(string); !ok || name != "mutagen" {
		t.Errorf("expected metadata package=mutagen, got %v", zErr.Metadata()["package"])
	}
}

func TestManifest_Validate_Cycle(t *testing.T) {
	m := domain.NewManifest()
	if err := m.Add(req("a", "b")); err != nil {
		t.Fatalf("failed to add a: %v", err)
	}
	if err := m.Add(req("b", "a")); err != nil {
		t.Fatalf("failed to add b: %v", err)
	}

	err := m.Validate()
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}
	if !errors.Is(err, domain.ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected, got %v", err)
	}
}

func TestManifest_Validate_MissingDependency(t *testing.T) {
	m := domain.NewManifest()
	if err := m.Add(req("pillow", "zlib")); err != nil {
		t.Fatalf("failed to add pillow: %v", err)
	}

	err := m.Validate()
	if err == nil {
		t.Fatal("expected error for missing dependency, got nil")
	}
	if !errors.Is(err, domain.ErrMissingDependency) {
		t.Errorf("expected ErrMissingDependency, got %v", err)
	}
}

func TestManifest_Walk_InstallOrder(t *testing.T) {
	m := domain.NewManifest()
	// django-tables2 depends on django, which must install first.
	if err := m.Add(req("django-tables2", "django")); err != nil {
		t.Fatalf("failed to add django-tables2: %v", err)
	}
	if err := m.Add(req("django")); err != nil {
		t.Fatalf("failed to add django: %v", err)
	}
	if err := m.Add(req("mutagen")); err != nil {
		t.Fatalf("failed to add mutagen: %v", err)
	}

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	var order []string
	for r := range m.Walk() {
		order = append(order, r.Name.String())
	}

	if len(order) != 3 {
		t.Fatalf("expected 3 requirements in walk, got %d: %v", len(order), order)
	}

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	if pos["django"] > pos["django-tables2"] {
		t.Errorf("expected django before django-tables2, got order %v", order)
	}
}

func TestManifest_Walk_Deterministic(t *testing.T) {
	build := func() []string {
		m := domain.NewManifest()
		for _, name := range []string{"django", "mutagen", "pillow"} {
			if err := m.Add(req(name)); err != nil {
				t.Fatalf("failed to add %s: %v", name, err)
			}
		}
		if err := m.Validate(); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		var order []string
		for r := range m.Walk() {
			order = append(order, r.Name.String())
		}
		return order
	}

	first := build()
	for range 5 {
		next := build()
		for i := range first {
			if next[i] != first[i] {
				t.Fatalf("install order not deterministic: %v vs %v", first, next)
			}
		}
	}
}
