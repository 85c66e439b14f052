// Package state implements install receipt storage.
package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/exordium/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ReceiptStore = (*Store)(nil)

// Store implements ports.ReceiptStore using a flat JSON file.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.InstallReceipt
}

// NewStore creates a new ReceiptStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.InstallReceipt),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read receipt store")
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.Wrap(err, "failed to unmarshal receipt store")
	}

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal receipt store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for receipt store")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write receipt store")
	}

	return nil
}

// Get retrieves the receipt for a given package name.
func (s *Store) Get(name string) (*domain.InstallReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	receipt, ok := s.cache[name]
	if !ok {
		return nil, nil
	}
	return &receipt, nil
}

// Put stores the receipt.
func (s *Store) Put(receipt domain.InstallReceipt) error {
	// Update cache first
	s.mu.Lock()
	s.cache[receipt.Name] = receipt
	s.mu.Unlock()

	// Then save to disk
	return s.save()
}

// All returns every stored receipt, sorted by package name.
func (s *Store) All() ([]domain.InstallReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	receipts := make([]domain.InstallReceipt, 0, len(s.cache))
	for _, r := range s.cache {
		receipts = append(receipts, r)
	}
	sort.Slice(receipts, func(i, j int) bool { return receipts[i].Name < receipts[j].Name })
	return receipts, nil
}
