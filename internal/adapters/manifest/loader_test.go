package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/exordium/internal/adapters/manifest"
	"go.trai.ch/exordium/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestFileLoader_Load(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()

	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte(exordiumManifest), 0o600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	loader := manifest.NewFileLoader(logger)
	m, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Len() == 0 {
		t.Fatal("expected a non-empty manifest")
	}
}

func TestFileLoader_Load_MissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loader := manifest.NewFileLoader(mocks.NewMockLogger(ctrl))
	if _, err := loader.Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing manifest, got nil")
	}
}
