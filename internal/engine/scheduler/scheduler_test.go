package scheduler_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.trai.ch/exordium/internal/adapters/manifest"
	"go.trai.ch/exordium/internal/adapters/telemetry"
	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/exordium/internal/core/ports/mocks"
	"go.trai.ch/exordium/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

func parseManifest(t *testing.T, text string) *domain.Manifest {
	t.Helper()
	m, err := manifest.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

func resolvedFor(m *domain.Manifest) map[string]domain.ResolvedPackage {
	out := make(map[string]domain.ResolvedPackage)
	for req := range m.Declared() {
		name := req.Name.String()
		out[name] = domain.ResolvedPackage{
			Name:    req.Name,
			Version: "1.0",
			URL:     "https://files.test/" + name + ".tar.gz",
			Digest:  "0123456789abcdef",
		}
	}
	return out
}

func TestScheduler_Run_InstallsEverything(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := parseManifest(t, "django\nmutagen\npillow\n")
	resolved := resolvedFor(m)

	installer := mocks.NewMockInstaller(ctrl)
	store := mocks.NewMockReceiptStore(ctrl)

	store.EXPECT().Get(gomock.Any()).Return(nil, nil).Times(3)
	installer.EXPECT().Install(gomock.Any(), gomock.Any()).Return("/store/x", nil).Times(3)
	store.EXPECT().Put(gomock.Any()).Return(nil).Times(3)

	s := scheduler.NewScheduler(installer, store, telemetry.NewNoOp())
	if err := s.Run(context.Background(), m, resolved, 2); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for name, status := range s.Statuses() {
		if status != scheduler.StatusInstalled {
			t.Errorf("expected %s to be Installed, got %s", name, status)
		}
	}
}

func TestScheduler_Run_DependencyOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := parseManifest(t, "django-tables2\n\tdjango\n")
	resolved := resolvedFor(m)

	installer := mocks.NewMockInstaller(ctrl)
	store := mocks.NewMockReceiptStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()
	store.EXPECT().Put(gomock.Any()).Return(nil).AnyTimes()

	var order []string
	installer.EXPECT().Install(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, pkg domain.ResolvedPackage) (string, error) {
			order = append(order, pkg.Name.String())
			return "/store/" + pkg.Name.String(), nil
		}).Times(2)

	s := scheduler.NewScheduler(installer, store, telemetry.NewNoOp())
	// Parallelism 1 keeps the recorded order meaningful.
	if err := s.Run(context.Background(), m, resolved, 1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(order) != 2 || order[0] != "django" || order[1] != "django-tables2" {
		t.Errorf("expected django before django-tables2, got %v", order)
	}
}

func TestScheduler_Run_FailureBlocksDependents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := parseManifest(t, "django-tables2\n\tdjango\n")
	resolved := resolvedFor(m)

	installer := mocks.NewMockInstaller(ctrl)
	store := mocks.NewMockReceiptStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()

	downloadErr := errors.New("download failed")
	installer.EXPECT().Install(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, pkg domain.ResolvedPackage) (string, error) {
			if pkg.Name.String() == "django" {
				return "", downloadErr
			}
			t.Errorf("unexpected install of %s after dependency failure", pkg.Name.String())
			return "", nil
		}).Times(1)

	s := scheduler.NewScheduler(installer, store, telemetry.NewNoOp())
	err := s.Run(context.Background(), m, resolved, 2)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, downloadErr) {
		t.Errorf("expected download error, got %v", err)
	}

	statuses := s.Statuses()
	if statuses["django"] != scheduler.StatusFailed {
		t.Errorf("expected django Failed, got %s", statuses["django"])
	}
	if statuses["django-tables2"] != scheduler.StatusPending {
		t.Errorf("expected django-tables2 to stay Pending, got %s", statuses["django-tables2"])
	}
}

func TestScheduler_Run_SkipsMatchingReceipts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := parseManifest(t, "mutagen\n")
	resolved := resolvedFor(m)

	installer := mocks.NewMockInstaller(ctrl)
	store := mocks.NewMockReceiptStore(ctrl)

	store.EXPECT().Get("mutagen").Return(&domain.InstallReceipt{
		Name:    "mutagen",
		Version: "1.0",
		Digest:  "0123456789abcdef",
	}, nil)
	// No Install and no Put: the receipt already covers the resolution.

	s := scheduler.NewScheduler(installer, store, telemetry.NewNoOp())
	if err := s.Run(context.Background(), m, resolved, 1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := s.Statuses()["mutagen"]; got != scheduler.StatusSkipped {
		t.Errorf("expected Skipped, got %s", got)
	}
}

func TestScheduler_Run_StaleReceiptReinstalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := parseManifest(t, "mutagen\n")
	resolved := resolvedFor(m)

	installer := mocks.NewMockInstaller(ctrl)
	store := mocks.NewMockReceiptStore(ctrl)

	store.EXPECT().Get("mutagen").Return(&domain.InstallReceipt{
		Name:    "mutagen",
		Version: "0.9",
		Digest:  "ffffffffffffffff",
	}, nil)
	installer.EXPECT().Install(gomock.Any(), gomock.Any()).Return("/store/mutagen", nil)
	store.EXPECT().Put(gomock.Any()).Return(nil)

	s := scheduler.NewScheduler(installer, store, telemetry.NewNoOp())
	if err := s.Run(context.Background(), m, resolved, 1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := s.Statuses()["mutagen"]; got != scheduler.StatusInstalled {
		t.Errorf("expected Installed, got %s", got)
	}
}

func TestScheduler_Run_MissingResolution(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := parseManifest(t, "mutagen\n")

	s := scheduler.NewScheduler(mocks.NewMockInstaller(ctrl), mocks.NewMockReceiptStore(ctrl), telemetry.NewNoOp())
	err := s.Run(context.Background(), m, map[string]domain.ResolvedPackage{}, 1)
	if err == nil {
		t.Fatal("expected error for missing resolution, got nil")
	}
	if !errors.Is(err, domain.ErrResolutionFailed) {
		t.Errorf("expected ErrResolutionFailed, got %v", err)
	}
}

func TestScheduler_Run_ContextCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := parseManifest(t, "mutagen\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := scheduler.NewScheduler(mocks.NewMockInstaller(ctrl), mocks.NewMockReceiptStore(ctrl), telemetry.NewNoOp())
	err := s.Run(ctx, m, resolvedFor(m), 1)
	if err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
