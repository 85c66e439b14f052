package commands_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.trai.ch/exordium/cmd/exordium/commands"
	"go.trai.ch/exordium/internal/adapters/manifest"
	"go.trai.ch/exordium/internal/adapters/telemetry"
	"go.trai.ch/exordium/internal/app"
	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/exordium/internal/core/ports/mocks"
	"go.trai.ch/exordium/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader    *mocks.MockManifestLoader
	resolver  *mocks.MockResolver
	installer *mocks.MockInstaller
	store     *mocks.MockReceiptStore
	verifier  *mocks.MockVerifier
	cli       *commands.CLI
}

func newFixture(ctrl *gomock.Controller) *fixture {
	f := &fixture{
		loader:    mocks.NewMockManifestLoader(ctrl),
		resolver:  mocks.NewMockResolver(ctrl),
		installer: mocks.NewMockInstaller(ctrl),
		store:     mocks.NewMockReceiptStore(ctrl),
		verifier:  mocks.NewMockVerifier(ctrl),
	}

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	sched := scheduler.NewScheduler(f.installer, f.store, telemetry.NewNoOp())
	f.cli = commands.New(app.New(f.loader, f.resolver, sched, f.store, f.verifier, log))
	return f
}

func parseManifest(t *testing.T, text string) *domain.Manifest {
	t.Helper()
	m, err := manifest.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

func TestInstall_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	manifestPath := filepath.Join(t.TempDir(), "requirements.txt")

	f.loader.EXPECT().Load(manifestPath).Return(parseManifest(t, "django\n"), nil)
	f.resolver.EXPECT().Resolve(gomock.Any(), "django", gomock.Any()).
		Return(domain.ResolvedPackage{
			Name:    domain.NewInternedString("django"),
			Version: "1.10",
			Digest:  "0123456789abcdef",
		}, nil)
	f.store.EXPECT().Get("django").Return(nil, nil)
	f.installer.EXPECT().Install(gomock.Any(), gomock.Any()).Return("/store/django", nil)
	f.store.EXPECT().Put(gomock.Any()).Return(nil)

	f.cli.SetArgs([]string{"install", "-f", manifestPath, "-p", "1"})
	if err := f.cli.Execute(context.Background()); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestInstall_RejectsPositionalArgs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	f.cli.SetArgs([]string{"install", "django"})
	f.cli.SetOut(&bytes.Buffer{})

	if err := f.cli.Execute(context.Background()); err == nil {
		t.Error("Expected error for positional args, got nil")
	}
}

func TestPlan_PrintsResolvedPackages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)

	f.loader.EXPECT().Load("requirements.txt").Return(parseManifest(t, "mutagen (built on 1.37)\n"), nil)
	f.resolver.EXPECT().Resolve(gomock.Any(), "mutagen", gomock.Any()).
		Return(domain.ResolvedPackage{
			Name:    domain.NewInternedString("mutagen"),
			Version: "1.38",
			Digest:  "0123456789abcdef",
		}, nil)

	var out bytes.Buffer
	f.cli.SetOut(&out)
	f.cli.SetArgs([]string{"plan"})

	if err := f.cli.Execute(context.Background()); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if !strings.Contains(out.String(), "mutagen") || !strings.Contains(out.String(), "1.38") {
		t.Errorf("expected plan output to list mutagen 1.38, got:\n%s", out.String())
	}
}

func TestVerify_EmptyStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	f.store.EXPECT().All().Return(nil, nil)

	f.cli.SetArgs([]string{"verify"})
	if err := f.cli.Execute(context.Background()); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestVersion_PrintsVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)

	var out bytes.Buffer
	f.cli.SetOut(&out)
	f.cli.SetArgs([]string{"version"})

	if err := f.cli.Execute(context.Background()); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if !strings.Contains(out.String(), "exordium version") {
		t.Errorf("expected version output, got: %s", out.String())
	}
}

func TestRoot_Help(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)

	var out bytes.Buffer
	f.cli.SetOut(&out)
	f.cli.SetArgs([]string{"--help"})

	if err := f.cli.Execute(context.Background()); err != nil {
		t.Errorf("Expected no error for help, got: %v", err)
	}
}
