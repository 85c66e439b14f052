// Package scheduler implements the parallel package install scheduler.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/exordium/internal/core/ports"
	"go.trai.ch/zerr"
)

// PackageStatus represents the status of a package within a run.
type PackageStatus string

const (
	// StatusPending indicates the package is waiting to be installed.
	StatusPending PackageStatus = "Pending"
	// StatusRunning indicates the package is currently being installed.
	StatusRunning PackageStatus = "Running"
	// StatusInstalled indicates the package was installed successfully.
	StatusInstalled PackageStatus = "Installed"
	// StatusFailed indicates the installation failed.
	StatusFailed PackageStatus = "Failed"
	// StatusSkipped indicates the package was already installed at the
	// resolved version and digest.
	StatusSkipped PackageStatus = "Skipped"
)

// Scheduler installs resolved packages over the manifest's dependency
// graph: dependencies before dependents, with bounded parallelism.
type Scheduler struct {
	installer ports.Installer
	store     ports.ReceiptStore
	telemetry ports.Telemetry

	mu     sync.RWMutex
	status map[domain.InternedString]PackageStatus
}

// NewScheduler creates a new Scheduler.
func NewScheduler(installer ports.Installer, store ports.ReceiptStore, telemetry ports.Telemetry) *Scheduler {
	return &Scheduler{
		installer: installer,
		store:     store,
		telemetry: telemetry,
		status:    make(map[domain.InternedString]PackageStatus),
	}
}

func (s *Scheduler) updateStatus(name domain.InternedString, status PackageStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[name] = status
}

// Statuses returns a snapshot of per-package statuses.
func (s *Scheduler) Statuses() map[string]PackageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]PackageStatus, len(s.status))
	for name, status := range s.status {
		out[name.String()] = status
	}
	return out
}

// Run installs every package of the manifest with the specified parallelism.
// A package whose dependency failed is never started; the returned error
// joins all failures and still names each offending package.
func (s *Scheduler) Run(ctx context.Context, m *domain.Manifest, resolved map[string]domain.ResolvedPackage, parallelism int) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if parallelism < 1 {
		parallelism = 1
	}

	for req := range m.Walk() {
		s.updateStatus(req.Name, StatusPending)
	}

	state := s.newRunState(ctx, m, resolved, parallelism)

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return errors.Join(state.errs, state.ctx.Err())
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}

	return state.errs
}

type result struct {
	pkg domain.InternedString
	err error
}

type runState struct {
	inDegree    map[domain.InternedString]int
	dependents  map[domain.InternedString][]domain.InternedString
	reqs        map[domain.InternedString]domain.Requirement
	ready       []domain.InternedString
	active      int
	resultsCh   chan result
	errs        error
	ctx         context.Context
	resolved    map[string]domain.ResolvedPackage
	parallelism int
	s           *Scheduler
}

func (s *Scheduler) newRunState(ctx context.Context, m *domain.Manifest, resolved map[string]domain.ResolvedPackage, parallelism int) *runState {
	count := m.Len()
	inDegree := make(map[domain.InternedString]int, count)
	dependents := make(map[domain.InternedString][]domain.InternedString, count)
	reqs := make(map[domain.InternedString]domain.Requirement, count)

	for req := range m.Walk() {
		reqs[req.Name] = req
		inDegree[req.Name] = len(req.Requires)
		for _, dep := range req.Requires {
			dependents[dep] = append(dependents[dep], req.Name)
		}
	}

	var ready []domain.InternedString
	for req := range m.Walk() {
		if inDegree[req.Name] == 0 {
			ready = append(ready, req.Name)
		}
	}

	return &runState{
		inDegree:    inDegree,
		dependents:  dependents,
		reqs:        reqs,
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		ctx:         ctx,
		resolved:    resolved,
		parallelism: parallelism,
		s:           s,
	}
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(name, StatusRunning)

		go func(req domain.Requirement) {
			state.resultsCh <- result{pkg: req.Name, err: state.installPackage(state.ctx, req)}
		}(state.reqs[name])
	}
}

func (state *runState) handleResult(res result) {
	state.active--

	if res.err != nil {
		state.errs = errors.Join(state.errs, res.err)
		// Dependents of a failed package are never released into the
		// ready queue; they stay Pending.
		return
	}

	for _, dependent := range state.dependents[res.pkg] {
		state.inDegree[dependent]--
		if state.inDegree[dependent] == 0 {
			state.ready = append(state.ready, dependent)
		}
	}
}

// installPackage installs a single package, skipping work the receipt store
// proves is already done.
func (state *runState) installPackage(ctx context.Context, req domain.Requirement) error {
	pkg, ok := state.resolved[req.Name.String()]
	if !ok {
		state.s.updateStatus(req.Name, StatusFailed)
		return zerr.With(domain.ErrResolutionFailed, "package", req.Name.String())
	}

	vtx := state.s.telemetry.Record(ctx, req.Name.String())

	if state.receiptMatches(req, pkg) {
		state.s.updateStatus(req.Name, StatusSkipped)
		vtx.Cached()
		return nil
	}

	storePath, err := state.s.installer.Install(ctx, pkg)
	if err != nil {
		state.s.updateStatus(req.Name, StatusFailed)
		vtx.Complete(err)
		return err
	}

	receipt := domain.InstallReceipt{
		Name:      pkg.Name.String(),
		Version:   pkg.Version,
		Digest:    pkg.Digest,
		StorePath: storePath,
		Size:      pkg.Size,
		Timestamp: time.Now(),
	}
	if err := state.s.store.Put(receipt); err != nil {
		state.s.updateStatus(req.Name, StatusFailed)
		vtx.Complete(err)
		return err
	}

	state.s.updateStatus(req.Name, StatusInstalled)
	vtx.Complete(nil)
	return nil
}

func (state *runState) receiptMatches(req domain.Requirement, pkg domain.ResolvedPackage) bool {
	receipt, err := state.s.store.Get(req.Name.String())
	if err != nil || receipt == nil {
		return false
	}
	return receipt.Version == pkg.Version && receipt.Digest == pkg.Digest
}
