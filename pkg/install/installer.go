package install

import (
	"context"
	"slices"
	"sync"
)

// Installer carries out a plan.
type Installer interface {
	Install(ctx context.Context, plan *Plan) error
}

// InstallerFunc adapts a function to [Installer].
type InstallerFunc func(ctx context.Context, plan *Plan) error

// Install calls f.
func (f InstallerFunc) Install(ctx context.Context, plan *Plan) error { return f(ctx, plan) }

// Recorder is an [Installer] that keeps the plans it receives and installs
// nothing. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	plans []*Plan
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Install records plan.
func (r *Recorder) Install(ctx context.Context, plan *Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans = append(r.plans, plan)
	return nil
}

// Plans returns the recorded plans in the order received.
func (r *Recorder) Plans() []*Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.plans)
}
