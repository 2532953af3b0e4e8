// Package runtimetest provides an in-memory runtime.Probe for tests.
package runtimetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/me/depstart/internal/runtime"
	"github.com/me/depstart/pkg/model"
)

// Fake is an in-memory runtime.Probe. Containers not added are unknown.
type Fake struct {
	mu         sync.Mutex
	running    map[string]bool
	statusErrs map[string]error
	startErrs  map[string]error
	statusLog  []string
	startLog   []string
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{
		running:    make(map[string]bool),
		statusErrs: make(map[string]error),
		startErrs:  make(map[string]error),
	}
}

// Add registers a container with the given run-state.
func (f *Fake) Add(id string, running bool) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running[id] = running
	return f
}

// Stop marks a known container as not running.
func (f *Fake) Stop(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.running[id]; ok {
		f.running[id] = false
	}
}

// FailStatus makes Status return err for id.
func (f *Fake) FailStatus(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusErrs[id] = err
}

// FailStart makes Start return err for id.
func (f *Fake) FailStart(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startErrs[id] = err
}

// Status implements runtime.Probe.
func (f *Fake) Status(_ context.Context, id string) (model.RunState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusLog = append(f.statusLog, id)
	if err := f.statusErrs[id]; err != nil {
		return model.RunStateNotRunning, err
	}
	running, ok := f.running[id]
	if !ok {
		return model.RunStateNotRunning, fmt.Errorf("inspect %s: %w", id, runtime.ErrNotFound)
	}
	if running {
		return model.RunStateRunning, nil
	}
	return model.RunStateNotRunning, nil
}

// Start implements runtime.Probe.
func (f *Fake) Start(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startLog = append(f.startLog, id)
	if err := f.startErrs[id]; err != nil {
		return err
	}
	if _, ok := f.running[id]; !ok {
		return fmt.Errorf("start %s: %w", id, runtime.ErrNotFound)
	}
	f.running[id] = true
	return nil
}

// Started returns the ids passed to Start, in call order.
func (f *Fake) Started() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.startLog...)
}

// Inspected returns the ids passed to Status, in call order.
func (f *Fake) Inspected() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.statusLog...)
}

var _ runtime.Probe = (*Fake)(nil)
