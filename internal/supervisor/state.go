package supervisor

import (
	"sync"
	"time"

	"github.com/me/depstart/pkg/model"
)

// State is the loop's per-container timing history and last decisions.
// Only the loop writes; the mutex lets the status server read concurrently.
type State struct {
	mu          sync.RWMutex
	lastChecked map[string]time.Time
	decisions   map[string]model.Decision
	lastSweep   time.Time
	sweeps      int64
}

// NewState creates a State with every name's last-checked time at the zero
// time, meaning never.
func NewState(names []string) *State {
	s := &State{
		lastChecked: make(map[string]time.Time, len(names)),
		decisions:   make(map[string]model.Decision, len(names)),
	}
	for _, n := range names {
		s.lastChecked[n] = time.Time{}
	}
	return s
}

// LastChecked returns when name was last started by schedule or delay.
func (s *State) LastChecked(name string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastChecked[name]
}

// SetLastChecked records a schedule- or delay-triggered start at t.
func (s *State) SetLastChecked(name string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastChecked[name] = t
}

// Record stores the most recent decision for a container.
func (s *State) Record(d model.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[d.Container] = d
}

// Decision returns the most recent decision for name.
func (s *State) Decision(name string) (model.Decision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decisions[name]
	return d, ok
}

// finishSweep marks a sweep as complete at t.
func (s *State) finishSweep(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSweep = t
	s.sweeps++
}

// LastSweep returns the start time of the last completed sweep and the number
// of sweeps so far.
func (s *State) LastSweep() (time.Time, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSweep, s.sweeps
}
