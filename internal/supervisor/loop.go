package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/me/depstart/internal/condition"
	"github.com/me/depstart/internal/metrics"
	"github.com/me/depstart/internal/runtime"
	"github.com/me/depstart/internal/schedule"
	"github.com/me/depstart/pkg/model"
)

// Config holds loop configuration.
type Config struct {
	PollInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{PollInterval: 5 * time.Second}
}

// Option configures optional Loop dependencies.
type Option func(*Loop)

// WithMetrics records sweep and start counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loop) {
		l.metrics = m
	}
}

// WithClock replaces time.Now as the source of each sweep's timestamp.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

var _ Supervisor = (*Loop)(nil)

// Loop implements the Supervisor interface with a polling sweep.
// Containers are visited one at a time in name order.
type Loop struct {
	containers []ManagedContainer
	probe      runtime.Probe
	state      *State
	config     Config
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	stopOnce   sync.Once
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// NewLoop creates a supervisor loop over containers.
func NewLoop(containers []ManagedContainer, probe runtime.Probe, cfg Config, logger *slog.Logger, opts ...Option) *Loop {
	sorted := slices.Clone(containers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	names := make([]string, len(sorted))
	for i, c := range sorted {
		names[i] = c.Name
	}

	l := &Loop{
		containers: sorted,
		probe:      probe,
		state:      NewState(names),
		config:     cfg,
		logger:     logger.With("component", "supervisor"),
		now:        time.Now,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.metrics.SetManaged(len(sorted))
	return l
}

// State returns the loop's timing state.
func (l *Loop) State() *State {
	return l.state
}

// Start runs a sweep immediately and then one per poll interval. Blocks until
// ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	defer close(l.doneCh)
	l.logger.Info("supervisor started", "poll_interval", l.config.PollInterval, "containers", len(l.containers))

	if err := l.Tick(ctx); err != nil && ctx.Err() == nil {
		l.logger.Error("tick error", "error", err)
	}

	ticker := time.NewTicker(l.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("supervisor stopping (context cancelled)")
			return ctx.Err()
		case <-l.stopCh:
			l.logger.Info("supervisor stopping (stop called)")
			return nil
		case <-ticker.C:
			if err := l.Tick(ctx); err != nil && ctx.Err() == nil {
				l.logger.Error("tick error", "error", err)
			}
		}
	}
}

// Stop shuts down the loop and waits for the current sweep to finish.
func (l *Loop) Stop() error {
	l.stopOnce.Do(func() { close(l.stopCh) })
	<-l.doneCh
	return nil
}

// Tick runs one sweep over every managed container. A failure on one
// container never prevents the others from being evaluated.
func (l *Loop) Tick(ctx context.Context) error {
	started := time.Now()
	now := l.now()
	sweepID := "sweep_" + uuid.New().String()[:8]
	logger := l.logger.With("sweep_id", sweepID)

	attempts := 0
	for _, c := range l.containers {
		if err := ctx.Err(); err != nil {
			return err
		}
		d := l.evaluate(ctx, logger, c, now)
		d.SweepID = sweepID
		l.state.Record(d)
		if d.Action.IsStartAttempt() {
			attempts++
		}
	}

	l.state.finishSweep(now)
	l.metrics.ObserveSweep(time.Since(started))
	logger.Debug("sweep complete", "containers", len(l.containers), "start_attempts", attempts)
	return nil
}

// evaluate applies the start rules to one container, in priority order:
// running, dependency, schedule, delay.
func (l *Loop) evaluate(ctx context.Context, logger *slog.Logger, c ManagedContainer, now time.Time) model.Decision {
	d := model.Decision{Container: c.Name, At: now}
	logger = logger.With("container", c.Name)

	state, err := l.probe.Status(ctx, c.Name)
	switch {
	case errors.Is(err, runtime.ErrNotFound):
		logger.Debug("container not found, treating as not running")
	case err != nil:
		logger.Warn("status probe failed, skipping container this sweep", "error", err)
		l.metrics.ProbeFailed(c.Name)
		d.Action = model.ActionProbeFailed
		d.Error = err.Error()
		return d
	}
	if state.IsRunning() {
		d.Action = model.ActionSkippedRunning
		return d
	}

	trigger, ok, err := l.trigger(ctx, logger, c, now)
	if err != nil {
		logger.Warn("dependency probe failed, skipping container this sweep", "error", err)
		d.Action = model.ActionProbeFailed
		d.Error = err.Error()
		return d
	}
	if !ok {
		d.Action = model.ActionIneligible
		return d
	}
	d.Trigger = trigger
	if trigger.UpdatesLastChecked() {
		l.state.SetLastChecked(c.Name, now)
	}

	l.metrics.StartIssued(c.Name, trigger.String())
	if err := l.probe.Start(ctx, c.Name); err != nil {
		d.Action = model.ActionStartFailed
		d.Error = err.Error()
		switch {
		case errors.Is(err, runtime.ErrNotFound):
			logger.Warn("container not found", "trigger", trigger)
			l.metrics.StartFailed(c.Name, "not_found")
		case errors.Is(err, runtime.ErrUnavailable):
			logger.Warn("start failed, runtime unavailable", "trigger", trigger, "error", err)
			l.metrics.StartFailed(c.Name, "unavailable")
		default:
			logger.Error("start failed", "trigger", trigger, "error", err)
			l.metrics.StartFailed(c.Name, "error")
		}
		return d
	}

	logger.Info("started container", "trigger", trigger)
	d.Action = model.ActionStarted
	return d
}

// trigger returns the first start condition that holds for c. Dependency
// conditions are checked first, then the schedule, then the plain delay.
func (l *Loop) trigger(ctx context.Context, logger *slog.Logger, c ManagedContainer, now time.Time) (model.Trigger, bool, error) {
	q := l.runStateQuery(logger)
	held := condition.AnyHolds(ctx, c.DependsOn, q)
	if q.err != nil {
		return "", false, q.err
	}
	if held {
		return model.TriggerDependency, true, nil
	}

	lastChecked := l.state.LastChecked(c.Name)
	if c.Schedule != nil && schedule.IsDue(c.Schedule, lastChecked, c.Delay, now) {
		return model.TriggerSchedule, true, nil
	}
	if c.Delay > 0 && schedule.DelayElapsed(lastChecked, c.Delay, now) {
		return model.TriggerDelay, true, nil
	}
	return "", false, nil
}

// dependencyQuery answers dependency lookups from the probe. An unknown
// dependency reads as not running; any other lookup failure is kept in err.
type dependencyQuery struct {
	l      *Loop
	logger *slog.Logger
	err    error
}

func (l *Loop) runStateQuery(logger *slog.Logger) *dependencyQuery {
	return &dependencyQuery{l: l, logger: logger}
}

func (q *dependencyQuery) IsRunning(ctx context.Context, id string) (bool, error) {
	state, err := q.l.probe.Status(ctx, id)
	switch {
	case errors.Is(err, runtime.ErrNotFound):
		q.logger.Debug("dependency not found", "dependency", id)
		return false, err
	case err != nil:
		q.logger.Debug("dependency probe failed", "dependency", id, "error", err)
		q.l.metrics.ProbeFailed(id)
		if q.err == nil {
			q.err = fmt.Errorf("dependency %s: %w", id, err)
		}
		return false, err
	}
	return state.IsRunning(), nil
}

// LastSweep returns the timestamp of the last completed sweep and the number
// of sweeps so far.
func (l *Loop) LastSweep() (time.Time, int64) {
	return l.state.LastSweep()
}

// Status returns the operator view of every managed container, in name order.
func (l *Loop) Status() []model.ContainerStatus {
	out := make([]model.ContainerStatus, 0, len(l.containers))
	for _, c := range l.containers {
		out = append(out, l.containerStatus(c))
	}
	return out
}

// ContainerStatus returns the operator view of one managed container.
func (l *Loop) ContainerStatus(name string) (model.ContainerStatus, bool) {
	for _, c := range l.containers {
		if c.Name == name {
			return l.containerStatus(c), true
		}
	}
	return model.ContainerStatus{}, false
}

func (l *Loop) containerStatus(c ManagedContainer) model.ContainerStatus {
	st := model.ContainerStatus{
		Name:      c.Name,
		DependsOn: c.conditionStrings(),
		Schedule:  c.Schedule.String(),
		Delay:     c.Delay.String(),
	}
	if lc := l.state.LastChecked(c.Name); !lc.IsZero() {
		st.LastChecked = &lc
	}
	if d, ok := l.state.Decision(c.Name); ok {
		st.LastAction = &d
	}
	return st
}
