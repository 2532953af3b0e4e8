// Package schedule decides when a cron- or delay-triggered container start is due.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// LookBack is the tolerance window for cron fire times. A fire instant that
// falls inside the last minute still counts as due; anything older is skipped.
const LookBack = time.Minute

// Schedule is a parsed cron expression.
type Schedule struct {
	expr  string
	inner cron.Schedule
}

// Parse parses a standard five-field cron expression. Descriptors such as
// "@hourly" and "@every 10m" are accepted too.
func Parse(expr string) (*Schedule, error) {
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return &Schedule{expr: expr, inner: s}, nil
}

// String returns the expression as written in configuration.
func (s *Schedule) String() string {
	if s == nil {
		return ""
	}
	return s.expr
}

// Next returns the first fire time strictly after t.
func (s *Schedule) Next(t time.Time) time.Time {
	return s.inner.Next(t)
}

// IsDue reports whether a schedule-triggered start is due at now: the first
// fire time after now-LookBack has been reached, and at least delay has passed
// since lastChecked. A nil schedule is never due.
func IsDue(s *Schedule, lastChecked time.Time, delay time.Duration, now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Next(now.Add(-LookBack)).After(now) {
		return false
	}
	return DelayElapsed(lastChecked, delay, now)
}

// DelayElapsed reports whether now-lastChecked >= delay. A zero lastChecked
// means never and has always elapsed.
func DelayElapsed(lastChecked time.Time, delay time.Duration, now time.Time) bool {
	return now.Sub(lastChecked) >= delay
}
