package schedule

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, expr string) *Schedule {
	t.Helper()
	s, err := Parse(expr)
	if err != nil {
		t.Fatalf("Parse(%q): %v", expr, err)
	}
	return s
}

func at(hh, mm, ss int) time.Time {
	return time.Date(2026, 3, 14, hh, mm, ss, 0, time.UTC)
}

func TestParse_Invalid(t *testing.T) {
	for _, expr := range []string{"", "not a cron", "61 * * * *", "* * * *"} {
		if _, err := Parse(expr); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", expr)
		}
	}
}

func TestParse_Descriptors(t *testing.T) {
	s := mustParse(t, "@hourly")
	if got := s.Next(at(10, 30, 0)); !got.Equal(at(11, 0, 0)) {
		t.Errorf("Next = %v, want 11:00", got)
	}
	if s.String() != "@hourly" {
		t.Errorf("String() = %q, want @hourly", s.String())
	}
}

func TestIsDue_HourBoundary(t *testing.T) {
	s := mustParse(t, "0 * * * *")
	var never time.Time

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"exact boundary", at(12, 0, 0), true},
		{"inside look-back window", at(12, 0, 59), true},
		{"one minute after", at(12, 1, 0), false},
		{"well past", at(12, 30, 0), false},
		{"just before", at(11, 59, 59), false},
	}
	for _, tt := range tests {
		if got := IsDue(s, never, 0, tt.now); got != tt.want {
			t.Errorf("%s: IsDue(now=%s) = %v, want %v", tt.name, tt.now.Format(time.TimeOnly), got, tt.want)
		}
	}
}

func TestIsDue_DelayNotElapsed(t *testing.T) {
	s := mustParse(t, "* * * * *") // due on every tick
	now := at(12, 0, 0)

	for _, since := range []time.Duration{0, time.Second, 299 * time.Second} {
		if IsDue(s, now.Add(-since), 300*time.Second, now) {
			t.Errorf("lastChecked=now-%s, delay=300s: IsDue = true, want false", since)
		}
	}
	if !IsDue(s, now.Add(-300*time.Second), 300*time.Second, now) {
		t.Error("lastChecked=now-300s, delay=300s: IsDue = false, want true")
	}
}

func TestIsDue_ZeroDelayFiresEveryMatchingTick(t *testing.T) {
	s := mustParse(t, "0 * * * *")
	now := at(12, 0, 0)
	if !IsDue(s, now, 0, now) {
		t.Error("zero delay should fire even when lastChecked == now")
	}
	if !IsDue(s, now.Add(-5*time.Second), 0, now.Add(5*time.Second)) {
		t.Error("zero delay should fire on the next tick inside the window")
	}
}

func TestIsDue_NilSchedule(t *testing.T) {
	if IsDue(nil, time.Time{}, 0, at(12, 0, 0)) {
		t.Error("nil schedule should never be due")
	}
}

func TestDelayElapsed(t *testing.T) {
	now := at(12, 0, 0)
	tests := []struct {
		name        string
		lastChecked time.Time
		delay       time.Duration
		want        bool
	}{
		{"never checked", time.Time{}, 300 * time.Second, true},
		{"200s ago", now.Add(-200 * time.Second), 300 * time.Second, false},
		{"300s ago", now.Add(-300 * time.Second), 300 * time.Second, true},
		{"zero delay", now, 0, true},
	}
	for _, tt := range tests {
		if got := DelayElapsed(tt.lastChecked, tt.delay, now); got != tt.want {
			t.Errorf("%s: DelayElapsed = %v, want %v", tt.name, got, tt.want)
		}
	}
}
