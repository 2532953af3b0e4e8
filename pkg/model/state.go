package model

// RunState is the live state of a managed container as reported by the runtime.
type RunState string

const (
	RunStateRunning    RunState = "RUNNING"
	RunStateNotRunning RunState = "NOT_RUNNING"
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}

// IsRunning returns true if the container is running.
func (s RunState) IsRunning() bool {
	return s == RunStateRunning
}

// Trigger names the start condition that caused a container to be started.
type Trigger string

const (
	TriggerDependency Trigger = "dependency"
	TriggerSchedule   Trigger = "schedule"
	TriggerDelay      Trigger = "delay"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}

// UpdatesLastChecked reports whether a start by this trigger moves the
// container's last-checked timestamp. Dependency starts never do.
func (t Trigger) UpdatesLastChecked() bool {
	switch t {
	case TriggerSchedule, TriggerDelay:
		return true
	}
	return false
}

// Action is the outcome of evaluating one container during a sweep.
type Action string

const (
	ActionSkippedRunning Action = "SKIPPED_RUNNING"
	ActionStarted        Action = "STARTED"
	ActionStartFailed    Action = "START_FAILED"
	ActionIneligible     Action = "INELIGIBLE"
	ActionProbeFailed    Action = "PROBE_FAILED"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// IsStartAttempt returns true if a start command was issued to the runtime.
func (a Action) IsStartAttempt() bool {
	switch a {
	case ActionStarted, ActionStartFailed:
		return true
	}
	return false
}
