package model

import "time"

// Decision records what a sweep did with one managed container.
type Decision struct {
	SweepID   string    `json:"sweep_id"`
	Container string    `json:"container"`
	Action    Action    `json:"action"`
	Trigger   Trigger   `json:"trigger,omitempty"`
	At        time.Time `json:"at"`
	Error     string    `json:"error,omitempty"`
}

// ContainerStatus is the operator view of a managed container.
type ContainerStatus struct {
	Name        string     `json:"name"`
	DependsOn   []string   `json:"depends_on"`
	Schedule    string     `json:"schedule,omitempty"`
	Delay       string     `json:"delay"`
	LastChecked *time.Time `json:"last_checked"`
	LastAction  *Decision  `json:"last_action,omitempty"`
}
