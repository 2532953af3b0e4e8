package supervisor

import (
	"time"

	"github.com/me/depstart/internal/condition"
	"github.com/me/depstart/internal/schedule"
)

// ManagedContainer is one supervised container and its start conditions.
// Built from configuration at startup and never modified afterwards.
type ManagedContainer struct {
	Name      string
	DependsOn []condition.Condition
	Schedule  *schedule.Schedule // nil when no schedule is configured
	Delay     time.Duration
}

// conditionStrings renders DependsOn for logs and the status API.
func (c ManagedContainer) conditionStrings() []string {
	out := make([]string, len(c.DependsOn))
	for i, d := range c.DependsOn {
		out[i] = d.String()
	}
	return out
}
