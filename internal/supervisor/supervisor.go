// Package supervisor runs the periodic sweep that starts managed containers
// once their dependency, schedule or delay conditions are met.
package supervisor

import "context"

// Supervisor sweeps the managed containers and starts the eligible ones.
type Supervisor interface {
	// Start begins the sweep loop. Blocks until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop shuts down the loop and waits for the current sweep to finish.
	Stop() error

	// Tick runs a single sweep.
	Tick(ctx context.Context) error
}
