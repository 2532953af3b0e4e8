// Package runtime talks to the container runtime: it reports whether a
// managed container is running and starts it when asked.
package runtime

import (
	"context"
	"errors"

	"github.com/me/depstart/pkg/model"
)

var (
	// ErrNotFound is returned when the runtime does not know the container.
	ErrNotFound = errors.New("container not found")

	// ErrUnavailable is returned when the runtime cannot be reached or did not
	// answer in time.
	ErrUnavailable = errors.New("container runtime unavailable")
)

// Probe reports container run-state and starts containers.
type Probe interface {
	// Status returns the current run-state of the container. An unknown
	// container yields RunStateNotRunning together with ErrNotFound.
	Status(ctx context.Context, id string) (model.RunState, error)

	// Start starts the container. Starting a running container is a no-op.
	Start(ctx context.Context, id string) error
}
