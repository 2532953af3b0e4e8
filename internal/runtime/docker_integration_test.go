//go:build integration

package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/me/depstart/pkg/model"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	runner := &osCommandRunner{}
	_, _, exitCode, err := runner.Run(context.Background(), "docker", "info")
	if err != nil || exitCode != 0 {
		t.Skip("Docker not available, skipping integration test")
	}
}

func TestDockerIntegration_CreatedContainerStarts(t *testing.T) {
	skipIfNoDocker(t)
	ctx := context.Background()
	runner := &osCommandRunner{}

	name := "depstart-integ-" + time.Now().Format("150405")
	if _, stderr, code, err := runner.Run(ctx, "docker", "create", "--name", name, "alpine:latest", "sleep", "30"); err != nil || code != 0 {
		t.Fatalf("docker create: %v %s", err, stderr)
	}
	t.Cleanup(func() { runner.Run(context.Background(), "docker", "rm", "-f", name) })

	p := NewDockerProbe(DockerConfig{Timeout: 30 * time.Second}, newTestLogger())

	state, err := p.Status(ctx, name)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state != model.RunStateNotRunning {
		t.Fatalf("state = %q before start, want NOT_RUNNING", state)
	}

	if err := p.Start(ctx, name); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// A second start on a running container is a no-op.
	if err := p.Start(ctx, name); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	state, err = p.Status(ctx, name)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state != model.RunStateRunning {
		t.Errorf("state = %q after start, want RUNNING", state)
	}
}

func TestDockerIntegration_UnknownContainer(t *testing.T) {
	skipIfNoDocker(t)
	p := NewDockerProbe(DockerConfig{Timeout: 30 * time.Second}, newTestLogger())

	if _, err := p.Status(context.Background(), "depstart-does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Status err = %v, want ErrNotFound", err)
	}
	if err := p.Start(context.Background(), "depstart-does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Start err = %v, want ErrNotFound", err)
	}
}
