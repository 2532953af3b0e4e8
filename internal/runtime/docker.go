package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/me/depstart/pkg/model"
)

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// osCommandRunner is the real implementation using os/exec.
type osCommandRunner struct {
	env []string
}

func (r *osCommandRunner) Run(ctx context.Context, name string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), r.env...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()

	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		return stdout, stderr, 0, nil
	case ctx.Err() != nil:
		return stdout, stderr, -1, ctx.Err()
	case errors.As(runErr, &exitErr):
		return stdout, stderr, exitErr.ExitCode(), nil
	default:
		return stdout, stderr, -1, runErr
	}
}

// DockerConfig selects the docker daemon and bounds each CLI call.
type DockerConfig struct {
	Host       string        // DOCKER_HOST; empty inherits the environment
	APIVersion string        // DOCKER_API_VERSION; empty inherits the environment
	Timeout    time.Duration // per-call limit; zero means no limit
}

// Env returns the environment overrides for the docker CLI.
func (c DockerConfig) Env() []string {
	var env []string
	if c.Host != "" {
		env = append(env, "DOCKER_HOST="+c.Host)
	}
	if c.APIVersion != "" {
		env = append(env, "DOCKER_API_VERSION="+c.APIVersion)
	}
	return env
}

// DockerProbe implements Probe with the docker CLI.
type DockerProbe struct {
	logger  *slog.Logger
	timeout time.Duration
	runner  CommandRunner
}

// NewDockerProbe creates a DockerProbe for the daemon described by cfg.
func NewDockerProbe(cfg DockerConfig, logger *slog.Logger) *DockerProbe {
	return newDockerProbeWithRunner(cfg, logger, &osCommandRunner{env: cfg.Env()})
}

// newDockerProbeWithRunner is used by tests to inject a mock CommandRunner.
func newDockerProbeWithRunner(cfg DockerConfig, logger *slog.Logger, runner CommandRunner) *DockerProbe {
	return &DockerProbe{
		logger:  logger.With("component", "docker-probe"),
		timeout: cfg.Timeout,
		runner:  runner,
	}
}

// Status inspects the container and maps docker's State.Status to a RunState.
func (p *DockerProbe) Status(ctx context.Context, id string) (model.RunState, error) {
	stdout, stderr, exitCode, err := p.docker(ctx, "inspect", "--type", "container", "--format", "{{.State.Status}}", id)
	if err != nil {
		return model.RunStateNotRunning, fmt.Errorf("inspect %s: %w: %v", id, ErrUnavailable, err)
	}
	if exitCode != 0 {
		return model.RunStateNotRunning, classify("inspect", id, stderr)
	}

	status := strings.TrimSpace(stdout)
	p.logger.Debug("container inspected", "container", id, "status", status)
	if status == "running" {
		return model.RunStateRunning, nil
	}
	return model.RunStateNotRunning, nil
}

// Start runs "docker start", which leaves an already running container alone.
func (p *DockerProbe) Start(ctx context.Context, id string) error {
	_, stderr, exitCode, err := p.docker(ctx, "start", id)
	if err != nil {
		return fmt.Errorf("start %s: %w: %v", id, ErrUnavailable, err)
	}
	if exitCode != 0 {
		return classify("start", id, stderr)
	}
	return nil
}

func (p *DockerProbe) docker(ctx context.Context, args ...string) (string, string, int, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.runner.Run(ctx, "docker", args...)
}

// classify maps docker CLI stderr to the runtime error taxonomy.
func classify(op, id, stderr string) error {
	msg := strings.TrimSpace(stderr)
	switch {
	case strings.Contains(msg, "No such container"), strings.Contains(msg, "No such object"):
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	case strings.Contains(msg, "Cannot connect to the Docker daemon"),
		strings.Contains(msg, "error during connect"),
		strings.Contains(msg, "connection refused"):
		return fmt.Errorf("%s %s: %w: %s", op, id, ErrUnavailable, msg)
	case op == "inspect":
		// An inspect we cannot interpret leaves the state unknown.
		return fmt.Errorf("%s %s: %w: %s", op, id, ErrUnavailable, msg)
	default:
		return fmt.Errorf("%s %s: %s", op, id, msg)
	}
}
