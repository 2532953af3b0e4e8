package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/depstart/internal/config"
	"github.com/me/depstart/internal/metrics"
	"github.com/me/depstart/internal/runtime"
	"github.com/me/depstart/internal/server"
	"github.com/me/depstart/internal/supervisor"
)

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the supervisor until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSupervisor(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.DurationVar(&opts.cfg.PollInterval, "poll-interval", opts.cfg.PollInterval, "Time between sweeps")
	f.DurationVar(&opts.cfg.RuntimeTimeout, "runtime-timeout", opts.cfg.RuntimeTimeout, "Limit on each docker call (0 for none)")
	f.StringVar(&opts.cfg.DockerHost, "docker-host", opts.cfg.DockerHost, "Docker daemon address (empty inherits DOCKER_HOST)")
	f.StringVar(&opts.cfg.DockerAPIVersion, "docker-api-version", opts.cfg.DockerAPIVersion, "Docker API version (empty inherits DOCKER_API_VERSION)")
	f.StringVar(&opts.cfg.StatusAddr, "status-addr", opts.cfg.StatusAddr, "Listen address for /healthz, /api/v1 and /metrics (empty disables)")

	return cmd
}

func runSupervisor(cmd *cobra.Command, opts *options) error {
	logger := opts.logger

	source, err := config.EnsureFile(opts.cfg.ConfigPath, opts.cfg.TemplatePath)
	if err != nil {
		return err
	}
	if source != "" {
		logger.Info("config created from template", "path", opts.cfg.ConfigPath, "template", source)
	}

	file, containers, err := config.Load(opts.cfg.ConfigPath)
	if err != nil {
		return err
	}
	cfg := mergeFile(cmd, opts.cfg, file)
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}
	logger.Info("config loaded", "path", cfg.ConfigPath, "containers", len(containers))

	probe := runtime.NewDockerProbe(runtime.DockerConfig{
		Host:       cfg.DockerHost,
		APIVersion: cfg.DockerAPIVersion,
		Timeout:    cfg.RuntimeTimeout,
	}, logger)

	m := metrics.New()
	loop := supervisor.NewLoop(containers, probe, supervisor.Config{PollInterval: cfg.PollInterval}, logger,
		supervisor.WithMetrics(m))
	var sup supervisor.Supervisor = loop

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var httpServer *http.Server
	if cfg.StatusAddr != "" {
		srv := server.New(loop, cfg.PollInterval, logger, server.WithMetricsHandler(m.Handler()))
		httpServer = &http.Server{Addr: cfg.StatusAddr, Handler: srv.Handler()}
		go func() {
			logger.Info("status server starting", "addr", cfg.StatusAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server failed", "error", err)
			}
		}()
	}

	err = sup.Start(ctx)
	logger.Info("shutting down")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("status server shutdown", "error", err)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("supervisor stopped")
	return nil
}

// mergeFile applies the config document's optional settings on top of the
// defaults. Flags given on the command line keep precedence.
func mergeFile(cmd *cobra.Command, flagged config.SupervisorConfig, file *config.File) config.SupervisorConfig {
	cfg := flagged
	cfg.ApplyFile(file)

	changed := cmd.Flags().Changed
	if changed("poll-interval") {
		cfg.PollInterval = flagged.PollInterval
	}
	if changed("runtime-timeout") {
		cfg.RuntimeTimeout = flagged.RuntimeTimeout
	}
	if changed("docker-host") {
		cfg.DockerHost = flagged.DockerHost
	}
	if changed("docker-api-version") {
		cfg.DockerAPIVersion = flagged.DockerAPIVersion
	}
	return cfg
}
