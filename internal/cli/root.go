// Package cli implements the depstart command line.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/depstart/internal/config"
	"github.com/me/depstart/internal/logging"
)

// options carries the flag values shared by every subcommand.
type options struct {
	cfg    config.SupervisorConfig
	debug  bool
	logger *slog.Logger
}

// NewRootCmd creates the root cobra command for the depstart CLI.
func NewRootCmd() *cobra.Command {
	opts := &options{cfg: config.DefaultSupervisorConfig()}
	opts.cfg.ApplyEnv(os.Getenv)

	root := &cobra.Command{
		Use:   "depstart",
		Short: "Dependency-aware container start supervisor",
		Long: "depstart watches a fixed set of containers and starts the stopped ones once " +
			"their dependencies are running, their cron schedule fires, or their delay has passed.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.debug {
				opts.cfg.LogLevel = "debug"
			}
			logger, err := logging.New(logging.Options{
				Level:  opts.cfg.LogLevel,
				Format: opts.cfg.LogFormat,
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfg.ConfigPath, "config", opts.cfg.ConfigPath, "Container config file (or DEPSTART_CONFIG env)")
	pf.StringVar(&opts.cfg.TemplatePath, "template", opts.cfg.TemplatePath, "Template copied to --config when it is missing (or DEPSTART_TEMPLATE env)")
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	pf.StringVar(&opts.cfg.LogLevel, "log-level", opts.cfg.LogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.cfg.LogFormat, "log-format", opts.cfg.LogFormat, "Log format (text, json)")

	root.AddCommand(
		newRunCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)

	return root
}
