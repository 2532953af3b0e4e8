package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/depstart/internal/config"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config file and print each container's start policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, containers, err := config.Load(opts.cfg.ConfigPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-24s  %-48s  %-16s  %s\n", "CONTAINER", "DEPENDS ON", "SCHEDULE", "DELAY")
			fmt.Fprintf(out, "%-24s  %-48s  %-16s  %s\n", "---------", "----------", "--------", "-----")
			for _, c := range containers {
				deps := make([]string, len(c.DependsOn))
				for i, d := range c.DependsOn {
					deps[i] = fmt.Sprintf("[%s] %s", d.Kind, d)
				}
				fmt.Fprintf(out, "%-24s  %-48s  %-16s  %s\n",
					c.Name, orDash(strings.Join(deps, ", ")), orDash(c.Schedule.String()), c.Delay)
			}
			fmt.Fprintf(out, "\n%s: %d containers OK\n", opts.cfg.ConfigPath, len(containers))
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
