// Package cli implements the discoball command line.
package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Seed       int64
	TuningPath string
	Mute       bool
	Plain      bool
	LogLevel   string
	LogFile    string
}

// NewRootCommand creates the root command. Running it without a subcommand
// plays locally.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "discoball",
		Short: "Spin a disco ball in your terminal",
		Long: `Click the disco ball to spin it up. Speed decays on its own; keep it at
max speed and prizes rain down until they expire.

Example:
  discoball
  discoball --plain --mute
  discoball --tuning ./fast.yaml --log-file /tmp/discoball.log --log-level debug`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := log.ParseLevel(opts.LogLevel); err != nil {
				return fmt.Errorf("invalid log level %q: %w", opts.LogLevel, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.TuningPath, "tuning", "", "path to a YAML tuning file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "write logs to this file (default: discard)")

	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed for prize placement (0 = time-based)")
	cmd.Flags().BoolVar(&opts.Mute, "mute", false, "start with sound off")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "use the plain ANSI renderer instead of tcell")

	cmd.AddCommand(NewTuningCommand(opts))

	return cmd
}
