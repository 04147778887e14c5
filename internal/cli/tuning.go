package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tomz197/discoball/internal/loop/config"
)

// NewTuningCommand creates the tuning command, which prints the effective
// tuning as YAML.
func NewTuningCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tuning",
		Short: "Print the effective tuning",
		Long: `Print the tuning a session would start with, as YAML.

With --tuning, the file is loaded and validated on top of the defaults.
The output is itself a valid tuning file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := config.Load(rootOpts.TuningPath)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(t)
			if err != nil {
				return fmt.Errorf("failed to encode tuning: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
