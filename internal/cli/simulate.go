package cli

import (
	"github.com/spf13/cobra"
)

func newSimulateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Run the day and print a per-truck summary",
		Long: `Run the configured day and print, per truck, its driver, departure and
return times, miles driven and delivery order. Load failures, trucks that
could not finish and late packages are listed after the table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sim, err := root.simulate(cmd)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), sim)
		},
	}
}
