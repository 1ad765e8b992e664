package cli

import (
	"github.com/spf13/cobra"
)

// WeekCmd returns the week command.
func WeekCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the crew record of a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.LotteryAdapter(cmd.OutOrStdout()).Week(cmd.Context(), offsetFlag(cmd, a.Config))
		},
	}
	cmd.Flags().Int("offset", 0, "weeks after the current one (default from config period_offset)")
	return cmd
}
