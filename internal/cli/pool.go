package cli

import (
	"github.com/spf13/cobra"
)

// PoolCmd returns the pool command.
func PoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "List the members in the lottery pool",
		Long:  "Lists the eligible candidates of the target week with their contact address, and every excluded member with the reasons.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.LotteryAdapter(cmd.OutOrStdout()).Pool(cmd.Context(), offsetFlag(cmd, a.Config))
		},
	}
	cmd.Flags().Int("offset", 0, "weeks after the current one (default from config period_offset)")
	return cmd
}
