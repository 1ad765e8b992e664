package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/putzplan/internal/ctxutil"
	"github.com/example/putzplan/internal/ports/primary"
	"github.com/example/putzplan/internal/telemetry"
	"github.com/example/putzplan/internal/version"
	"github.com/example/putzplan/internal/wire"
)

// DrawCmd returns the draw command.
func DrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Staff the target week and announce the crew",
		Long: `Reads the target week's record, draws the missing participants, writes the
record and posts the announcement. With --dry-run nothing is written or posted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := ctxutil.WithNewRunID(cmd.Context())
			shutdown, err := telemetry.Setup(ctx, a.Config.Telemetry.OTelEndpoint, version.Short())
			if err != nil {
				a.Reporter.Warn("Tracing disabled: %v", err)
			}
			defer shutdown(context.Background())

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			seed, _ := cmd.Flags().GetUint64("seed")

			_, runErr := a.LotteryAdapter(cmd.OutOrStdout()).Draw(ctx, primary.RunRequest{
				DryRun: dryRun,
				Offset: offsetFlag(cmd, a.Config),
				Seed:   seed,
			})

			pushCtx, cancel := context.WithTimeout(context.Background(), wire.PushTimeout)
			defer cancel()
			if err := a.Metrics.Push(pushCtx, a.Config.Telemetry.PushgatewayURL); err != nil {
				a.Reporter.Warn("%v", err)
			}
			return runErr
		},
	}

	cmd.Flags().Bool("dry-run", false, "plan and compose without writing or posting")
	cmd.Flags().Uint64("seed", 0, "seed for the draw (0 picks a random seed)")
	cmd.Flags().Int("offset", 0, "weeks after the current one (default from config period_offset)")
	return cmd
}
