package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/putzplan/internal/adapters/sqlite"
	"github.com/example/putzplan/internal/wire"
)

// LocalCmd returns the local store command group.
func LocalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Manage the local rehearsal store",
		Long:  "The local store mirrors both collections in SQLite. Select it with store.backend: sqlite.",
	}
	cmd.AddCommand(localInitCmd())
	cmd.AddCommand(localSeedCmd())
	return cmd
}

func localInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			database, err := wire.OpenLocal(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Local store initialized")
			return nil
		},
	}
}

func localSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load members and records from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			fixture, err := sqlite.LoadFixture(args[0])
			if err != nil {
				return err
			}
			database, err := wire.OpenLocal(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			res, err := sqlite.Seed(cmd.Context(), database, fixture)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded %d member(s) and %d record(s)\n", res.Members, res.Assignments)
			return nil
		},
	}
}
