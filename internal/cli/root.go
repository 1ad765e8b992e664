// Package cli contains the putzplan commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/putzplan/internal/config"
	"github.com/example/putzplan/internal/version"
	"github.com/example/putzplan/internal/wire"
)

// NewRootCmd returns the putzplan command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "putzplan",
		Short:   "Weekly cleaning crew lottery",
		Version: version.String(),
		Long: `putzplan staffs the cleaning crew of the upcoming week.

It reads the week's record, draws the missing participants from members who
have never been assigned, writes the record back and announces the crew.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default ./putzplan.yaml, then ~/.putzplan/putzplan.yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(DrawCmd())
	rootCmd.AddCommand(PoolCmd())
	rootCmd.AddCommand(WeekCmd())
	rootCmd.AddCommand(LocalCmd())
	rootCmd.AddCommand(VersionCmd())

	return rootCmd
}

// loadConfig reads the configuration named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// buildApp loads the configuration and wires the services.
func buildApp(cmd *cobra.Command) (*wire.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	noColor, _ := cmd.Flags().GetBool("no-color")
	return wire.Build(cfg, cmd.OutOrStdout(), noColor)
}

// offsetFlag returns --offset when given, else the configured default.
func offsetFlag(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed("offset") {
		offset, _ := cmd.Flags().GetInt("offset")
		return offset
	}
	return cfg.Lottery.PeriodOffset
}

// VersionCmd returns the version command.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
