package cmd

import (
	"fmt"
	"os"

	"forecast-recon/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDir is the directory holding the optional .env file.
var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "forecast-recon",
	Short: "Forecast to general ledger reconciliation service",
	Long: `forecast-recon pairs order forecasts with general-ledger entries of the same
accounting period, by exact agreement first and by fuzzy similarity second.
Runs are recorded, and matches can be overridden or records excluded by hand.

Configuration comes from environment variables (DATABASE_DRIVER,
RECONCILE_FUZZY_THRESHOLD, ...) and an optional .env file in --config-dir.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. A failed command is logged and exits 1.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	// Console output with ISO8601 timestamps, whatever LOG_FORMAT says
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	l.Error("command failed", zap.String("command", commandPath(os.Args[1:])), zap.Error(err))
	_ = l.Sync()
	os.Exit(1)
}

// commandPath resolves the invoked subcommand for the failure log.
func commandPath(args []string) string {
	c, _, err := RootCmd.Find(args)
	if err != nil || c == nil {
		return RootCmd.Name()
	}
	return c.CommandPath()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory of the .env file")
}
