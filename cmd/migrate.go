package cmd

import (
	"context"
	"fmt"

	"forecast-recon/core/config"
	"forecast-recon/core/database"
	"forecast-recon/core/logger"
	"forecast-recon/feature/integrity/checks"
	"forecast-recon/feature/reconciliation/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates the reconciliation tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the reconciliation tables",
	Long:  `Runs the schema migration for orders, GL entries, runs and account mappings, then verifies every column exists.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ context.Context) error {
	// No bootstrap: the archive and lock are not needed to migrate.
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	l.Info("Migrating schema", zap.String("driver", cfg.Database.Driver), zap.String("database", cfg.Database.Name))
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	report, err := checks.CheckSchema(db)
	if err != nil {
		return err
	}
	if !report.Matched {
		for table, t := range report.Tables {
			if t.Status != "ok" {
				l.Error("Table incomplete after migration", zap.String("table", table), zap.Strings("missing", t.MissingColumns))
			}
		}
		return fmt.Errorf("schema mismatch after migration")
	}

	l.Info("Schema up to date", zap.Int("tables", len(report.Tables)))
	return nil
}
