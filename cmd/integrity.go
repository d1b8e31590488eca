package cmd

import (
	"fmt"
	"time"

	"forecast-recon/feature/integrity"
	"forecast-recon/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var integrityPeriod string

// integrityCmd checks the consistency of one period's records.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check reconciliation records for broken invariants",
	Long: `Verifies that every matched record has exactly one partner, that excluded
records carry no match, and that statuses agree with the match edges.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		svc := integrity.NewService(a.store, a.client, a.cfg.Storage.Bucket, a.logger)
		start := time.Now()
		report, err := svc.CheckPeriod(cmd.Context(), integrityPeriod)
		if err != nil {
			return err
		}

		fmt.Printf("\n=== Integrity %s ===\n", report.Period)
		fmt.Printf("Orders:     %d\n", report.Orders)
		fmt.Printf("GL Entries: %d\n", report.GLEntries)
		fmt.Printf("Violations: %d\n", len(report.Violations))
		for _, v := range report.Violations {
			fmt.Printf("- %s %d [%s] %s\n", v.Kind, v.ID, v.Rule, v.Detail)
		}

		a.logger.Info("Integrity check completed",
			zap.String("period", report.Period),
			zap.Bool("healthy", report.Healthy),
			zap.Int("violations", len(report.Violations)),
			zap.Duration("execution_time", time.Since(start)),
		)
		if !report.Healthy {
			return fmt.Errorf("%d integrity violations in %s", len(report.Violations), report.Period)
		}
		return nil
	},
}

var integritySchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check that the reconciliation tables have every column",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		report, err := checks.CheckSchema(a.db)
		if err != nil {
			return err
		}
		for table, t := range report.Tables {
			a.logger.Info("Table checked", zap.String("table", table), zap.String("status", t.Status), zap.Strings("missing", t.MissingColumns))
		}
		for _, e := range report.Errors {
			a.logger.Error("Inspection failed", zap.String("error", e))
		}
		if !report.Matched {
			return fmt.Errorf("schema mismatch, run migrate")
		}
		return nil
	},
}

var integrityArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Check that every run of a period was archived",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		svc := integrity.NewService(a.store, a.client, a.cfg.Storage.Bucket, a.logger)
		missing, err := svc.CheckArchive(cmd.Context(), integrityPeriod)
		if err != nil {
			return err
		}
		for _, key := range missing {
			fmt.Printf("- missing %s\n", key)
		}
		a.logger.Info("Archive check completed", zap.String("period", integrityPeriod), zap.Int("missing", len(missing)))
		return nil
	},
}

func init() {
	integrityCmd.Flags().StringVar(&integrityPeriod, "period", "", "Accounting period (YYYY-MM)")
	integrityArchiveCmd.Flags().StringVar(&integrityPeriod, "period", "", "Accounting period (YYYY-MM)")
	_ = integrityCmd.MarkFlagRequired("period")
	_ = integrityArchiveCmd.MarkFlagRequired("period")

	integrityCmd.AddCommand(integritySchemaCmd, integrityArchiveCmd)
	RootCmd.AddCommand(integrityCmd)
}
