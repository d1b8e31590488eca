package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"forecast-recon/core/utils"
	"forecast-recon/feature/reconciliation/models"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runsPeriod  string
	runsJSON    bool
	pruneBefore string
	yesConfirm  bool
)

// runsCmd is the parent command for the run ledger.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and prune the reconciliation run ledger",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the runs of a period, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		runs, err := a.service.RunsByPeriod(cmd.Context(), runsPeriod)
		if err != nil {
			return err
		}
		if runsJSON {
			return printJSON(runs)
		}
		fmt.Printf("\n--- Runs for %s ---\n", runsPeriod)
		for i := range runs {
			printRunLine(&runs[i])
		}
		fmt.Printf("Total: %d\n", len(runs))
		return nil
	},
}

var runsLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent run of a period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		run, err := a.service.LatestRun(cmd.Context(), runsPeriod)
		if err != nil {
			return err
		}
		if run == nil {
			a.logger.Info("No runs recorded", zap.String("period", runsPeriod))
			return nil
		}
		if runsJSON {
			return printJSON(run)
		}
		printRunLine(run)
		return nil
	},
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate run counts, for one period or all",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		stats, err := a.service.RunStats(cmd.Context(), runsPeriod)
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

var runsFetchCmd = &cobra.Command{
	Use:   "fetch <period> <run-id>",
	Short: "Print a run as archived in object storage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		archive := a.service.Archive()
		if archive == nil {
			return fmt.Errorf("run archive is disabled, set STORAGE_ENABLED=true")
		}
		run, err := archive.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(run)
	},
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs executed before a cutoff date",
	Long: `Deletes run ledger entries, and their archives when archiving is enabled.
The cutoff defaults to now minus RECONCILE_RUN_RETENTION_DAYS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.Reconcile.RunRetentionDays)
		if pruneBefore != "" {
			if cutoff, err = utils.ParseDate(pruneBefore); err != nil {
				return err
			}
		}

		a.logger.Info("Pruning runs", zap.Time("before", cutoff))
		if !confirmDestructiveAction() {
			a.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		n, err := a.service.PruneRuns(cmd.Context(), cutoff)
		if err != nil {
			return err
		}
		a.logger.Info("Pruned runs", zap.Int("count", n))
		return nil
	},
}

func init() {
	runsCmd.AddCommand(runsListCmd, runsLatestCmd, runsStatsCmd, runsFetchCmd, runsPruneCmd)

	for _, c := range []*cobra.Command{runsListCmd, runsLatestCmd, runsStatsCmd} {
		c.Flags().StringVar(&runsPeriod, "period", "", "Accounting period (YYYY-MM)")
		c.Flags().BoolVar(&runsJSON, "json", false, "Print JSON")
	}
	_ = runsListCmd.MarkFlagRequired("period")
	_ = runsLatestCmd.MarkFlagRequired("period")

	runsPruneCmd.Flags().StringVar(&pruneBefore, "before", "", "Cutoff date (YYYY-MM-DD)")
	runsPruneCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm (non-interactive)")

	RootCmd.AddCommand(runsCmd)
}

func printRunLine(r *models.ReconciliationRun) {
	fmt.Printf("%s  %s  by %-12s matched=%d fuzzy=%d skipped=%d [%s]\n",
		r.ExecutedAt.Format(time.RFC3339), r.ID, r.ExecutedBy,
		r.NewlyMatched, r.NewlyFuzzy, r.SkippedCandidates, r.Strategies)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return utils.ToBool(strings.TrimSpace(response))
}
