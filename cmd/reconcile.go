package cmd

import (
	"fmt"

	"forecast-recon/core/utils"
	"forecast-recon/feature/reconciliation"
	"forecast-recon/feature/reconciliation/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runPeriod          string
	runThreshold       float64
	runDateTolerance   int
	runAmountTolerance string
	runStrategies      []string

	actorFlag       string
	exclusionKind   string
	exclusionReason string
	mappingName     string
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match order forecasts against GL entries",
	Long: `Run reconciliation for an accounting period, or override its results by hand.

Examples:
  # Reconcile January with the configured defaults
  reconcile run --period 2026-01

  # Exact matching only, wider date window
  reconcile run --period 2026-01 --strategies exact --date-tolerance 14

  # Pair order 12 with GL entry 40, then undo it
  reconcile match 12 40
  reconcile unmatch 12 40

  # Exclude GL entries 41 and 42 from matching
  reconcile exclude --kind gl --reason "intercompany" 41,42`,
}

var reconcileRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run exact and fuzzy matching for a period",
	Args:  cobra.NoArgs,
	RunE:  runReconcile,
}

var reconcileMatchCmd = &cobra.Command{
	Use:   "match <order-id> <gl-id>",
	Short: "Pair an unmatched order with an unmatched GL entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPairCommand(cmd, args, false)
	},
}

var reconcileUnmatchCmd = &cobra.Command{
	Use:   "unmatch <order-id> <gl-id>",
	Short: "Undo a match between an order and a GL entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPairCommand(cmd, args, true)
	},
}

var reconcileExcludeCmd = &cobra.Command{
	Use:   "exclude <id>[,<id>...]",
	Short: "Exclude records from matching",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExclusion(cmd, args, true)
	},
}

var reconcileIncludeCmd = &cobra.Command{
	Use:   "include <id>[,<id>...]",
	Short: "Return excluded records to matching",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExclusion(cmd, args, false)
	},
}

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Manage the accounting item to GL account code table",
}

var mappingSetCmd = &cobra.Command{
	Use:   "set <accounting-item> <account-code>",
	Short: "Map an accounting item to a GL account code",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		m := &models.AccountMapping{AccountingItem: args[0], AccountCode: args[1], AccountName: mappingName}
		if err := a.service.SaveAccountMapping(cmd.Context(), m); err != nil {
			return err
		}
		a.logger.Info("Account mapping saved",
			zap.String("accounting_item", m.AccountingItem),
			zap.String("account_code", m.AccountCode),
		)
		return nil
	},
}

var mappingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the account mappings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		mappings, err := a.service.AccountMappings(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println("\n--- Account Mappings ---")
		for _, m := range mappings {
			fmt.Printf("%-30s %-10s %s\n", m.AccountingItem, m.AccountCode, m.AccountName)
		}
		fmt.Printf("Total: %d\n", len(mappings))
		return nil
	},
}

func init() {
	reconcileCmd.AddCommand(reconcileRunCmd, reconcileMatchCmd, reconcileUnmatchCmd,
		reconcileExcludeCmd, reconcileIncludeCmd, mappingCmd)
	mappingCmd.AddCommand(mappingSetCmd, mappingListCmd)

	reconcileCmd.PersistentFlags().StringVar(&actorFlag, "actor", "cli", "Name recorded as the executor of the operation")

	reconcileRunCmd.Flags().StringVar(&runPeriod, "period", "", "Accounting period (YYYY-MM)")
	reconcileRunCmd.Flags().Float64Var(&runThreshold, "threshold", 0, "Fuzzy similarity threshold, 0-100 (default from config)")
	reconcileRunCmd.Flags().IntVar(&runDateTolerance, "date-tolerance", 0, "Fuzzy date window in days (default from config)")
	reconcileRunCmd.Flags().StringVar(&runAmountTolerance, "amount-tolerance", "", "Fuzzy amount window (default from config)")
	reconcileRunCmd.Flags().StringSliceVar(&runStrategies, "strategies", nil, "Strategies to apply, e.g. exact,fuzzy (default from config)")
	_ = reconcileRunCmd.MarkFlagRequired("period")

	for _, c := range []*cobra.Command{reconcileExcludeCmd, reconcileIncludeCmd} {
		c.Flags().StringVar(&exclusionKind, "kind", string(models.KindOrder), "Record kind: order or gl")
	}
	reconcileExcludeCmd.Flags().StringVar(&exclusionReason, "reason", "", "Why the records are excluded")

	mappingSetCmd.Flags().StringVar(&mappingName, "name", "", "GL account name")

	RootCmd.AddCommand(reconcileCmd)
}

// runRequest builds a run request from the flags the user actually set.
func runRequest(cmd *cobra.Command) (reconciliation.RunRequest, error) {
	req := reconciliation.RunRequest{Period: runPeriod, Strategies: runStrategies}
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		req.FuzzyThreshold = &runThreshold
	}
	if flags.Changed("date-tolerance") {
		req.DateToleranceDays = &runDateTolerance
	}
	if flags.Changed("amount-tolerance") {
		tol, err := decimal.NewFromString(runAmountTolerance)
		if err != nil {
			return req, fmt.Errorf("invalid --amount-tolerance %q: %w", runAmountTolerance, err)
		}
		req.AmountTolerance = &tol
	}
	return req, nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	req, err := runRequest(cmd)
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	params, err := req.Params(a.cfg.Reconcile)
	if err != nil {
		return err
	}

	a.logger.Info("Starting reconciliation", zap.String("period", params.Period), zap.Strings("strategies", params.Strategies))
	res, err := a.service.Run(ctx, params, actorFlag)
	if err != nil {
		return err
	}

	fmt.Println("\n--- Reconciliation Run ---")
	fmt.Printf("Run ID:                 %s\n", res.RunID)
	fmt.Printf("Period:                 %s\n", res.Period)
	fmt.Printf("Newly Matched:          %d\n", res.NewlyMatched)
	fmt.Printf("Newly Fuzzy:            %d\n", res.NewlyFuzzy)
	fmt.Printf("Already Matched Orders: %d\n", res.AlreadyMatchedOrders)
	fmt.Printf("Already Matched GL:     %d\n", res.AlreadyMatchedGL)
	fmt.Printf("Skipped Candidates:     %d\n", res.SkippedCandidates)
	fmt.Println("--------------------------")
	return nil
}

func runPairCommand(cmd *cobra.Command, args []string, undo bool) error {
	ctx := cmd.Context()
	orderID, err := utils.ToUint(args[0])
	if err != nil {
		return err
	}
	glID, err := utils.ToUint(args[1])
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	req := reconciliation.MatchRequest{OrderID: orderID, GLID: glID}
	var pair *reconciliation.Pair
	if undo {
		pair, err = a.service.Unmatch(ctx, req, actorFlag)
	} else {
		pair, err = a.service.ManualMatch(ctx, req, actorFlag)
	}
	if err != nil {
		return err
	}

	a.logger.Info("Pair updated",
		zap.Uint("order_id", pair.Order.ID),
		zap.String("order_status", string(pair.Order.ReconciliationStatus)),
		zap.Uint("gl_id", pair.GLEntry.ID),
		zap.String("gl_status", string(pair.GLEntry.ReconciliationStatus)),
	)
	return nil
}

func runExclusion(cmd *cobra.Command, args []string, excluded bool) error {
	ctx := cmd.Context()
	ids, err := utils.ParseIDs(args)
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	req := reconciliation.ExclusionRequest{
		Kind:     models.RecordKind(exclusionKind),
		IDs:      ids,
		Excluded: excluded,
	}
	if exclusionReason != "" {
		req.Reason = &exclusionReason
	}
	res, err := a.service.SetExclusion(ctx, req, actorFlag)
	if err != nil {
		return err
	}

	a.logger.Info("Exclusion updated",
		zap.String("kind", exclusionKind),
		zap.Bool("excluded", excluded),
		zap.Int("orders", len(res.Orders)),
		zap.Int("gl_entries", len(res.GLEntries)),
	)
	return nil
}
