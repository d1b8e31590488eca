package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"forecast-recon/core/lock"
	"forecast-recon/core/reconcile"
	"forecast-recon/feature/reconciliation/match"
	"forecast-recon/feature/reconciliation/models"
	"forecast-recon/feature/reconciliation/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunResult summarizes one committed run.
type RunResult struct {
	RunID                string `json:"run_id"`
	Period               string `json:"period"`
	NewlyMatched         int    `json:"newly_matched"`
	NewlyFuzzy           int    `json:"newly_fuzzy"`
	AlreadyMatchedOrders int    `json:"already_matched_orders"`
	AlreadyMatchedGL     int    `json:"already_matched_gl"`
	SkippedCandidates    int    `json:"skipped_candidates"`
}

// LockKey is the lock name serializing runs of one period.
func LockKey(period string) string {
	return "reconcile:" + period
}

// Run reconciles one period. Strategies run in tier order inside a single
// transaction under the period lock; each tier's candidates are resolved to a
// 1:1 assignment and applied before the next tier sees the remaining pool.
// Records already matched, fuzzy or excluded are never touched, so repeated
// runs are idempotent.
func (s *Service) Run(ctx context.Context, params RunParams, actor string) (*RunResult, error) {
	if err := params.check(s.validate); err != nil {
		return nil, err
	}
	actor = actorOrDefault(actor)

	l := s.logger.With(zap.String("period", params.Period), zap.String("actor", actor))

	codes, err := s.codeTable(ctx)
	if err != nil {
		return nil, translate("load code table", err)
	}
	strategies, err := match.Select(params.Strategies,
		match.NewExact(codes, s.cfg.AmountScale),
		match.NewFuzzy(params.FuzzyThreshold, params.DateToleranceDays, params.AmountTolerance))
	if err != nil {
		return nil, &ValidationError{Field: "strategies", Message: err.Error()}
	}

	held, err := s.locker.Obtain(ctx, LockKey(params.Period))
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return nil, &ConcurrencyConflictError{Op: "run " + params.Period, Err: err}
		}
		return nil, &PersistenceError{Op: "lock " + params.Period, Err: err}
	}
	defer func() {
		if err := held.Release(context.WithoutCancel(ctx)); err != nil {
			l.Warn("Failed to release period lock", zap.Error(err))
		}
	}()

	run := &models.ReconciliationRun{
		ID:                uuid.NewString(),
		Period:            params.Period,
		ExecutedAt:        s.now().UTC(),
		ExecutedBy:        actor,
		FuzzyThreshold:    params.FuzzyThreshold,
		DateToleranceDays: params.DateToleranceDays,
		AmountTolerance:   params.AmountTolerance,
		Strategies:        strategyNames(strategies),
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		resolvedOrders, err := tx.CountResolvedOrders(ctx, params.Period)
		if err != nil {
			return err
		}
		matchedGL, err := tx.CountMatchedGLEntries(ctx, params.Period)
		if err != nil {
			return err
		}
		run.AlreadyMatchedOrders = int(resolvedOrders)
		run.AlreadyMatchedGL = int(matchedGL)

		orders, err := tx.UnresolvedOrders(ctx, params.Period)
		if err != nil {
			return err
		}
		entries, err := tx.UnresolvedGLEntries(ctx, params.Period)
		if err != nil {
			return err
		}
		pool := match.NewPool(orders, entries)

		for _, st := range strategies {
			if len(pool.Orders()) == 0 || len(pool.Entries()) == 0 {
				break
			}
			plan := reconcile.Resolve(st.Candidates(pool.Orders(), pool.Entries()))
			if err := apply(ctx, tx, pool, plan); err != nil {
				return fmt.Errorf("apply %s tier: %w", st.Name(), err)
			}
			run.SkippedCandidates += plan.Skipped
			switch st.Tier() {
			case reconcile.TierExact:
				run.NewlyMatched += len(plan.Assignments)
			case reconcile.TierFuzzy:
				run.NewlyFuzzy += len(plan.Assignments)
			}
			l.Debug("Tier resolved",
				zap.String("strategy", st.Name()),
				zap.Int("considered", plan.Considered),
				zap.Int("assigned", len(plan.Assignments)),
				zap.Int("skipped", plan.Skipped))
		}

		return tx.CreateRun(ctx, run)
	})
	if err != nil {
		l.Error("Reconciliation run rolled back", zap.Error(err))
		return nil, translate("run "+params.Period, err)
	}

	l.Info("Reconciliation run committed",
		zap.String("run_id", run.ID),
		zap.Int("newly_matched", run.NewlyMatched),
		zap.Int("newly_fuzzy", run.NewlyFuzzy),
		zap.Int("already_matched_orders", run.AlreadyMatchedOrders),
		zap.Int("already_matched_gl", run.AlreadyMatchedGL))

	if s.archive != nil {
		if err := s.archive.Put(ctx, run); err != nil {
			l.Warn("Failed to archive run", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	return &RunResult{
		RunID:                run.ID,
		Period:               run.Period,
		NewlyMatched:         run.NewlyMatched,
		NewlyFuzzy:           run.NewlyFuzzy,
		AlreadyMatchedOrders: run.AlreadyMatchedOrders,
		AlreadyMatchedGL:     run.AlreadyMatchedGL,
		SkippedCandidates:    run.SkippedCandidates,
	}, nil
}

// apply writes each assignment to both sides and removes the pair from the pool.
func apply(ctx context.Context, tx *store.Store, pool *match.Pool, plan reconcile.Plan) error {
	claimedOrders := make(map[uint]struct{}, len(plan.Assignments))
	claimedGL := make(map[uint]struct{}, len(plan.Assignments))

	for _, a := range plan.Assignments {
		o := pool.Order(a.OrderID)
		g := pool.Entry(a.GLID)
		if o == nil || g == nil {
			return fmt.Errorf("assignment %d->%d outside the pool", a.OrderID, a.GLID)
		}

		status := models.OrderMatched
		if a.Tier == reconcile.TierFuzzy {
			status = models.OrderFuzzy
		}
		if err := o.Match(g.ID, status); err != nil {
			return err
		}
		if err := g.Claim(); err != nil {
			return err
		}
		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.SaveGLEntry(ctx, g); err != nil {
			return err
		}
		claimedOrders[o.ID] = struct{}{}
		claimedGL[g.ID] = struct{}{}
	}

	pool.Remove(claimedOrders, claimedGL)
	return nil
}

func strategyNames(strategies []match.Strategy) string {
	names := make([]string, len(strategies))
	for i, st := range strategies {
		names[i] = st.Name()
	}
	return strings.Join(names, ",")
}
