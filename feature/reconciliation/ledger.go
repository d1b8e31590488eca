package reconciliation

import (
	"context"
	"errors"
	"time"

	"forecast-recon/feature/reconciliation/models"
	"forecast-recon/feature/reconciliation/store"

	"go.uber.org/zap"
)

// RunStats aggregates the run ledger of one period, or of all periods.
type RunStats struct {
	Period            string     `json:"period,omitempty"`
	TotalRuns         int        `json:"total_runs"`
	TotalNewlyMatched int        `json:"total_newly_matched"`
	TotalNewlyFuzzy   int        `json:"total_newly_fuzzy"`
	FirstExecutedAt   *time.Time `json:"first_executed_at"`
	LastExecutedAt    *time.Time `json:"last_executed_at"`
}

// RunsByPeriod lists a period's runs, newest first.
func (s *Service) RunsByPeriod(ctx context.Context, period string) ([]models.ReconciliationRun, error) {
	if !models.IsPeriod(period) {
		return nil, &ValidationError{Field: "period", Message: "must be YYYY-MM"}
	}
	runs, err := s.store.Runs(ctx, period)
	if err != nil {
		return nil, translate("list runs", err)
	}
	return runs, nil
}

// LatestRun returns the newest run of period.
func (s *Service) LatestRun(ctx context.Context, period string) (*models.ReconciliationRun, error) {
	if !models.IsPeriod(period) {
		return nil, &ValidationError{Field: "period", Message: "must be YYYY-MM"}
	}
	run, err := s.store.LatestRun(ctx, period)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("latest run", err)
	}
	return run, nil
}

// RunStats aggregates the runs of period. An empty period covers every period.
func (s *Service) RunStats(ctx context.Context, period string) (*RunStats, error) {
	if period != "" && !models.IsPeriod(period) {
		return nil, &ValidationError{Field: "period", Message: "must be YYYY-MM"}
	}
	runs, err := s.store.Runs(ctx, period)
	if err != nil {
		return nil, translate("run stats", err)
	}

	stats := &RunStats{Period: period, TotalRuns: len(runs)}
	for i := range runs {
		r := &runs[i]
		stats.TotalNewlyMatched += r.NewlyMatched
		stats.TotalNewlyFuzzy += r.NewlyFuzzy
		if stats.FirstExecutedAt == nil || r.ExecutedAt.Before(*stats.FirstExecutedAt) {
			t := r.ExecutedAt
			stats.FirstExecutedAt = &t
		}
		if stats.LastExecutedAt == nil || r.ExecutedAt.After(*stats.LastExecutedAt) {
			t := r.ExecutedAt
			stats.LastExecutedAt = &t
		}
	}
	return stats, nil
}

// PruneRuns deletes runs executed before cutoff and their archives.
// It returns the number of ledger rows removed.
func (s *Service) PruneRuns(ctx context.Context, cutoff time.Time) (int, error) {
	var pruned []models.ReconciliationRun
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		pruned, err = tx.DeleteRunsBefore(ctx, cutoff.UTC())
		return err
	})
	if err != nil {
		return 0, translate("prune runs", err)
	}

	if s.archive != nil && len(pruned) > 0 {
		if err := s.archive.Remove(ctx, pruned); err != nil {
			s.logger.Warn("Failed to remove run archives", zap.Int("runs", len(pruned)), zap.Error(err))
		}
	}
	s.logger.Info("Pruned reconciliation runs", zap.Int("runs", len(pruned)), zap.Time("cutoff", cutoff))
	return len(pruned), nil
}
