package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forecast-recon/feature/reconciliation/models"

	"gorm.io/gorm"
)

// CreateRun inserts a run record.
func (s *Store) CreateRun(ctx context.Context, run *models.ReconciliationRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run for %s: %w", run.Period, err)
	}
	return nil
}

// Runs lists runs newest first. An empty period lists every period.
func (s *Store) Runs(ctx context.Context, period string) ([]models.ReconciliationRun, error) {
	q := s.db.WithContext(ctx)
	if period != "" {
		q = q.Where("period = ?", period)
	}
	var out []models.ReconciliationRun
	if err := q.Order("executed_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return out, nil
}

// LatestRun returns the most recent run of period.
func (s *Store) LatestRun(ctx context.Context, period string) (*models.ReconciliationRun, error) {
	var run models.ReconciliationRun
	err := s.db.WithContext(ctx).
		Where("period = ?", period).
		Order("executed_at DESC, id DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no run for %s: %w", period, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load latest run for %s: %w", period, err)
	}
	return &run, nil
}

// DeleteRunsBefore removes runs executed before cutoff and returns them.
func (s *Store) DeleteRunsBefore(ctx context.Context, cutoff time.Time) ([]models.ReconciliationRun, error) {
	var doomed []models.ReconciliationRun
	if err := s.db.WithContext(ctx).Where("executed_at < ?", cutoff).Order("executed_at").Find(&doomed).Error; err != nil {
		return nil, fmt.Errorf("failed to select runs before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if len(doomed) == 0 {
		return doomed, nil
	}
	ids := make([]string, len(doomed))
	for i, r := range doomed {
		ids[i] = r.ID
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.ReconciliationRun{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete runs: %w", err)
	}
	return doomed, nil
}
