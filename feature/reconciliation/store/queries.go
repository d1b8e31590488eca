package store

import (
	"context"
	"database/sql"
	"fmt"

	"forecast-recon/feature/reconciliation/models"
)

// Orders lists a period's orders ordered by id, optionally filtered by status.
func (s *Store) Orders(ctx context.Context, period string, statuses ...models.OrderStatus) ([]models.OrderForecast, error) {
	q := s.db.WithContext(ctx).Where("accounting_period = ?", period)
	if len(statuses) > 0 {
		q = q.Where("reconciliation_status IN ?", orderStatusStrings(statuses))
	}
	var out []models.OrderForecast
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for %s: %w", period, err)
	}
	return out, nil
}

// GLEntries lists a period's GL entries ordered by id, optionally filtered by status.
func (s *Store) GLEntries(ctx context.Context, period string, statuses ...models.GLStatus) ([]models.GLEntry, error) {
	q := s.db.WithContext(ctx).Where("period = ?", period)
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		q = q.Where("reconciliation_status IN ?", names)
	}
	var out []models.GLEntry
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list gl entries for %s: %w", period, err)
	}
	return out, nil
}

// UnresolvedOrders selects the period's unmatched, non-excluded orders under row locks.
func (s *Store) UnresolvedOrders(ctx context.Context, period string) ([]models.OrderForecast, error) {
	var out []models.OrderForecast
	err := s.locking(ctx).
		Where("accounting_period = ? AND reconciliation_status = ? AND is_excluded = ?", period, string(models.OrderUnmatched), false).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select unresolved orders for %s: %w", period, err)
	}
	return out, nil
}

// UnresolvedGLEntries selects the period's unmatched, non-excluded GL entries under row locks.
func (s *Store) UnresolvedGLEntries(ctx context.Context, period string) ([]models.GLEntry, error) {
	var out []models.GLEntry
	err := s.locking(ctx).
		Where("period = ? AND reconciliation_status = ? AND is_excluded = ?", period, string(models.GLUnmatched), false).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select unresolved gl entries for %s: %w", period, err)
	}
	return out, nil
}

// CountResolvedOrders counts the period's orders a run skips: matched, fuzzy and excluded.
func (s *Store) CountResolvedOrders(ctx context.Context, period string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.OrderForecast{}).
		Where("accounting_period = ? AND reconciliation_status <> ?", period, string(models.OrderUnmatched)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count resolved orders for %s: %w", period, err)
	}
	return n, nil
}

// CountMatchedGLEntries counts the period's matched GL entries.
func (s *Store) CountMatchedGLEntries(ctx context.Context, period string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.GLEntry{}).
		Where("period = ? AND reconciliation_status = ?", period, string(models.GLMatched)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count matched gl entries for %s: %w", period, err)
	}
	return n, nil
}

// OrdersReferencing lists the orders whose GLMatchID points into glIDs.
func (s *Store) OrdersReferencing(ctx context.Context, glIDs []uint) ([]models.OrderForecast, error) {
	var out []models.OrderForecast
	if len(glIDs) == 0 {
		return out, nil
	}
	if err := s.db.WithContext(ctx).Where("gl_match_id IN ?", glIDs).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load referencing orders: %w", err)
	}
	return out, nil
}

// GLEntriesByID loads GL entries without locking, ordered by id.
func (s *Store) GLEntriesByID(ctx context.Context, ids []uint) ([]models.GLEntry, error) {
	var out []models.GLEntry
	if len(ids) == 0 {
		return out, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load gl entries: %w", err)
	}
	return out, nil
}

// AccountMappings loads the full accounting item code table.
func (s *Store) AccountMappings(ctx context.Context) ([]models.AccountMapping, error) {
	var out []models.AccountMapping
	if err := s.db.WithContext(ctx).Order("accounting_item, account_code").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load account mappings: %w", err)
	}
	return out, nil
}

// AccountMappingsStamp fingerprints the mapping table by row count, highest id and
// latest update. Any insert or save through any instance changes it.
func (s *Store) AccountMappingsStamp(ctx context.Context) (string, error) {
	var row struct {
		RowCount int64
		LastID   sql.NullInt64
		Latest   sql.NullString
	}
	err := s.db.WithContext(ctx).Model(&models.AccountMapping{}).
		Select("COUNT(*) AS row_count, MAX(id) AS last_id, MAX(updated_at) AS latest").
		Scan(&row).Error
	if err != nil {
		return "", fmt.Errorf("failed to stamp account mappings: %w", err)
	}
	return fmt.Sprintf("%d/%d/%s", row.RowCount, row.LastID.Int64, row.Latest.String), nil
}

// SaveAccountMapping inserts a mapping or updates the account name of an existing one.
func (s *Store) SaveAccountMapping(ctx context.Context, m *models.AccountMapping) error {
	var existing models.AccountMapping
	err := s.db.WithContext(ctx).
		Where("accounting_item = ? AND account_code = ?", m.AccountingItem, m.AccountCode).
		Limit(1).Find(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to look up account mapping: %w", err)
	}
	if existing.ID != 0 {
		m.ID = existing.ID
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("failed to save account mapping %s: %w", m.AccountingItem, err)
	}
	return nil
}

func orderStatusStrings(statuses []models.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}
