package store

import (
	"context"
	"errors"
	"fmt"

	"forecast-recon/feature/reconciliation/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a versioned update touched no row.
	ErrVersionConflict = errors.New("record was modified concurrently")
	// ErrResolved is returned when deleting a matched or fuzzy record.
	ErrResolved = errors.New("record is matched")
)

// Store is the gorm repository behind the reconciliation engine.
type Store struct {
	db *gorm.DB
}

// New creates a store on db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the reconciliation tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate reconciliation tables: %w", err)
	}
	return nil
}

// Transaction runs fn inside one database transaction. The store passed to fn
// is bound to that transaction; any error returned by fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// locking adds a row lock. The sqlite dialect drops the clause.
func (s *Store) locking(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

// GetOrder loads one order under a row lock.
func (s *Store) GetOrder(ctx context.Context, id uint) (*models.OrderForecast, error) {
	var o models.OrderForecast
	if err := s.locking(ctx).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return &o, nil
}

// GetGLEntry loads one GL entry under a row lock.
func (s *Store) GetGLEntry(ctx context.Context, id uint) (*models.GLEntry, error) {
	var g models.GLEntry
	if err := s.locking(ctx).First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("gl entry %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load gl entry %d: %w", id, err)
	}
	return &g, nil
}

// GetOrders loads orders by id under row locks, ordered by id.
// Ids that do not exist are returned as missing.
func (s *Store) GetOrders(ctx context.Context, ids []uint) ([]models.OrderForecast, []uint, error) {
	var out []models.OrderForecast
	if err := s.locking(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load orders: %w", err)
	}
	found := make(map[uint]struct{}, len(out))
	for _, o := range out {
		found[o.ID] = struct{}{}
	}
	return out, missingIDs(ids, found), nil
}

// GetGLEntries loads GL entries by id under row locks, ordered by id.
func (s *Store) GetGLEntries(ctx context.Context, ids []uint) ([]models.GLEntry, []uint, error) {
	var out []models.GLEntry
	if err := s.locking(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load gl entries: %w", err)
	}
	found := make(map[uint]struct{}, len(out))
	for _, g := range out {
		found[g.ID] = struct{}{}
	}
	return out, missingIDs(ids, found), nil
}

func missingIDs(ids []uint, found map[uint]struct{}) []uint {
	var missing []uint
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// SaveOrder writes the order's reconciliation fields if its version is unchanged
// and bumps the version.
func (s *Store) SaveOrder(ctx context.Context, o *models.OrderForecast) error {
	res := s.db.WithContext(ctx).Model(&models.OrderForecast{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{
			"reconciliation_status": string(o.ReconciliationStatus),
			"gl_match_id":           o.GLMatchID,
			"is_excluded":           o.IsExcluded,
			"exclusion_reason":      o.ExclusionReason,
			"version":               gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update order %d: %w", o.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d at version %d: %w", o.ID, o.Version, ErrVersionConflict)
	}
	o.Version++
	return nil
}

// SaveGLEntry writes the entry's reconciliation fields if its version is unchanged
// and bumps the version.
func (s *Store) SaveGLEntry(ctx context.Context, g *models.GLEntry) error {
	res := s.db.WithContext(ctx).Model(&models.GLEntry{}).
		Where("id = ? AND version = ?", g.ID, g.Version).
		Updates(map[string]any{
			"reconciliation_status": string(g.ReconciliationStatus),
			"is_excluded":           g.IsExcluded,
			"exclusion_reason":      g.ExclusionReason,
			"version":               gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update gl entry %d: %w", g.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gl entry %d at version %d: %w", g.ID, g.Version, ErrVersionConflict)
	}
	g.Version++
	return nil
}

// CreateOrders inserts new order lines. They start unmatched, or excluded when flagged.
func (s *Store) CreateOrders(ctx context.Context, orders []models.OrderForecast) error {
	if len(orders) == 0 {
		return nil
	}
	for i := range orders {
		orders[i].ReconciliationStatus = models.OrderUnmatched
		if orders[i].IsExcluded {
			orders[i].ReconciliationStatus = models.OrderExcluded
		}
		orders[i].GLMatchID = nil
	}
	if err := s.db.WithContext(ctx).Create(&orders).Error; err != nil {
		return fmt.Errorf("failed to create orders: %w", err)
	}
	return nil
}

// CreateGLEntries inserts imported GL lines unmatched.
func (s *Store) CreateGLEntries(ctx context.Context, entries []models.GLEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		entries[i].ReconciliationStatus = models.GLUnmatched
	}
	if err := s.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to create gl entries: %w", err)
	}
	return nil
}

// DeleteOrder removes an order that holds no match.
func (s *Store) DeleteOrder(ctx context.Context, id uint) error {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if o.ReconciliationStatus.Resolved() {
		return fmt.Errorf("order %d is %s: %w", id, o.ReconciliationStatus, ErrResolved)
	}
	if err := s.db.WithContext(ctx).Delete(&models.OrderForecast{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	return nil
}

// DeleteGLEntry removes an unmatched GL entry.
func (s *Store) DeleteGLEntry(ctx context.Context, id uint) error {
	g, err := s.GetGLEntry(ctx, id)
	if err != nil {
		return err
	}
	if g.ReconciliationStatus == models.GLMatched {
		return fmt.Errorf("gl entry %d is matched: %w", id, ErrResolved)
	}
	if err := s.db.WithContext(ctx).Delete(&models.GLEntry{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete gl entry %d: %w", id, err)
	}
	return nil
}
