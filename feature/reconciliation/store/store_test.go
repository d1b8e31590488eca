package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"forecast-recon/core/database"
	"forecast-recon/feature/reconciliation/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *Store {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return New(db)
}

// setupMockDB creates a mock GORM DB for failure paths.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func seed(t *testing.T, s *Store) ([]models.OrderForecast, []models.GLEntry) {
	ctx := context.Background()
	orders := []models.OrderForecast{
		{AccountingPeriod: "2026-01", AccountingItem: "売上高", Description: "保守費用", Amount: decimal.NewFromInt(500000)},
		{AccountingPeriod: "2026-01", AccountingItem: "外注費", Description: "開発", Amount: decimal.NewFromInt(120000)},
		{AccountingPeriod: "2026-02", AccountingItem: "売上高", Description: "保守費用", Amount: decimal.NewFromInt(500000)},
	}
	entries := []models.GLEntry{
		{VoucherNo: "V-1", TransactionDate: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), AccountCode: "4100", AccountName: "売上高", Description: "保守費用", Amount: decimal.NewFromInt(500000)},
		{VoucherNo: "V-2", TransactionDate: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), AccountCode: "4100", AccountName: "売上高", Description: "保守費用", Amount: decimal.NewFromInt(500000)},
	}
	require.NoError(t, s.CreateOrders(ctx, orders))
	require.NoError(t, s.CreateGLEntries(ctx, entries))
	return orders, entries
}

func TestStore_CreateAndQuery(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	orders, entries := seed(t, s)

	assert.Equal(t, "2026-01", entries[0].Period)
	assert.Equal(t, "2026-02", entries[1].Period)

	got, err := s.Orders(ctx, "2026-01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, orders[0].ID, got[0].ID)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, models.OrderUnmatched, got[0].ReconciliationStatus)
	assert.Equal(t, 1, got[0].Version)

	gl, err := s.GLEntries(ctx, "2026-01", models.GLUnmatched)
	require.NoError(t, err)
	require.Len(t, gl, 1)
	assert.Equal(t, "V-1", gl[0].VoucherNo)

	none, err := s.Orders(ctx, "2026-01", models.OrderMatched)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_SaveOrderVersionCheck(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	orders, entries := seed(t, s)

	o, err := s.GetOrder(ctx, orders[0].ID)
	require.NoError(t, err)
	stale := *o

	require.NoError(t, o.Match(entries[0].ID, models.OrderMatched))
	require.NoError(t, s.SaveOrder(ctx, o))
	assert.Equal(t, 2, o.Version)

	stale.ReconciliationStatus = models.OrderExcluded
	err = s.SaveOrder(ctx, &stale)
	assert.True(t, errors.Is(err, ErrVersionConflict))

	reloaded, err := s.GetOrder(ctx, orders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderMatched, reloaded.ReconciliationStatus)
	require.NotNil(t, reloaded.GLMatchID)
	assert.Equal(t, entries[0].ID, *reloaded.GLMatchID)
}

func TestStore_SaveGLEntryVersionCheck(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	_, entries := seed(t, s)

	g, err := s.GetGLEntry(ctx, entries[0].ID)
	require.NoError(t, err)
	stale := *g

	require.NoError(t, g.Claim())
	require.NoError(t, s.SaveGLEntry(ctx, g))

	err = s.SaveGLEntry(ctx, &stale)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestStore_UnresolvedAndCounts(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	orders, entries := seed(t, s)

	o, err := s.GetOrder(ctx, orders[0].ID)
	require.NoError(t, err)
	require.NoError(t, o.Match(entries[0].ID, models.OrderFuzzy))
	require.NoError(t, s.SaveOrder(ctx, o))
	g, err := s.GetGLEntry(ctx, entries[0].ID)
	require.NoError(t, err)
	require.NoError(t, g.Claim())
	require.NoError(t, s.SaveGLEntry(ctx, g))

	excluded, err := s.GetOrder(ctx, orders[1].ID)
	require.NoError(t, err)
	require.NoError(t, excluded.Exclude(nil))
	require.NoError(t, s.SaveOrder(ctx, excluded))

	pool, err := s.UnresolvedOrders(ctx, "2026-01")
	require.NoError(t, err)
	assert.Empty(t, pool)

	glPool, err := s.UnresolvedGLEntries(ctx, "2026-01")
	require.NoError(t, err)
	assert.Empty(t, glPool)

	// the fuzzy order and the excluded one
	n, err := s.CountResolvedOrders(ctx, "2026-01")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.CountMatchedGLEntries(ctx, "2026-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	refs, err := s.OrdersReferencing(ctx, []uint{entries[0].ID})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, orders[0].ID, refs[0].ID)
}

func TestStore_GetMissing(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	orders, _ := seed(t, s)

	_, err := s.GetOrder(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetGLEntry(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	found, missing, err := s.GetOrders(ctx, []uint{orders[1].ID, 999, orders[0].ID})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, []uint{999}, missing)
}

func TestStore_DeleteGuards(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	orders, entries := seed(t, s)

	o, err := s.GetOrder(ctx, orders[0].ID)
	require.NoError(t, err)
	require.NoError(t, o.Match(entries[0].ID, models.OrderMatched))
	require.NoError(t, s.SaveOrder(ctx, o))
	g, err := s.GetGLEntry(ctx, entries[0].ID)
	require.NoError(t, err)
	require.NoError(t, g.Claim())
	require.NoError(t, s.SaveGLEntry(ctx, g))

	assert.ErrorIs(t, s.DeleteOrder(ctx, orders[0].ID), ErrResolved)
	assert.ErrorIs(t, s.DeleteGLEntry(ctx, entries[0].ID), ErrResolved)

	assert.NoError(t, s.DeleteOrder(ctx, orders[1].ID))
	assert.NoError(t, s.DeleteGLEntry(ctx, entries[1].ID))
	assert.ErrorIs(t, s.DeleteOrder(ctx, orders[1].ID), ErrNotFound)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	orders, entries := seed(t, s)

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx *Store) error {
		o, err := tx.GetOrder(ctx, orders[0].ID)
		if err != nil {
			return err
		}
		if err := o.Match(entries[0].ID, models.OrderMatched); err != nil {
			return err
		}
		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	o, err := s.GetOrder(ctx, orders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderUnmatched, o.ReconciliationStatus)
	assert.Nil(t, o.GLMatchID)
	assert.Equal(t, 1, o.Version)
}

func TestStore_SaveOrderFailureRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `order_forecasts`").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := s.Transaction(context.Background(), func(tx *Store) error {
		o := &models.OrderForecast{ID: 1, Version: 1, ReconciliationStatus: models.OrderUnmatched}
		return tx.SaveOrder(context.Background(), o)
	})
	assert.ErrorContains(t, err, "deadlock")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveOrderNoRowsIsConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `order_forecasts`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	o := &models.OrderForecast{ID: 1, Version: 3, ReconciliationStatus: models.OrderUnmatched}
	err := s.SaveOrder(context.Background(), o)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, 3, o.Version)
}

func TestStore_Runs(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, s.CreateRun(ctx, &models.ReconciliationRun{
			ID:              id,
			Period:          "2026-01",
			ExecutedAt:      base.Add(time.Duration(i) * time.Hour),
			ExecutedBy:      "tester",
			AmountTolerance: decimal.NewFromInt(1000),
			NewlyMatched:    i,
		}))
	}
	require.NoError(t, s.CreateRun(ctx, &models.ReconciliationRun{ID: "run-d", Period: "2026-02", ExecutedAt: base}))

	runs, err := s.Runs(ctx, "2026-01")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-c", runs[0].ID)

	all, err := s.Runs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	latest, err := s.LatestRun(ctx, "2026-01")
	require.NoError(t, err)
	assert.Equal(t, "run-c", latest.ID)
	assert.True(t, latest.AmountTolerance.Equal(decimal.NewFromInt(1000)))

	_, err = s.LatestRun(ctx, "2025-12")
	assert.ErrorIs(t, err, ErrNotFound)

	pruned, err := s.DeleteRunsBefore(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Len(t, pruned, 3)

	left, err := s.Runs(ctx, "")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "run-c", left[0].ID)
}

func TestStore_AccountMappings(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	m := &models.AccountMapping{AccountingItem: "売上高", AccountCode: "4100", AccountName: "売上"}
	require.NoError(t, s.SaveAccountMapping(ctx, m))
	again := &models.AccountMapping{AccountingItem: "売上高", AccountCode: "4100", AccountName: "売上高"}
	require.NoError(t, s.SaveAccountMapping(ctx, again))
	assert.Equal(t, m.ID, again.ID)
	require.NoError(t, s.SaveAccountMapping(ctx, &models.AccountMapping{AccountingItem: "売上高", AccountCode: "4110", AccountName: "保守売上"}))

	all, err := s.AccountMappings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "売上高", all[0].AccountName)
}

func TestStore_AccountMappingsStamp(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	empty, err := s.AccountMappingsStamp(ctx)
	require.NoError(t, err)

	m := &models.AccountMapping{AccountingItem: "売上高", AccountCode: "4100", AccountName: "売上"}
	require.NoError(t, s.SaveAccountMapping(ctx, m))
	inserted, err := s.AccountMappingsStamp(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, empty, inserted)

	same, err := s.AccountMappingsStamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, inserted, same)

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.SaveAccountMapping(ctx, &models.AccountMapping{AccountingItem: "売上高", AccountCode: "4100", AccountName: "売上高"}))
	renamed, err := s.AccountMappingsStamp(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, inserted, renamed)
}
