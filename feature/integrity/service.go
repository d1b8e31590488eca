package integrity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forecast-recon/core/storage"
	"forecast-recon/feature/integrity/checks"
	"forecast-recon/feature/reconciliation/models"
	"forecast-recon/feature/reconciliation/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidPeriod is returned for a period not in YYYY-MM form.
	ErrInvalidPeriod = errors.New("period must be YYYY-MM")
	// ErrArchiveDisabled is returned by CheckArchive when no storage client is configured.
	ErrArchiveDisabled = errors.New("run archive is disabled")
)

// PeriodReport is the result of checking one period's records.
type PeriodReport struct {
	Period     string             `json:"period"`
	Orders     int                `json:"orders"`
	GLEntries  int                `json:"gl_entries"`
	Violations []checks.Violation `json:"violations"`
	Healthy    bool               `json:"healthy"`
	CheckedAt  time.Time          `json:"checked_at"`
}

// Service handles integrity checks.
type Service struct {
	store  *store.Store
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates a new integrity service. client may be nil when run archiving is disabled.
func NewService(st *store.Store, client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// CheckPeriod verifies the reconciliation invariants over a period's records,
// following match edges into other periods where a manual match crossed them.
func (s *Service) CheckPeriod(ctx context.Context, period string) (*PeriodReport, error) {
	if !models.IsPeriod(period) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidPeriod, period)
	}

	var (
		orders  []models.OrderForecast
		entries []models.GLEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.store.Orders(gctx, period)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.store.GLEntries(gctx, period)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	allOrders, allEntries, err := s.closeEdges(ctx, orders, entries)
	if err != nil {
		return nil, err
	}

	report := &PeriodReport{
		Period:     period,
		Orders:     len(orders),
		GLEntries:  len(entries),
		Violations: checks.CheckRecords(allOrders, allEntries),
		CheckedAt:  time.Now().UTC(),
	}
	report.Healthy = len(report.Violations) == 0
	return report, nil
}

// closeEdges adds the out-of-period records on either end of a match edge.
func (s *Service) closeEdges(ctx context.Context, orders []models.OrderForecast, entries []models.GLEntry) ([]models.OrderForecast, []models.GLEntry, error) {
	haveOrder := make(map[uint]struct{}, len(orders))
	for _, o := range orders {
		haveOrder[o.ID] = struct{}{}
	}
	haveGL := make(map[uint]struct{}, len(entries))
	glIDs := make([]uint, 0, len(entries))
	for _, e := range entries {
		haveGL[e.ID] = struct{}{}
		glIDs = append(glIDs, e.ID)
	}
	var foreignGL []uint
	for _, o := range orders {
		if o.GLMatchID == nil {
			continue
		}
		if _, ok := haveGL[*o.GLMatchID]; !ok {
			foreignGL = append(foreignGL, *o.GLMatchID)
		}
	}

	var (
		referencing []models.OrderForecast
		extraGL     []models.GLEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		referencing, err = s.store.OrdersReferencing(gctx, glIDs)
		return err
	})
	g.Go(func() error {
		var err error
		extraGL, err = s.store.GLEntriesByID(gctx, foreignGL)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, o := range referencing {
		if _, ok := haveOrder[o.ID]; !ok {
			orders = append(orders, o)
		}
	}
	return orders, append(entries, extraGL...), nil
}

// CheckSchema verifies the reconciliation tables and columns.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.store.DB())
}

// CheckArchive returns the archive keys missing for a period's runs.
func (s *Service) CheckArchive(ctx context.Context, period string) ([]string, error) {
	if !models.IsPeriod(period) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidPeriod, period)
	}
	if s.client == nil {
		return nil, ErrArchiveDisabled
	}
	runs, err := s.store.Runs(ctx, period)
	if err != nil {
		return nil, err
	}
	return checks.CheckArchive(ctx, s.client, s.bucket, period, runs)
}
