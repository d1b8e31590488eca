package reconciliation

import (
	"context"
	"time"

	"forecast-recon/core/lock"
	"forecast-recon/core/reconcile"
	"forecast-recon/feature/reconciliation/match"
	"forecast-recon/feature/reconciliation/models"
	"forecast-recon/feature/reconciliation/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const codeTableKey = "account_mappings"

// Service is the reconciliation engine: the orchestrator, the manual override
// gateway and the run ledger over one record store.
type Service struct {
	store    *store.Store
	locker   lock.Locker
	cfg      Config
	logger   *zap.Logger
	archive  *Archive
	auditor  Auditor
	validate *validator.Validate
	codes    *reconcile.Cache[stampedCodeTable]
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithArchive enables archiving of committed runs.
func WithArchive(a *Archive) Option {
	return func(s *Service) { s.archive = a }
}

// WithAuditor replaces the default log auditor.
func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// WithClock replaces the clock used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the reconciliation service.
func NewService(st *store.Store, locker lock.Locker, cfg Config, logger *zap.Logger, opts ...Option) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	s := &Service{
		store:    st,
		locker:   locker,
		cfg:      cfg,
		logger:   logger,
		auditor:  NewLogAuditor(logger),
		validate: newValidator(),
		codes:    reconcile.NewCache[stampedCodeTable](time.Duration(cfg.CodeTableTTLSeconds) * time.Second),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Archive returns the run archive, or nil when archiving is disabled.
func (s *Service) Archive() *Archive {
	return s.archive
}

// Store returns the record store.
func (s *Service) Store() *store.Store {
	return s.store
}

// stampedCodeTable is a code table with the mapping stamp it was loaded under.
type stampedCodeTable struct {
	stamp string
	table *match.CodeTable
}

// codeTable serves the cached code table while the mapping table's stamp is
// unchanged, so a mapping saved by another process is seen by the next run.
func (s *Service) codeTable(ctx context.Context) (*match.CodeTable, error) {
	if s.cfg.CodeTableTTLSeconds <= 0 {
		return s.loadCodeTable(ctx)
	}
	stamp, err := s.store.AccountMappingsStamp(ctx)
	if err != nil {
		return nil, err
	}
	load := func(ctx context.Context) (stampedCodeTable, error) {
		table, err := s.loadCodeTable(ctx)
		return stampedCodeTable{stamp: stamp, table: table}, err
	}

	cached, err := s.codes.Get(ctx, codeTableKey, load)
	if err != nil {
		return nil, err
	}
	if cached.stamp != stamp {
		s.codes.Invalidate(codeTableKey)
		if cached, err = s.codes.Get(ctx, codeTableKey, load); err != nil {
			return nil, err
		}
	}
	return cached.table, nil
}

func (s *Service) loadCodeTable(ctx context.Context) (*match.CodeTable, error) {
	mappings, err := s.store.AccountMappings(ctx)
	if err != nil {
		return nil, err
	}
	return match.NewCodeTable(mappings), nil
}

// SaveAccountMapping stores one accounting item mapping and drops the cached code table.
func (s *Service) SaveAccountMapping(ctx context.Context, m *models.AccountMapping) error {
	if m.AccountingItem == "" || (m.AccountCode == "" && m.AccountName == "") {
		return &ValidationError{Field: "accounting_item", Message: "and an account code or name are required"}
	}
	if err := s.store.SaveAccountMapping(ctx, m); err != nil {
		return translate("save account mapping", err)
	}
	s.codes.Invalidate(codeTableKey)
	return nil
}

// AccountMappings lists the code table.
func (s *Service) AccountMappings(ctx context.Context) ([]models.AccountMapping, error) {
	out, err := s.store.AccountMappings(ctx)
	return out, translate("list account mappings", err)
}

// Orders lists a period's orders, optionally filtered by status.
func (s *Service) Orders(ctx context.Context, period string, status string) ([]models.OrderForecast, error) {
	if !models.IsPeriod(period) {
		return nil, &ValidationError{Field: "period", Message: "must be YYYY-MM"}
	}
	var statuses []models.OrderStatus
	if status != "" {
		st := models.OrderStatus(status)
		if !st.Valid() {
			return nil, &ValidationError{Field: "status", Message: "is not an order status"}
		}
		statuses = append(statuses, st)
	}
	out, err := s.store.Orders(ctx, period, statuses...)
	return out, translate("list orders", err)
}

// GLEntries lists a period's GL entries, optionally filtered by status.
func (s *Service) GLEntries(ctx context.Context, period string, status string) ([]models.GLEntry, error) {
	if !models.IsPeriod(period) {
		return nil, &ValidationError{Field: "period", Message: "must be YYYY-MM"}
	}
	var statuses []models.GLStatus
	if status != "" {
		st := models.GLStatus(status)
		if !st.Valid() {
			return nil, &ValidationError{Field: "status", Message: "is not a GL status"}
		}
		statuses = append(statuses, st)
	}
	out, err := s.store.GLEntries(ctx, period, statuses...)
	return out, translate("list gl entries", err)
}
