package cmd

import (
	"context"
	"fmt"

	"forecast-recon/core/config"
	"forecast-recon/core/database"
	"forecast-recon/core/lock"
	"forecast-recon/core/logger"
	"forecast-recon/core/storage"
	"forecast-recon/feature/reconciliation"
	"forecast-recon/feature/reconciliation/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles the dependencies every command builds from configuration.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	store   *store.Store
	client  storage.Client // nil when run archiving is disabled
	service *reconciliation.Service
}

// bootstrap loads configuration, connects to the database and, when enabled,
// the run archive, and builds the reconciliation service.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logg = logg.With(zap.String("database", cfg.Database.Name))

	locker, err := lock.New(cfg.Lock)
	if err != nil {
		return nil, fmt.Errorf("failed to create run lock: %w", err)
	}

	st := store.New(db)
	opts := []reconciliation.Option{
		reconciliation.WithAuditor(reconciliation.NewLogAuditor(logg)),
	}

	var client storage.Client
	if cfg.Storage.Enabled {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, fmt.Errorf("failed to prepare archive bucket: %w", err)
		}
		opts = append(opts, reconciliation.WithArchive(reconciliation.NewArchive(client, cfg.Storage.Bucket)))
	} else {
		logg.Debug("Run archive disabled")
	}

	return &app{
		cfg:     cfg,
		logger:  logg,
		db:      db,
		store:   st,
		client:  client,
		service: reconciliation.NewService(st, locker, cfg.Reconcile, logg, opts...),
	}, nil
}
