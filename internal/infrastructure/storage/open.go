// Package storage opens the repository.Store selected by configuration.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/planner/internal/config"
	pgInfra "github.com/fastygo/planner/internal/infrastructure/postgres"
	sqliteInfra "github.com/fastygo/planner/internal/infrastructure/sqlite"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/repository/bolt"
	"github.com/fastygo/planner/repository/postgres"
	"github.com/fastygo/planner/repository/sqlite"
)

// Open migrates (where the driver has a schema) and opens the configured
// store. The caller owns the returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("driver", cfg.Storage.Driver))

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, log); err != nil {
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		return postgres.NewStore(pool), nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqliteInfra.RunMigrations(store.DB(), cfg, log); err != nil {
			store.Close()
			return nil, fmt.Errorf("sqlite migrations: %w", err)
		}
		log.Info("opened sqlite store", zap.String("path", cfg.Storage.SQLitePath))
		return store, nil

	case config.DriverBolt:
		store, err := bolt.Open(cfg.Storage.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("bolt open: %w", err)
		}
		log.Info("opened bolt store", zap.String("path", cfg.Storage.BoltPath))
		return store, nil
	}
	return nil, fmt.Errorf("storage: unknown driver %q", cfg.Storage.Driver)
}
