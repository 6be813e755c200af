package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"go.uber.org/zap"

	"github.com/fastygo/planner/internal/config"
	"github.com/fastygo/planner/migrations"
)

// NewMigrator binds an open SQLite handle to the SQLite migration files.
// Closing the returned Migrate also closes db.
func NewMigrator(db *sql.DB, dir string) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, err
	}
	src, err := migrations.Source(migrations.DialectSQLite, dir)
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	return migrate.NewWithInstance("migrations", src, "sqlite3", driver)
}

// RunMigrations brings the schema up to date when enabled in configuration.
// The handle stays open.
func RunMigrations(db *sql.DB, cfg *config.Config, logger *zap.Logger) error {
	if cfg == nil || !cfg.Migrations.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m, err := NewMigrator(db, cfg.Migrations.Path)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, _ := m.Version()
	logger.Info("sqlite migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
