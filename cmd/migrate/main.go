package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/fastygo/planner/internal/config"
	pgInfra "github.com/fastygo/planner/internal/infrastructure/postgres"
	sqliteInfra "github.com/fastygo/planner/internal/infrastructure/sqlite"
	"github.com/fastygo/planner/pkg/logger"
	"github.com/fastygo/planner/repository/sqlite"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	zapLogger, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("driver", cfg.Storage.Driver))

	m, err := newMigrator(cfg)
	if err != nil {
		zapLogger.Fatal("migration init failed", zap.Error(err))
	}
	defer m.Close()
	m.Log = &migrateLogger{logger: zapLogger}

	if err := run(m, args, zapLogger); err != nil {
		zapLogger.Fatal("migration failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func newMigrator(cfg *config.Config) (*migrate.Migrate, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return pgInfra.NewMigrator(cfg.Database.URL, cfg.Migrations.Path)
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqliteInfra.NewMigrator(store.DB(), cfg.Migrations.Path)
	default:
		return nil, fmt.Errorf("driver %q has no schema to migrate", cfg.Storage.Driver)
	}
}

func run(m *migrate.Migrate, args []string, log *zap.Logger) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Info("migrations up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Info("migrations down completed", zap.Int("steps", steps))

	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return err
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			return errors.New("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return err
		}
		log.Info("migration version forced", zap.Int("version", v))

	default:
		usage()
		os.Exit(1)
	}
	return nil
}

type migrateLogger struct {
	logger *zap.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *migrateLogger) Verbose() bool { return false }

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version (bypass dirty state)

Environment:
  STORAGE_DRIVER    postgres (default) or sqlite
  DATABASE_URL      Postgres DSN, or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD
  SQLITE_PATH       SQLite file (default: ./data/planner.sqlite)
  MIGRATIONS_PATH   Directory overriding the embedded migrations`)
}
