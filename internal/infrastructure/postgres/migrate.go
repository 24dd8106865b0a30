package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "github.com/lib/pq"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"go.uber.org/zap"

	"github.com/crowdvault/backend/internal/config"
)

// RunMigrations brings the schema up to date at startup. Disabled via config
// for deployments that run migrations out of band.
func RunMigrations(cfg *config.Config, logger *zap.Logger) error {
	if cfg == nil || !cfg.Migrations.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping migration connection: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	source := "file://" + filepath.ToSlash(cfg.Migrations.Path)
	m, err := migrate.NewWithDatabaseInstance(source, cfg.Database.Name, driver)
	if err != nil {
		return err
	}
	defer m.Close()

	switch err := m.Up(); {
	case err == nil:
		logger.Info("schema migrated", zap.String("source", cfg.Migrations.Path))
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("schema already current")
	default:
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
