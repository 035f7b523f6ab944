package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres migrate driver
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"  // sqlite3 migrate driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file source driver
)

// Migrations are read from <migrations_path>/<driver>.
func newMigrate(cfg config.DatabaseConfig) (*migrate.Migrate, string, error) {
	dir := filepath.Join(cfg.MigrationsPath, cfg.Driver)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	m, err := migrate.New("file://"+filepath.ToSlash(dir), cfg.MigrateURL())
	if err != nil {
		return nil, dir, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, dir, nil
}

func closeMigrate(m *migrate.Migrate, log logger.Logger) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		log.Warn("Failed to close migrate instance", logger.Error(err))
	}
}

// RunMigrations applies all pending migrations.
func RunMigrations(cfg config.DatabaseConfig, log logger.Logger) error {
	m, dir, err := newMigrate(cfg)
	if err != nil {
		return err
	}
	defer closeMigrate(m, log)

	if upErr := m.Up(); upErr != nil {
		if errors.Is(upErr, migrate.ErrNoChange) {
			log.Info("No pending migrations", logger.String("migrations_path", dir))
			return nil
		}
		return fmt.Errorf("run migrations: %w", upErr)
	}

	log.Info("Migrations applied successfully",
		logger.String("driver", cfg.Driver),
		logger.String("migrations_path", dir),
	)
	return nil
}

// MigrateDown rolls back steps migrations (at least one).
func MigrateDown(cfg config.DatabaseConfig, steps int, log logger.Logger) error {
	m, dir, err := newMigrate(cfg)
	if err != nil {
		return err
	}
	defer closeMigrate(m, log)

	if steps <= 0 {
		steps = 1
	}

	if downErr := m.Steps(-steps); downErr != nil {
		if errors.Is(downErr, migrate.ErrNoChange) {
			log.Info("No migrations to roll back", logger.String("migrations_path", dir))
			return nil
		}
		return fmt.Errorf("roll back migrations: %w", downErr)
	}

	log.Info("Migrations rolled back",
		logger.String("migrations_path", dir),
		logger.Int("steps", steps),
	)
	return nil
}

// MigrationVersion returns the applied version and whether it is dirty.
func MigrationVersion(cfg config.DatabaseConfig, log logger.Logger) (uint, bool, error) {
	m, _, err := newMigrate(cfg)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrate(m, log)

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get migration version: %w", err)
	}
	return version, dirty, nil
}
