package persistence

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/office-suite/general-ledger/internal/config"
)

// SchemaVersion describes the ledger schema after MigrateLedgerSchema
type SchemaVersion struct {
	Version uint
	Applied bool // false when the schema was already current
}

// ErrDirtySchema means an earlier migration stopped halfway; it has to be repaired with `migrate force`
type ErrDirtySchema struct {
	Version uint
}

func (e ErrDirtySchema) Error() string {
	return fmt.Sprintf("ledger schema is dirty at version %d", e.Version)
}

// MigrateLedgerSchema brings the database at cfg.URL up to the newest file under cfg.MigrationsPath
func MigrateLedgerSchema(cfg *config.PostgresConfig) (result SchemaVersion, err error) {
	switch {
	case cfg.MigrationsPath == "":
		return result, errors.New("migrations path cannot be empty")
	case cfg.URL == "":
		return result, errors.New("database URL cannot be empty")
	}

	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.URL)
	if err != nil {
		return result, fmt.Errorf("failed to open ledger migrations: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(sourceErr, dbErr)
		}
	}()

	current, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return result, fmt.Errorf("failed to read schema version: %w", err)
	case dirty:
		return SchemaVersion{Version: current}, ErrDirtySchema{Version: current}
	}

	result.Applied = true
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return result, fmt.Errorf("failed to apply migrations: %w", err)
		}
		result.Applied = false
	}

	if result.Version, _, err = m.Version(); err != nil {
		return result, fmt.Errorf("failed to read schema version: %w", err)
	}
	return result, nil
}
