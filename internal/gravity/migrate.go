package gravity

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	gravityMigrationsPath = "migrations/gravity"
	migrateDefaultTable   = "schema_migrations"
)

//go:embed migrations/gravity/*.sql
var migrationsFS embed.FS

// MigrateGravityDB applies the embedded baseline schema. Every statement is
// CREATE ... IF NOT EXISTS, so running it against a database created by the
// resolver only adds what is missing.
func MigrateGravityDB(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate %s: nil db", gravityMigrationsPath)
	}

	sourceDriver, err := iofs.New(migrationsFS, gravityMigrationsPath)
	if err != nil {
		return fmt.Errorf("migrate %s: init source: %w", gravityMigrationsPath, err)
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{
		MigrationsTable: migrateDefaultTable,
	})
	if err != nil {
		return fmt.Errorf("migrate %s: init db driver: %w", gravityMigrationsPath, err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("migrate %s: init migrator: %w", gravityMigrationsPath, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: up: %w", gravityMigrationsPath, err)
	}
	return nil
}
