package postgres

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

// MigrationStatus is the schema version of a database
type MigrationStatus struct {
	Version uint `json:"version" yaml:"version"`
	Dirty   bool `json:"dirty" yaml:"dirty"`
}

// RunMigrations applies all pending migrations from the provided filesystem
func RunMigrations(db *sqlx.DB, migrationsFS fs.FS) error {
	m, err := newMigrator(db, migrationsFS)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	// Do not call m.Close here because it would close the shared *sql.DB.
	return nil
}

// RollbackMigrations reverts the given number of applied migrations
func RollbackMigrations(db *sqlx.DB, migrationsFS fs.FS, steps int) error {
	if steps < 1 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}

	m, err := newMigrator(db, migrationsFS)
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}
	return nil
}

// GetMigrationStatus returns the current schema version. Version is 0 on an
// empty database.
func GetMigrationStatus(db *sqlx.DB, migrationsFS fs.FS) (*MigrationStatus, error) {
	m, err := newMigrator(db, migrationsFS)
	if err != nil {
		return nil, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return &MigrationStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migration version: %w", err)
	}
	return &MigrationStatus{Version: version, Dirty: dirty}, nil
}

func newMigrator(db *sqlx.DB, migrationsFS fs.FS) (*migrate.Migrate, error) {
	if db == nil {
		return nil, errors.New("migration database handle is required")
	}

	source, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	var driver database.Driver
	switch db.DriverName() {
	case "sqlite":
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	case "postgres":
		driver, err = migratepg.WithInstance(db.DB, &migratepg.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration driver: %s", db.DriverName())
	}
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.DriverName(), driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
