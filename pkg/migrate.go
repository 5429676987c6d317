package density

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	sqlx "github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateUp brings the calibration schema to the latest version. It is a
// no-op on an up to date database.
func MigrateUp(db *sqlx.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	// m is not closed: that would close db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the schema version, 0 when nothing was applied.
func MigrateVersion(db *sqlx.DB) (uint, bool, error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func newMigrate(db *sqlx.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	var driver database.Driver
	name := db.DriverName()
	switch name {
	case "sqlite":
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	case "mysql":
		driver, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	default:
		return nil, fmt.Errorf("no migration driver for %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migration driver: %w", name, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, name, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	logger.Info(fmt.Sprintf("[migrate] "+format, v...), "migrate")
}

func (migrateLogger) Verbose() bool {
	return verbosity > 2
}
