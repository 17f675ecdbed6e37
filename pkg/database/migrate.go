package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded migrations over a dedicated connection,
// which is closed afterwards.
func RunMigrations(driverName, dsn string) error {
	const op = "database.RunMigrations"

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	var driver migratedb.Driver

	switch driverName {
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case DriverPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", driverName)
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("%s: failed to initialize database driver: %w", op, err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		driver.Close()
		return fmt.Errorf("%s: failed to initialize migrations source: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		source.Close()
		driver.Close()
		return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return nil
}
