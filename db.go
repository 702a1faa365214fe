package main

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq" // PostgreSQL driver
)

var db *sql.DB

func initDB(cfg *Config) error {
	var err error
	db, err = sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Infow("database connection established")

	if err := runMigrations(db, cfg.MigrationsPath); err != nil {
		return err
	}
	return nil
}

// runMigrations applies pending migrations from the given directory.
// Idempotent; a fully migrated database is not an error.
func runMigrations(db *sql.DB, path string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", path), "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	err = m.Up()
	if err == migrate.ErrNoChange {
		logger.Infow("no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, _, _ := m.Version()
	logger.Infow("applied migrations", "version", version)
	return nil
}
