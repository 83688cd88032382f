package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/noah-isme/academy-ops-api/pkg/config"
)

// Migration actions accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStepUp = "step-up"
	MigrateDrop   = "drop"
)

// MigrationURL builds the golang-migrate connection string for the configured database.
func MigrationURL(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	if cfg.MigrationTable != "" {
		q.Set("x-migrations-table", cfg.MigrationTable)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Migrate runs one migration action against the database using the schema files in sourceURL.
func Migrate(cfg config.DatabaseConfig, sourceURL, action string) error {
	mig, err := migrate.New(sourceURL, MigrationURL(cfg))
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}
	defer mig.Close() //nolint:errcheck

	switch action {
	case MigrateUp:
		err = mig.Up()
	case MigrateDown:
		err = mig.Steps(-1)
	case MigrateStepUp:
		err = mig.Steps(1)
	case MigrateDrop:
		err = mig.Down()
	default:
		return fmt.Errorf("unknown migration action %q", action)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s failed: %w", action, err)
	}
	return nil
}
