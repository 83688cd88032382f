package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-ops-api/pkg/config"
)

func TestMigrationURL(t *testing.T) {
	raw := MigrationURL(config.DatabaseConfig{
		Host:           "db.internal",
		Port:           5433,
		User:           "ops",
		Password:       "p@ss word",
		Name:           "academy_ops",
		SSLMode:        "disable",
		MigrationTable: "schema_migrations",
	})

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "postgres", parsed.Scheme)
	assert.Equal(t, "db.internal:5433", parsed.Host)
	assert.Equal(t, "/academy_ops", parsed.Path)
	password, _ := parsed.User.Password()
	assert.Equal(t, "p@ss word", password)
	assert.Equal(t, "disable", parsed.Query().Get("sslmode"))
	assert.Equal(t, "schema_migrations", parsed.Query().Get("x-migrations-table"))
}

func TestMigrateRejectsUnknownAction(t *testing.T) {
	err := Migrate(config.DatabaseConfig{Host: "localhost", Port: 5432, Name: "x", SSLMode: "disable"}, "file://does-not-exist", "sideways")
	require.Error(t, err)
}

func TestDSNQuotesValues(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "ops",
		Password: `it's a \secret`,
		Name:     "academy_ops",
		SSLMode:  "disable",
	})
	assert.Contains(t, dsn, `password='it\'s a \\secret'`)
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "dbname='academy_ops'")
}
