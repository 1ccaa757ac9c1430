// Package postgres stores customer profiles, the two audit ledgers and the
// event outbox in PostgreSQL.
package postgres

import (
	"embed"

	pgutil "github.com/bibbank/creditrisk/pkg/postgres"
)

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"

// Migrate applies all pending schema migrations.
func Migrate(dsn string) error {
	return pgutil.RunMigrations(dsn, Migrations, MigrationsDir)
}

// MigrateDown rolls the schema back completely.
func MigrateDown(dsn string) error {
	return pgutil.RunMigrationsDown(dsn, Migrations, MigrationsDir)
}
