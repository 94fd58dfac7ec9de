package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// MigrationsDir is where new migration files are created, relative to the
// repository root.
const MigrationsDir = "internal/platform/postgres/migrations"

// MigrationTableName is the table goose uses to track applied versions.
const MigrationTableName = "schema_migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf implements goose.Logger. It logs at error level and leaves
// process termination to the caller.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func configureGoose(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	goose.SetLogger(&slogGooseLogger{logger: logger.With("component", "migrations")})
	goose.SetBaseFS(embeddedMigrations)
	goose.SetTableName(MigrationTableName)
	return goose.SetDialect("postgres")
}

// Migrate runs a goose command (up, down, status, version, ...) against db
// using the migrations compiled into the binary.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger, command string, args ...string) error {
	if err := configureGoose(logger); err != nil {
		return fmt.Errorf("failed to configure migrations: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, "migrations", args...); err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}
	return nil
}

// CreateMigration writes a new, empty SQL migration named name into dir.
func CreateMigration(dir, name string) error {
	goose.SetBaseFS(nil)
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration %q: %w", name, err)
	}
	return nil
}
