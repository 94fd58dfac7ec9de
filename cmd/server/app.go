package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/loyalty-api/internal/config"
	"github.com/phrazzld/loyalty-api/internal/loyalty"
	"github.com/phrazzld/loyalty-api/internal/platform/postgres"
	"github.com/phrazzld/loyalty-api/internal/seed"
	"github.com/phrazzld/loyalty-api/internal/service"
	"github.com/phrazzld/loyalty-api/internal/service/auth"
	"github.com/phrazzld/loyalty-api/internal/store"
)

// application holds the shared dependencies of every command and releases
// them on cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService   auth.JWTService
	ledger       *service.LedgerService
	checkpointer *service.Checkpointer
}

// newApplication wires the ledger and, when a database is configured, opens
// it and restores the latest snapshot.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	var snapshots store.CardSnapshotStore
	if cfg.Persistent() {
		app.db, err = postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established")
		snapshots = postgres.NewPostgresSnapshotStore(app.db, logger)
	} else {
		logger.Warn("no database configured; the ledger will not survive a restart")
	}

	app.ledger, err = service.NewLedgerService(loyalty.NewOperator(), snapshots, logger)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to create ledger service: %w", err)
	}

	if err := app.ledger.Restore(ctx); err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to restore ledger: %w", err)
	}

	interval := time.Duration(cfg.Ledger.CheckpointIntervalSeconds) * time.Second
	app.checkpointer = service.NewCheckpointer(app.ledger, interval, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// requirePersistence fails for commands that only make sense against the database.
func requirePersistence(cfg *config.Config, command string) error {
	if !cfg.Persistent() {
		return fmt.Errorf("%s requires database.url: %w", command, service.ErrLedgerNotPersistent)
	}
	return nil
}

// applySeed replays the seed file at path into the ledger.
func (app *application) applySeed(ctx context.Context, path string) (seed.Result, error) {
	file, err := seed.Load(path)
	if err != nil {
		return seed.Result{}, err
	}

	res, err := file.Apply(ctx, app.ledger)
	if err != nil {
		return res, fmt.Errorf("failed to apply seed file %s: %w", path, err)
	}

	app.logger.Info("seed applied",
		"owners", res.Owners,
		"purchases", res.Purchases)
	return res, nil
}

// seedIfEmpty applies the configured seed file, but only to an empty ledger
// so that restarts do not replay it on top of restored cards.
func (app *application) seedIfEmpty(ctx context.Context) error {
	path := app.config.Ledger.SeedFile
	if path == "" {
		return nil
	}
	if customers := app.ledger.Stats(ctx).Customers; customers > 0 {
		app.logger.Info("ledger already populated, skipping seed file",
			"customers", customers)
		return nil
	}

	_, err := app.applySeed(ctx, path)
	return err
}

// Run serves the HTTP API until ctx is cancelled or the process is signalled.
func (app *application) Run(ctx context.Context) error {
	if err := app.seedIfEmpty(ctx); err != nil {
		// A partly applied seed is not checkpointed.
		app.closeDB()
		return err
	}
	app.checkpointer.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup writes a final checkpoint and closes the database.
func (app *application) cleanup(ctx context.Context) error {
	var errs []error
	if err := app.checkpointer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	app.closeDB()

	app.logger.Info("application shutdown completed")
	return errors.Join(errs...)
}

func (app *application) closeDB() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database connection", "error", err)
	}
	app.db = nil
}
