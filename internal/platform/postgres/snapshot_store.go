package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/loyalty-api/internal/domain"
	"github.com/phrazzld/loyalty-api/internal/platform/logger"
	"github.com/phrazzld/loyalty-api/internal/store"
)

const (
	insertCheckpointQuery = `INSERT INTO loyalty_checkpoints (id, card_count, total_points) VALUES ($1, $2, $3)`
	deleteCardsQuery      = `DELETE FROM loyalty_cards`
	insertCardQuery       = `INSERT INTO loyalty_cards (email, name, position, points, uses, checkpoint_id) VALUES ($1, $2, $3, $4, $5, $6)`
	selectCardsQuery      = `SELECT email, name, points, uses FROM loyalty_cards ORDER BY position`
	latestCheckpointQuery = `SELECT id, card_count, total_points, created_at FROM loyalty_checkpoints ORDER BY created_at DESC LIMIT 1`
)

// PostgresSnapshotStore implements store.CardSnapshotStore on PostgreSQL.
type PostgresSnapshotStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.CardSnapshotStore = (*PostgresSnapshotStore)(nil)

// NewPostgresSnapshotStore creates a snapshot store on an open connection
// pool managed by the caller. A nil logger falls back to slog.Default().
func NewPostgresSnapshotStore(db *sql.DB, logger *slog.Logger) *PostgresSnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSnapshotStore{
		db:     db,
		logger: logger.With(slog.String("component", "snapshot_store")),
	}
}

// Replace implements store.CardSnapshotStore.Replace. The checkpoint row and
// the full card set are written in one transaction.
func (s *PostgresSnapshotStore) Replace(ctx context.Context, checkpointID uuid.UUID, cards []domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	total := 0
	for _, card := range cards {
		total = domain.SumPoints(total, card.Points())
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return writeSnapshot(ctx, tx, checkpointID, cards, total)
	})
	if err != nil {
		log.Error("failed to write checkpoint",
			slog.String("checkpoint_id", checkpointID.String()),
			slog.String("error", err.Error()))
		return err
	}

	log.Debug("checkpoint written",
		slog.String("checkpoint_id", checkpointID.String()),
		slog.Int("card_count", len(cards)),
		slog.Int("total_points", total))
	return nil
}

// writeSnapshot records the checkpoint and replaces every card row. q must be
// a transaction for the replacement to be atomic.
func writeSnapshot(ctx context.Context, q store.DBTX, checkpointID uuid.UUID, cards []domain.Card, total int) error {
	result, err := q.ExecContext(ctx, insertCheckpointQuery, checkpointID, len(cards), total)
	if err != nil {
		return store.NewStoreError("checkpoint", "replace", "failed to record checkpoint", MapError(err))
	}
	if err := CheckRowsAffected(result, "checkpoint"); err != nil {
		return store.NewStoreError("checkpoint", "replace", "checkpoint was not recorded", err)
	}

	if _, err := q.ExecContext(ctx, deleteCardsQuery); err != nil {
		return store.NewStoreError("card", "replace", "failed to clear cards", MapError(err))
	}

	for i, card := range cards {
		owner := card.Owner()
		if _, err := q.ExecContext(ctx, insertCardQuery,
			owner.Email, owner.Name, i, card.Points(), card.Uses(), checkpointID,
		); err != nil {
			return store.NewStoreError(
				"card",
				"replace",
				fmt.Sprintf("failed to insert card at position %d", i),
				MapError(err),
			)
		}
	}
	return nil
}

// Load implements store.CardSnapshotStore.Load.
func (s *PostgresSnapshotStore) Load(ctx context.Context) ([]domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, selectCardsQuery)
	if err != nil {
		log.Error("failed to query cards", slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", "load", "failed to query cards", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := make([]domain.Card, 0)
	for rows.Next() {
		var (
			email, name  string
			points, uses int
		)
		if err := rows.Scan(&email, &name, &points, &uses); err != nil {
			return nil, store.NewStoreError("card", "load", "failed to scan card", err)
		}

		card, err := domain.RestoreCard(domain.Owner{Name: name, Email: email}, points, uses)
		if err != nil {
			return nil, store.NewStoreError(
				"card",
				"load",
				"stored card is invalid",
				fmt.Errorf("%w: %v", store.ErrInvalidEntity, err),
			)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "load", "failed to iterate cards", MapError(err))
	}

	log.Debug("cards loaded", slog.Int("card_count", len(cards)))
	return cards, nil
}

// LatestCheckpoint implements store.CardSnapshotStore.LatestCheckpoint.
func (s *PostgresSnapshotStore) LatestCheckpoint(ctx context.Context) (store.Checkpoint, error) {
	var cp store.Checkpoint
	err := s.db.QueryRowContext(ctx, latestCheckpointQuery).
		Scan(&cp.ID, &cp.CardCount, &cp.TotalPoints, &cp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Checkpoint{}, store.ErrCheckpointNotFound
	}
	if err != nil {
		return store.Checkpoint{}, store.NewStoreError(
			"checkpoint",
			"load",
			"failed to query latest checkpoint",
			MapError(err),
		)
	}
	return cp, nil
}
