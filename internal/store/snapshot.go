package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/loyalty-api/internal/domain"
)

// Checkpoint describes one persisted snapshot of the ledger.
type Checkpoint struct {
	ID          uuid.UUID
	CardCount   int
	TotalPoints int
	CreatedAt   time.Time
}

// CardSnapshotStore persists whole-ledger snapshots.
//
// Replace and Load always work on the complete card set so that a restored
// ledger never mixes cards from two different checkpoints.
type CardSnapshotStore interface {
	// Replace atomically swaps the stored cards for the given ones and
	// records a checkpoint with the given ID. Card order is preserved.
	Replace(ctx context.Context, checkpointID uuid.UUID, cards []domain.Card) error

	// Load returns the stored cards in the order they were written.
	// An empty store yields an empty slice and no error.
	Load(ctx context.Context) ([]domain.Card, error)

	// LatestCheckpoint returns the most recent checkpoint.
	// Returns ErrCheckpointNotFound if none has been written.
	LatestCheckpoint(ctx context.Context) (Checkpoint, error)
}
