package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/loyalty-api/internal/domain"
	"github.com/phrazzld/loyalty-api/internal/store"
)

// memorySnapshotStore is an in-memory store.CardSnapshotStore for tests.
type memorySnapshotStore struct {
	mu          sync.Mutex
	cards       []domain.Card
	checkpoints []store.Checkpoint
	replaceErr  error
	loadErr     error
	replaces    int
}

var _ store.CardSnapshotStore = (*memorySnapshotStore)(nil)

func (m *memorySnapshotStore) Replace(ctx context.Context, id uuid.UUID, cards []domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.replaces++
	if m.replaceErr != nil {
		return m.replaceErr
	}

	total := 0
	for _, c := range cards {
		total += c.Points()
	}
	m.cards = append([]domain.Card(nil), cards...)
	m.checkpoints = append(m.checkpoints, store.Checkpoint{ID: id, CardCount: len(cards), TotalPoints: total})
	return nil
}

func (m *memorySnapshotStore) Load(ctx context.Context) ([]domain.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]domain.Card{}, m.cards...), nil
}

func (m *memorySnapshotStore) LatestCheckpoint(ctx context.Context) (store.Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.checkpoints) == 0 {
		return store.Checkpoint{}, store.ErrCheckpointNotFound
	}
	return m.checkpoints[len(m.checkpoints)-1], nil
}

func (m *memorySnapshotStore) replaceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaces
}

func (m *memorySnapshotStore) setReplaceErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceErr = err
}
