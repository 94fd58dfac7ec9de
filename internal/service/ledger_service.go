package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/loyalty-api/internal/domain"
	"github.com/phrazzld/loyalty-api/internal/loyalty"
	"github.com/phrazzld/loyalty-api/internal/platform/logger"
	"github.com/phrazzld/loyalty-api/internal/redact"
	"github.com/phrazzld/loyalty-api/internal/store"
)

// Stats summarizes the whole ledger.
type Stats struct {
	Customers   int
	TotalPoints int
	// MostUsed is nil when no card has been used yet.
	MostUsed *domain.Owner
}

// LedgerService exposes the card operator to the delivery layers.
type LedgerService struct {
	operator  *loyalty.Operator
	snapshots store.CardSnapshotStore
	logger    *slog.Logger

	// mu serializes mutations against checkpoint snapshots so that dirty
	// is never cleared for a change the snapshot did not include.
	mu    sync.Mutex
	dirty bool
}

// NewLedgerService creates a LedgerService around operator. snapshots may be
// nil, in which case the ledger lives only in memory.
func NewLedgerService(
	operator *loyalty.Operator,
	snapshots store.CardSnapshotStore,
	logger *slog.Logger,
) (*LedgerService, error) {
	if operator == nil {
		return nil, domain.NewValidationError("operator", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LedgerService{
		operator:  operator,
		snapshots: snapshots,
		logger:    logger.With(slog.String("component", "ledger_service")),
	}, nil
}

// Persistent reports whether the ledger has a snapshot store.
func (s *LedgerService) Persistent() bool {
	return s.snapshots != nil
}

// Restore replaces the ledger with the latest stored snapshot.
// Without a snapshot store it does nothing.
func (s *LedgerService) Restore(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards, err := s.snapshots.Load(ctx)
	if err != nil {
		return NewLedgerServiceError("restore", "failed to load snapshot", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.operator.Restore(cards); err != nil {
		return NewLedgerServiceError("restore", "snapshot is inconsistent", err)
	}
	s.dirty = false

	log.Info("ledger restored", slog.Int("card_count", len(cards)))
	return nil
}

// RegisterOwner validates the owner details and issues a new card.
func (s *LedgerService) RegisterOwner(ctx context.Context, name, email string) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	owner, err := domain.NewOwner(name, email)
	if err != nil {
		return domain.Card{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.operator.RegisterOwner(owner); err != nil {
		log.Debug("registration rejected",
			slog.String("email", redact.Email(owner.Email)),
			slog.String("error", redact.Error(err)))
		return domain.Card{}, err
	}
	s.dirty = true

	log.Info("owner registered", slog.String("email", redact.Email(owner.Email)))
	return s.operator.Card(owner.Email)
}

// UnregisterOwner removes the owner's card.
func (s *LedgerService) UnregisterOwner(ctx context.Context, email string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.operator.UnregisterOwner(domain.Owner{Email: email}); err != nil {
		return err
	}
	s.dirty = true

	log.Info("owner unregistered", slog.String("email", redact.Email(email)))
	return nil
}

// ProcessMoneyPurchase credits the owner's card and returns its new state.
// Purchases that earn nothing leave the ledger clean.
func (s *LedgerService) ProcessMoneyPurchase(ctx context.Context, email string, pence int) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.operator.Card(email)
	if err != nil {
		return domain.Card{}, err
	}
	if err := s.operator.ProcessMoneyPurchase(email, pence); err != nil {
		return domain.Card{}, err
	}

	card, err := s.operator.Card(email)
	if err != nil {
		return domain.Card{}, err
	}
	if card.Uses() != before.Uses() {
		s.dirty = true
	}
	log.Debug("money purchase processed",
		slog.String("email", redact.Email(email)),
		slog.Int("pence", pence),
		slog.Int("points", card.Points()))
	return card, nil
}

// ProcessPointsPurchase debits the owner's card and returns its new state.
// domain.ErrInsufficientPoints failures leave the card unchanged.
func (s *LedgerService) ProcessPointsPurchase(ctx context.Context, email string, points int) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.operator.ProcessPointsPurchase(email, points); err != nil {
		log.Debug("points purchase rejected",
			slog.String("email", redact.Email(email)),
			slog.Int("points", points),
			slog.String("error", redact.Error(err)))
		return domain.Card{}, err
	}
	s.dirty = true

	card, err := s.operator.Card(email)
	if err != nil {
		return domain.Card{}, err
	}
	log.Debug("points purchase processed",
		slog.String("email", redact.Email(email)),
		slog.Int("points", points),
		slog.Int("balance", card.Points()))
	return card, nil
}

// Card returns the owner's card.
func (s *LedgerService) Card(ctx context.Context, email string) (domain.Card, error) {
	return s.operator.Card(email)
}

// Stats returns aggregate figures for the ledger, all taken from the same
// registry state.
func (s *LedgerService) Stats(ctx context.Context) Stats {
	summary := s.operator.Summary()
	stats := Stats{
		Customers:   summary.Customers,
		TotalPoints: summary.TotalPoints,
	}
	if summary.HasMostUsed {
		stats.MostUsed = &summary.MostUsed
	}
	return stats
}

// LastCheckpoint returns the most recently written checkpoint. It fails with
// store.ErrCheckpointNotFound when none has been written, and with
// ErrLedgerNotPersistent when the ledger has no snapshot store.
func (s *LedgerService) LastCheckpoint(ctx context.Context) (store.Checkpoint, error) {
	if s.snapshots == nil {
		return store.Checkpoint{}, NewLedgerServiceError("checkpoint", "no snapshot store", ErrLedgerNotPersistent)
	}

	cp, err := s.snapshots.LatestCheckpoint(ctx)
	if err != nil {
		return store.Checkpoint{}, NewLedgerServiceError("checkpoint", "failed to read latest checkpoint", err)
	}
	return cp, nil
}

// Dirty reports whether the ledger changed since the last checkpoint or restore.
func (s *LedgerService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Checkpoint writes a snapshot when the ledger is dirty. It reports whether a
// snapshot was written. A failed write leaves the ledger dirty.
func (s *LedgerService) Checkpoint(ctx context.Context) (bool, error) {
	if s.snapshots == nil {
		return false, nil
	}

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return false, nil
	}
	cards := s.operator.Snapshot()
	s.dirty = false
	s.mu.Unlock()

	if err := s.write(ctx, cards); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return false, err
	}
	return true, nil
}

// ForceCheckpoint writes a snapshot whether or not the ledger is dirty.
func (s *LedgerService) ForceCheckpoint(ctx context.Context) error {
	if s.snapshots == nil {
		return NewLedgerServiceError("checkpoint", "cannot write snapshot", ErrLedgerNotPersistent)
	}

	s.mu.Lock()
	cards := s.operator.Snapshot()
	wasDirty := s.dirty
	s.dirty = false
	s.mu.Unlock()

	if err := s.write(ctx, cards); err != nil {
		if wasDirty {
			s.mu.Lock()
			s.dirty = true
			s.mu.Unlock()
		}
		return err
	}
	return nil
}

func (s *LedgerService) write(ctx context.Context, cards []domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	id := uuid.New()

	if err := s.snapshots.Replace(ctx, id, cards); err != nil {
		log.Error("checkpoint failed",
			slog.String("checkpoint_id", id.String()),
			slog.String("error", redact.Error(err)))
		return NewLedgerServiceError("checkpoint", "failed to write snapshot", err)
	}

	log.Info("checkpoint written",
		slog.String("checkpoint_id", id.String()),
		slog.Int("card_count", len(cards)))
	return nil
}
