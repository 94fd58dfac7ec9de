package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/loyalty-api/internal/domain"
	"github.com/phrazzld/loyalty-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresSnapshotStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresSnapshotStore(db, nil), mock
}

func mustCard(t *testing.T, name, email string, points, uses int) domain.Card {
	t.Helper()
	card, err := domain.RestoreCard(domain.Owner{Name: name, Email: email}, points, uses)
	require.NoError(t, err)
	return *card
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	checkpointID := uuid.New()
	cards := []domain.Card{
		mustCard(t, "Ann", "ann@example.com", 40, 3),
		mustCard(t, "Bob", "bob@example.com", 2, 1),
	}

	t.Run("writes checkpoint and cards in order", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(insertCheckpointQuery)).
			WithArgs(checkpointID, 2, 42).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(deleteCardsQuery)).
			WillReturnResult(sqlmock.NewResult(0, 5))
		mock.ExpectExec(regexp.QuoteMeta(insertCardQuery)).
			WithArgs("ann@example.com", "Ann", 0, 40, 3, checkpointID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(insertCardQuery)).
			WithArgs("bob@example.com", "Bob", 1, 2, 1, checkpointID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Replace(ctx, checkpointID, cards))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty ledger clears cards", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(insertCheckpointQuery)).
			WithArgs(checkpointID, 0, 0).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(deleteCardsQuery)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		require.NoError(t, s.Replace(ctx, checkpointID, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("balances above int32 are written whole", func(t *testing.T) {
		s, mock := newMockStore(t)
		big := []domain.Card{
			mustCard(t, "Ann", "ann@example.com", 3_000_000_000, 5_000_000_000),
			mustCard(t, "Bob", "bob@example.com", domain.MaxPoints, 1),
		}

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(insertCheckpointQuery)).
			WithArgs(checkpointID, 2, 3_000_000_000+domain.MaxPoints).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(deleteCardsQuery)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(insertCardQuery)).
			WithArgs("ann@example.com", "Ann", 0, 3_000_000_000, 5_000_000_000, checkpointID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(insertCardQuery)).
			WithArgs("bob@example.com", "Bob", 1, domain.MaxPoints, 1, checkpointID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Replace(ctx, checkpointID, big))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(insertCheckpointQuery)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(deleteCardsQuery)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(insertCardQuery)).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "loyalty_cards_pkey"})
		mock.ExpectRollback()

		err := s.Replace(ctx, checkpointID, cards)
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrDuplicate)

		var storeErr *store.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, "card", storeErr.Entity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("returns cards in stored order", func(t *testing.T) {
		s, mock := newMockStore(t)

		rows := sqlmock.NewRows([]string{"email", "name", "points", "uses"}).
			AddRow("bob@example.com", "Bob", 7, 2).
			AddRow("ann@example.com", "Ann", 0, 0)
		mock.ExpectQuery(regexp.QuoteMeta(selectCardsQuery)).WillReturnRows(rows)

		cards, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, "bob@example.com", cards[0].Owner().Email)
		assert.Equal(t, 7, cards[0].Points())
		assert.Equal(t, 2, cards[0].Uses())
		assert.Equal(t, "Ann", cards[1].Owner().Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("balance above int32", func(t *testing.T) {
		s, mock := newMockStore(t)

		rows := sqlmock.NewRows([]string{"email", "name", "points", "uses"}).
			AddRow("ann@example.com", "Ann", int64(3_000_000_000), int64(4))
		mock.ExpectQuery(regexp.QuoteMeta(selectCardsQuery)).WillReturnRows(rows)

		cards, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, 3_000_000_000, cards[0].Points())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("balance above the cap is rejected", func(t *testing.T) {
		s, mock := newMockStore(t)

		rows := sqlmock.NewRows([]string{"email", "name", "points", "uses"}).
			AddRow("ann@example.com", "Ann", int64(domain.MaxPoints+1), int64(1))
		mock.ExpectQuery(regexp.QuoteMeta(selectCardsQuery)).WillReturnRows(rows)

		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("empty table", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectCardsQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"email", "name", "points", "uses"}))

		cards, err := s.Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, cards)
		assert.Empty(t, cards)
	})

	t.Run("negative balance is rejected", func(t *testing.T) {
		s, mock := newMockStore(t)

		rows := sqlmock.NewRows([]string{"email", "name", "points", "uses"}).
			AddRow("ann@example.com", "Ann", -1, 0)
		mock.ExpectQuery(regexp.QuoteMeta(selectCardsQuery)).WillReturnRows(rows)

		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("query failure", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta(selectCardsQuery)).
			WillReturnError(errors.New("relation does not exist"))

		_, err := s.Load(ctx)
		var storeErr *store.StoreError
		assert.True(t, errors.As(err, &storeErr))
	})
}

func TestLatestCheckpoint(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		s, mock := newMockStore(t)
		id := uuid.New()
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta(latestCheckpointQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "card_count", "total_points", "created_at"}).
				AddRow(id.String(), 3, 120, created))

		cp, err := s.LatestCheckpoint(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, cp.ID)
		assert.Equal(t, 3, cp.CardCount)
		assert.Equal(t, 120, cp.TotalPoints)
		assert.Equal(t, created, cp.CreatedAt)
	})

	t.Run("none written", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta(latestCheckpointQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "card_count", "total_points", "created_at"}))

		_, err := s.LatestCheckpoint(ctx)
		assert.ErrorIs(t, err, store.ErrCheckpointNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})
}
