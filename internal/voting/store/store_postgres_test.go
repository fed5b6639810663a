package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotbox/internal/voting/models"
	"ballotbox/pkg/platform/sentinel"
)

func newMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresInsert(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := &models.Vote{UserID: "u-1", CandidateID: 1, CreatedAt: at}

	t.Run("accepted", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(`INSERT INTO votes .* FROM candidates c\s+WHERE c.id = \$2 AND c.deleted_at IS NULL\s+FOR SHARE`).
			WithArgs("u-1", int64(1), at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Insert(context.Background(), v))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(`INSERT INTO votes`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "votes_user_id_key"})

		assert.ErrorIs(t, store.Insert(context.Background(), v), sentinel.ErrConflict)
	})

	t.Run("no live candidate selected is not found", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(`INSERT INTO votes`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, store.Insert(context.Background(), v), sentinel.ErrNotFound)
	})

	t.Run("other failures are wrapped", func(t *testing.T) {
		store, mock := newMock(t)
		boom := errors.New("connection reset")
		mock.ExpectExec(`INSERT INTO votes`).WillReturnError(boom)

		err := store.Insert(context.Background(), v)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, sentinel.ErrConflict)
	})
}

func TestPostgresTally(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(`SELECT candidate_id, COUNT\(\*\)\s+FROM votes\s+GROUP BY candidate_id\s+ORDER BY candidate_id`).
		WillReturnRows(sqlmock.NewRows([]string{"candidate_id", "count"}).AddRow(1, 2).AddRow(2, 1))

	tally, err := store.Tally(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.TallyEntry{{CandidateID: 1, Votes: 2}, {CandidateID: 2, Votes: 1}}, tally)
}

func TestPostgresHasVoted(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	voted, err := store.HasVoted(context.Background(), "u-1")
	require.NoError(t, err)
	assert.True(t, voted)
}
