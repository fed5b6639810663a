package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ballotbox/internal/voting/models"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists votes. votes.user_id is UNIQUE, and inserts only
// select live candidates, so both rules hold in a single statement.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert takes a share lock on the candidate row; a concurrent removal either
// commits first (no row selected) or waits for this vote.
func (s *PostgresStore) Insert(ctx context.Context, vote *models.Vote) error {
	query := `
		INSERT INTO votes (user_id, candidate_id, created_at)
		SELECT $1, c.id, $3
		FROM candidates c
		WHERE c.id = $2 AND c.deleted_at IS NULL
		FOR SHARE`
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, query, vote.UserID, vote.CandidateID, vote.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) HasVoted(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := tx.Executor(ctx, s.db).
		QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM votes WHERE user_id = $1)`, userID).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Tally(ctx context.Context) ([]models.TallyEntry, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT candidate_id, COUNT(*)
		FROM votes
		GROUP BY candidate_id
		ORDER BY candidate_id`)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	defer rows.Close()

	out := []models.TallyEntry{}
	for rows.Next() {
		var e models.TallyEntry
		if err := rows.Scan(&e.CandidateID, &e.Votes); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tally: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountForCandidate(ctx context.Context, candidateID int64) (int, error) {
	var n int
	err := tx.Executor(ctx, s.db).
		QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE candidate_id = $1`, candidateID).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}
