package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ballotbox/internal/candidates/models"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/platform/tx"
)

// PostgresStore persists candidates in PostgreSQL. Removal is a soft delete
// so votes keep their foreign key; every mutation bumps registry_revision in
// the same transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const candidateColumns = `id, name, party, description, image`

func (s *PostgresStore) Create(ctx context.Context, fields models.Fields) (*models.Candidate, error) {
	var c models.Candidate
	c.Apply(fields)
	err := tx.Run(ctx, s.db, nil, func(ctx context.Context) error {
		query := `
			INSERT INTO candidates (name, party, description, image)
			VALUES ($1, $2, $3, $4)
			RETURNING ` + candidateColumns
		row := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, c.Name, c.Party, c.Description, c.Image)
		if err := scanCandidate(row, &c); err != nil {
			return fmt.Errorf("insert candidate: %w", err)
		}
		return bumpRevision(ctx, s.db)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1 AND deleted_at IS NULL`
	var c models.Candidate
	if err := scanCandidate(tx.Executor(ctx, s.db).QueryRowContext(ctx, query, id), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, fields models.Fields) (*models.Candidate, error) {
	var c models.Candidate
	err := tx.Run(ctx, s.db, nil, func(ctx context.Context) error {
		query := `
			UPDATE candidates SET
				name = COALESCE($2, name),
				party = COALESCE($3, party),
				description = COALESCE($4, description),
				image = COALESCE($5, image)
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING ` + candidateColumns
		row := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, id,
			nullable(fields.Name), nullable(fields.Party), nullable(fields.Description), nullable(fields.Image))
		if err := scanCandidate(row, &c); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("update candidate: %w", err)
		}
		return bumpRevision(ctx, s.db)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Remove locks the live row, lets guard inspect it inside the transaction and
// then soft-deletes it. Vote inserts take a share lock on the same row, so
// they either land before the lock or observe the deletion.
func (s *PostgresStore) Remove(ctx context.Context, id int64, guard func(ctx context.Context, c *models.Candidate) error) (*models.Candidate, error) {
	var c models.Candidate
	err := tx.Run(ctx, s.db, nil, func(ctx context.Context) error {
		exec := tx.Executor(ctx, s.db)
		query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
		if err := scanCandidate(exec.QueryRowContext(ctx, query, id), &c); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock candidate: %w", err)
		}
		if guard != nil {
			if err := guard(ctx, &c); err != nil {
				return err
			}
		}
		if _, err := exec.ExecContext(ctx, `UPDATE candidates SET deleted_at = now() WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete candidate: %w", err)
		}
		return bumpRevision(ctx, s.db)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Snapshot reads the revision and the live roster in one statement so the
// two always agree.
func (s *PostgresStore) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	query := `
		SELECT r.revision, c.id, c.name, c.party, c.description, c.image
		FROM registry_revision r
		LEFT JOIN candidates c ON c.deleted_at IS NULL
		WHERE r.id = 1
		ORDER BY c.id`
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	snap := &models.Snapshot{Candidates: []models.Candidate{}}
	for rows.Next() {
		var id sql.NullInt64
		var name, party, description, image sql.NullString
		if err := rows.Scan(&snap.Revision, &id, &name, &party, &description, &image); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if !id.Valid {
			continue
		}
		snap.Candidates = append(snap.Candidates, models.Candidate{
			ID:          id.Int64,
			Name:        name.String,
			Party:       party.String,
			Description: description.String,
			Image:       image.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return snap, nil
}

func bumpRevision(ctx context.Context, db *sql.DB) error {
	_, err := tx.Executor(ctx, db).ExecContext(ctx, `UPDATE registry_revision SET revision = revision + 1 WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("bump registry revision: %w", err)
	}
	return nil
}

func scanCandidate(row *sql.Row, c *models.Candidate) error {
	return row.Scan(&c.ID, &c.Name, &c.Party, &c.Description, &c.Image)
}

func nullable(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
