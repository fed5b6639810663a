package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ballotbox/internal/identity/models"
	"ballotbox/pkg/platform/sentinel"
)

// PostgresUserStore persists users in PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// GetOrCreate relies on the unique identity_code index; concurrent callers
// with the same code converge on one row. xmax is zero only for the row
// version this statement inserted.
func (s *PostgresUserStore) GetOrCreate(ctx context.Context, user *models.User) (*models.User, bool, error) {
	query := `
		INSERT INTO users (id, identity_code, name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identity_code) DO UPDATE SET
			identity_code = EXCLUDED.identity_code
		RETURNING id, identity_code, name, created_at, (xmax = 0) AS inserted
	`
	var out models.User
	var inserted bool
	err := s.db.QueryRowContext(ctx, query, user.ID, user.IdentityCode, user.Name, user.CreatedAt).
		Scan(&out.ID, &out.IdentityCode, &out.Name, &out.CreatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("get or create user: %w", err)
	}
	return &out, inserted, nil
}

func (s *PostgresUserStore) FindByIdentityCode(ctx context.Context, code string) (*models.User, error) {
	query := `SELECT id, identity_code, name, created_at FROM users WHERE identity_code = $1`
	return s.findOne(ctx, query, code)
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, identity_code, name, created_at FROM users WHERE id = $1`
	return s.findOne(ctx, query, id)
}

func (s *PostgresUserStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.IdentityCode, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
