package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/quipulabs/centinela/internal/store/core"
)

const userCols = `id, email, password, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRow(ctx, q, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(s.db.QueryRow(ctx, q, email))
}

func (s *Store) GetUserByEmailExceptID(ctx context.Context, email string, id int64) (*core.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2`
	return scanUser(s.db.QueryRow(ctx, q, email, id))
}

func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	const q = `SELECT ` + userCols + ` FROM users ORDER BY id`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*core.User, error) {
	const q = `
INSERT INTO users (email, password, is_active, created_at, updated_at)
VALUES ($1, $2, TRUE, $3, $3)
RETURNING ` + userCols
	u, err := scanUser(s.db.QueryRow(ctx, q, email, passwordHash, s.now()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, email string, passwordHash *string) (*core.User, error) {
	// COALESCE: password solo se pisa cuando viene un hash nuevo.
	const q = `
UPDATE users
SET email = $2, password = COALESCE($3, password), updated_at = $4
WHERE id = $1
RETURNING ` + userCols
	u, err := scanUser(s.db.QueryRow(ctx, q, id, email, passwordHash, s.now()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrConflict
		}
		return nil, err
	}
	return u, nil
}
