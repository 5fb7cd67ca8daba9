package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/quipulabs/centinela/internal/store/core"
)

const roleCols = `id, name, description, created_at, updated_at`

func scanRole(row pgx.Row) (*core.Role, error) {
	var r core.Role
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) GetRoleByID(ctx context.Context, id int64) (*core.Role, error) {
	const q = `SELECT ` + roleCols + ` FROM roles WHERE id = $1`
	return scanRole(s.db.QueryRow(ctx, q, id))
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*core.Role, error) {
	const q = `SELECT ` + roleCols + ` FROM roles WHERE name = $1`
	return scanRole(s.db.QueryRow(ctx, q, name))
}

func (s *Store) ListRoles(ctx context.Context) ([]core.Role, error) {
	const q = `SELECT ` + roleCols + ` FROM roles ORDER BY id`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Role
	for rows.Next() {
		var r core.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateRole(ctx context.Context, name, description string) (*core.Role, error) {
	const q = `
INSERT INTO roles (name, description, created_at, updated_at)
VALUES ($1, $2, $3, $3)
RETURNING ` + roleCols
	r, err := scanRole(s.db.QueryRow(ctx, q, name, description, s.now()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrConflict
		}
		return nil, err
	}
	return r, nil
}
