package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/quipulabs/centinela/internal/store/core"
)

const permCols = `id, name, description, created_at, updated_at`

func scanPermission(row pgx.Row) (*core.Permission, error) {
	var p core.Permission
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetPermissionByID(ctx context.Context, id int64) (*core.Permission, error) {
	const q = `SELECT ` + permCols + ` FROM permissions WHERE id = $1`
	return scanPermission(s.db.QueryRow(ctx, q, id))
}

func (s *Store) GetPermissionByName(ctx context.Context, name string) (*core.Permission, error) {
	const q = `SELECT ` + permCols + ` FROM permissions WHERE name = $1`
	return scanPermission(s.db.QueryRow(ctx, q, name))
}

func (s *Store) ListPermissions(ctx context.Context) ([]core.Permission, error) {
	const q = `SELECT ` + permCols + ` FROM permissions ORDER BY id`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Permission
	for rows.Next() {
		var p core.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreatePermission(ctx context.Context, name, description string) (*core.Permission, error) {
	const q = `
INSERT INTO permissions (name, description, created_at, updated_at)
VALUES ($1, $2, $3, $3)
RETURNING ` + permCols
	p, err := scanPermission(s.db.QueryRow(ctx, q, name, description, s.now()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrConflict
		}
		return nil, err
	}
	return p, nil
}
