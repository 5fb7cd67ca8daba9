package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/quipulabs/centinela/internal/store/core"
)

// ---------- user_roles ----------

func (s *Store) GetUserRole(ctx context.Context, userID, roleID int64) (*core.UserRole, error) {
	const q = `SELECT user_id, role_id, created_at FROM user_roles WHERE user_id = $1 AND role_id = $2`
	var ur core.UserRole
	err := s.db.QueryRow(ctx, q, userID, roleID).Scan(&ur.UserID, &ur.RoleID, &ur.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &ur, nil
}

func (s *Store) AddUserRole(ctx context.Context, userID, roleID int64) (*core.UserRole, error) {
	const q = `
INSERT INTO user_roles (user_id, role_id, created_at)
VALUES ($1, $2, $3)
RETURNING user_id, role_id, created_at`
	var ur core.UserRole
	err := s.db.QueryRow(ctx, q, userID, roleID, s.now()).Scan(&ur.UserID, &ur.RoleID, &ur.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrConflict
		}
		return nil, err
	}
	return &ur, nil
}

func (s *Store) DeleteUserRoles(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	return err
}

// ---------- role_permissions ----------

func (s *Store) GetRolePermission(ctx context.Context, roleID, permissionID int64) (*core.RolePermission, error) {
	const q = `SELECT role_id, permission_id, created_at FROM role_permissions WHERE role_id = $1 AND permission_id = $2`
	var rp core.RolePermission
	err := s.db.QueryRow(ctx, q, roleID, permissionID).Scan(&rp.RoleID, &rp.PermissionID, &rp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &rp, nil
}

func (s *Store) AddRolePermission(ctx context.Context, roleID, permissionID int64) (*core.RolePermission, error) {
	const q = `
INSERT INTO role_permissions (role_id, permission_id, created_at)
VALUES ($1, $2, $3)
RETURNING role_id, permission_id, created_at`
	var rp core.RolePermission
	err := s.db.QueryRow(ctx, q, roleID, permissionID, s.now()).Scan(&rp.RoleID, &rp.PermissionID, &rp.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrConflict
		}
		return nil, err
	}
	return &rp, nil
}

func (s *Store) DeleteRolePermissions(ctx context.Context, roleID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID)
	return err
}

// ---------- filas para agregación ----------
// Cada query trae el join completo en una sola pasada; el armado del grafo
// ocurre en memoria (service.Aggregator), nunca una query por fila.

func (s *Store) ListUserRoleRows(ctx context.Context) ([]core.UserRoleRow, error) {
	const q = `
SELECT ur.user_id, r.id, r.name, r.description, r.created_at, r.updated_at
FROM user_roles ur
JOIN roles r ON r.id = ur.role_id
ORDER BY ur.user_id, r.id`
	return s.queryUserRoleRows(ctx, q)
}

func (s *Store) ListUserRoleRowsByUser(ctx context.Context, userID int64) ([]core.UserRoleRow, error) {
	const q = `
SELECT ur.user_id, r.id, r.name, r.description, r.created_at, r.updated_at
FROM user_roles ur
JOIN roles r ON r.id = ur.role_id
WHERE ur.user_id = $1
ORDER BY r.id`
	return s.queryUserRoleRows(ctx, q, userID)
}

func (s *Store) queryUserRoleRows(ctx context.Context, q string, args ...any) ([]core.UserRoleRow, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.UserRoleRow
	for rows.Next() {
		var row core.UserRoleRow
		if err := rows.Scan(&row.UserID, &row.Role.ID, &row.Role.Name, &row.Role.Description,
			&row.Role.CreatedAt, &row.Role.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) ListRolePermissionRows(ctx context.Context) ([]core.RolePermissionRow, error) {
	const q = `
SELECT rp.role_id, p.id, p.name, p.description, p.created_at, p.updated_at
FROM role_permissions rp
JOIN permissions p ON p.id = rp.permission_id
ORDER BY rp.role_id, p.id`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.RolePermissionRow
	for rows.Next() {
		var row core.RolePermissionRow
		if err := rows.Scan(&row.RoleID, &row.Permission.ID, &row.Permission.Name,
			&row.Permission.Description, &row.Permission.CreatedAt, &row.Permission.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
