package service

import (
	"context"

	"github.com/quipulabs/centinela/internal/store/core"
)

// Permissions administra permisos y sus asignaciones a roles.
type Permissions struct {
	repo core.Repository
	agg  *Aggregator
}

func NewPermissions(repo core.Repository, agg *Aggregator) *Permissions {
	return &Permissions{repo: repo, agg: agg}
}

func (s *Permissions) List(ctx context.Context) ([]core.Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// Create registra un permiso nuevo. El nombre es único.
func (s *Permissions) Create(ctx context.Context, name, description string) (*core.Permission, error) {
	if _, err := s.repo.GetPermissionByName(ctx, name); err == nil {
		return nil, ErrPermissionTaken
	} else if !core.IsNotFound(err) {
		return nil, err
	}
	p, err := s.repo.CreatePermission(ctx, name, description)
	if err != nil {
		if core.IsConflict(err) {
			return nil, ErrPermissionTaken
		}
		return nil, err
	}
	s.agg.Invalidate()
	return p, nil
}

// AssignRolePermissions reemplaza el conjunto completo de permisos del rol
// por permissionIDs, dentro de una sola transacción. Valida rol y permisos
// antes de borrar; un fallo deja las asignaciones originales intactas.
func (s *Permissions) AssignRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	err := s.repo.WithTx(ctx, func(tx core.Repository) error {
		if _, err := tx.GetRoleByID(ctx, roleID); err != nil {
			if core.IsNotFound(err) {
				return &core.EntityNotFoundError{Entity: "role", ID: roleID}
			}
			return err
		}
		for _, pid := range permissionIDs {
			if _, err := tx.GetPermissionByID(ctx, pid); err != nil {
				if core.IsNotFound(err) {
					return &core.EntityNotFoundError{Entity: "permission", ID: pid}
				}
				return err
			}
		}
		if err := tx.DeleteRolePermissions(ctx, roleID); err != nil {
			return err
		}
		for _, pid := range dedupe(permissionIDs) {
			if _, err := tx.AddRolePermission(ctx, roleID, pid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.agg.Invalidate()
	return nil
}

// AddRolePermission agrega un permiso a un rol sin tocar los demás.
// Idempotente igual que Roles.AddUserRole.
func (s *Permissions) AddRolePermission(ctx context.Context, roleID, permissionID int64) (*core.RolePermission, error) {
	if rp, err := s.repo.GetRolePermission(ctx, roleID, permissionID); err == nil {
		return rp, nil
	} else if !core.IsNotFound(err) {
		return nil, err
	}
	rp, err := s.repo.AddRolePermission(ctx, roleID, permissionID)
	if err != nil {
		if core.IsConflict(err) {
			return s.repo.GetRolePermission(ctx, roleID, permissionID)
		}
		return nil, err
	}
	s.agg.Invalidate()
	return rp, nil
}
