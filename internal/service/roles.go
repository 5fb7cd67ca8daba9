package service

import (
	"context"

	"github.com/quipulabs/centinela/internal/store/core"
)

// Roles administra roles y sus asignaciones a usuarios.
type Roles struct {
	repo core.Repository
	agg  *Aggregator
}

func NewRoles(repo core.Repository, agg *Aggregator) *Roles {
	return &Roles{repo: repo, agg: agg}
}

// Create registra un rol nuevo. El nombre es único.
func (s *Roles) Create(ctx context.Context, name, description string) (*core.Role, error) {
	if _, err := s.repo.GetRoleByName(ctx, name); err == nil {
		return nil, ErrRoleTaken
	} else if !core.IsNotFound(err) {
		return nil, err
	}
	r, err := s.repo.CreateRole(ctx, name, description)
	if err != nil {
		if core.IsConflict(err) {
			return nil, ErrRoleTaken
		}
		return nil, err
	}
	s.agg.Invalidate()
	return r, nil
}

// AssignUserRoles reemplaza el conjunto completo de roles del usuario por
// roleIDs, dentro de una sola transacción: primero valida que el usuario y
// cada rol existan, luego borra las asignaciones previas y reinserta.
// Un fallo en cualquier punto deja las asignaciones originales intactas.
func (s *Roles) AssignUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	err := s.repo.WithTx(ctx, func(tx core.Repository) error {
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			if core.IsNotFound(err) {
				return &core.EntityNotFoundError{Entity: "user", ID: userID}
			}
			return err
		}
		for _, rid := range roleIDs {
			if _, err := tx.GetRoleByID(ctx, rid); err != nil {
				if core.IsNotFound(err) {
					return &core.EntityNotFoundError{Entity: "role", ID: rid}
				}
				return err
			}
		}
		if err := tx.DeleteUserRoles(ctx, userID); err != nil {
			return err
		}
		for _, rid := range dedupe(roleIDs) {
			if _, err := tx.AddUserRole(ctx, userID, rid); err != nil {
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

// AddUserRole agrega un rol a un usuario sin tocar los demás. Es idempotente:
// si el par ya existe devuelve la fila existente sin error.
func (s *Roles) AddUserRole(ctx context.Context, userID, roleID int64) (*core.UserRole, error) {
	if ur, err := s.repo.GetUserRole(ctx, userID, roleID); err == nil {
		return ur, nil
	} else if !core.IsNotFound(err) {
		return nil, err
	}
	ur, err := s.repo.AddUserRole(ctx, userID, roleID)
	if err != nil {
		if core.IsConflict(err) {
			// Carrera con otra inserción: el par ya está, lo releemos.
			return s.repo.GetUserRole(ctx, userID, roleID)
		}
		return nil, err
	}
	s.agg.Invalidate()
	return ur, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
