// Package service contiene la lógica de dominio: usuarios, roles, permisos,
// asignaciones y la emisión de tokens. Los handlers HTTP son adaptadores finos
// sobre estos tipos.
package service

import (
	"context"

	"github.com/quipulabs/centinela/internal/security/password"
	"github.com/quipulabs/centinela/internal/store/core"
)

// Users administra el ciclo de vida de los usuarios.
type Users struct {
	repo core.Repository
	agg  *Aggregator

	// HashCost permite bajar el costo de bcrypt en tests. Cero usa el default.
	HashCost int
}

func NewUsers(repo core.Repository, agg *Aggregator) *Users {
	return &Users{repo: repo, agg: agg}
}

func (s *Users) hash(plain string) (string, error) {
	if s.HashCost > 0 {
		return password.HashWithCost(plain, s.HashCost)
	}
	return password.Hash(plain)
}

// Create registra un usuario nuevo. Devuelve ErrEmailTaken si el email ya
// pertenece a otro usuario.
func (s *Users) Create(ctx context.Context, email, plain string) (*core.User, error) {
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !core.IsNotFound(err) {
		return nil, err
	}
	hashed, err := s.hash(plain)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.CreateUser(ctx, email, hashed)
	if err != nil {
		// Índice único como respaldo ante una carrera entre el check y el insert.
		if core.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.agg.Invalidate()
	return u, nil
}

// Update cambia email y, si plain no es nil, también la password.
// Devuelve un error not-found con el id si el usuario no existe y
// ErrEmailTaken si el email nuevo ya pertenece a otro usuario.
func (s *Users) Update(ctx context.Context, id int64, email string, plain *string) (*core.User, error) {
	if _, err := s.repo.GetUserByID(ctx, id); err != nil {
		if core.IsNotFound(err) {
			return nil, &core.EntityNotFoundError{Entity: "user", ID: id}
		}
		return nil, err
	}
	if _, err := s.repo.GetUserByEmailExceptID(ctx, email, id); err == nil {
		return nil, ErrEmailTaken
	} else if !core.IsNotFound(err) {
		return nil, err
	}
	var hashed *string
	if plain != nil {
		h, err := s.hash(*plain)
		if err != nil {
			return nil, err
		}
		hashed = &h
	}
	u, err := s.repo.UpdateUser(ctx, id, email, hashed)
	if err != nil {
		if core.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		if core.IsNotFound(err) {
			return nil, &core.EntityNotFoundError{Entity: "user", ID: id}
		}
		return nil, err
	}
	s.agg.Invalidate()
	return u, nil
}
