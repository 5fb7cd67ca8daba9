package service

import (
	"errors"

	"github.com/quipulabs/centinela/internal/store/core"
)

// domainError lleva el mensaje que el cliente verá y envuelve el sentinel
// de core para que la capa HTTP decida el status por errors.Is.
type domainError struct {
	msg  string
	kind error
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.kind }

var (
	// ErrInvalidCredentials cubre email desconocido, password incorrecta
	// y cuenta desactivada, sin distinguirlos hacia afuera.
	ErrInvalidCredentials = errors.New("Credenciales inválidas.")

	// ErrInvalidRefresh: el refresh token no es válido, expiró o no es de tipo refresh.
	ErrInvalidRefresh = errors.New("Refresh token inválido o expirado.")

	ErrEmailTaken      = &domainError{"El email ya está registrado", core.ErrConflict}
	ErrRoleTaken       = &domainError{"El rol ya existe", core.ErrConflict}
	ErrPermissionTaken = &domainError{"El permiso ya existe", core.ErrConflict}
)
