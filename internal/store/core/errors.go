package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica una violación de unicidad (ej: email o nombre duplicado).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")
)

// EntityNotFoundError es un ErrNotFound que nombra la entidad y el id ausente.
// Se usa en las asignaciones para reportar exactamente qué id no existe.
type EntityNotFoundError struct {
	Entity string // "user", "role", "permission"
	ID     int64
}

func (e *EntityNotFoundError) Error() string {
	switch e.Entity {
	case "user":
		return fmt.Sprintf("El user con id %d no existe", e.ID)
	case "role":
		return fmt.Sprintf("El rol con id %d no existe", e.ID)
	case "permission":
		return fmt.Sprintf("La permission con id %d no existe", e.ID)
	default:
		return fmt.Sprintf("El recurso con id %d no existe", e.ID)
	}
}

func (e *EntityNotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
