// Package rbac evalúa los requisitos de acceso de una ruta contra las claims
// de un token validado.
//
// El contrato es asimétrico a propósito y debe preservarse exacto:
//   - roles: basta con tener UNO de los requeridos (any-of)
//   - permisos: hay que tener TODOS los requeridos (all-of)
//   - el permiso admin.full_access satisface cualquier requisito de permisos
//
// Ambas compuertas son independientes: si una ruta declara roles y permisos,
// las dos deben pasar.
package rbac

import (
	"errors"

	"github.com/quipulabs/centinela/internal/jwt"
)

// PermFullAccess es el permiso de super-admin que saltea la compuerta de
// permisos (no la de roles).
const PermFullAccess = "admin.full_access"

var (
	// ErrUnauthenticated: token ausente, malformado o vencido (401).
	ErrUnauthenticated = errors.New("rbac: no autenticado")

	// ErrMissingRole: token válido pero sin ninguno de los roles requeridos (403).
	ErrMissingRole = errors.New("rbac: rol insuficiente")

	// ErrMissingPermission: token válido pero sin los permisos requeridos (403).
	ErrMissingPermission = errors.New("rbac: permisos insuficientes")
)

// Requirement declara qué exige una ruta protegida.
type Requirement struct {
	Roles []string // any-of; vacío = sin requisito de rol
	Perms []string // all-of; vacío = sin requisito de permisos
}

// Authorize evalúa claims contra req. claims == nil se trata como no
// autenticado. Retorna nil cuando todas las compuertas declaradas pasan.
func Authorize(claims *jwt.Claims, req Requirement) error {
	if claims == nil {
		return ErrUnauthenticated
	}

	if len(req.Roles) > 0 && !claims.HasRole(req.Roles...) {
		return ErrMissingRole
	}

	if len(req.Perms) > 0 {
		have := claims.PermissionSet()
		if _, super := have[PermFullAccess]; !super {
			for _, p := range req.Perms {
				if _, ok := have[p]; !ok {
					return ErrMissingPermission
				}
			}
		}
	}

	return nil
}
