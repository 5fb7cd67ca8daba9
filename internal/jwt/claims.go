package jwt

import (
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Tipos de token emitidos por el Issuer.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Snapshot es la foto de identidad y autorización que viaja dentro del token.
// Se arma al momento de emisión y NO se refresca hasta que el token expira o
// se renueva via refresh: las decisiones de autorización posteriores usan
// esta foto, no un lookup en vivo (ver contrato de staleness en el Issuer).
type Snapshot struct {
	UserID   int64
	Email    string
	Roles    []string
	Permisos []string
}

// Claims son las claims validadas de un token emitido por este servicio.
type Claims struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	Permisos []string `json:"permisos"`
	Type     string   `json:"type"`
	jwtv5.RegisteredClaims
}

// HasRole indica si alguna de las roles dadas está en la foto del token.
func (c *Claims) HasRole(roles ...string) bool {
	if len(roles) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(c.Roles))
	for _, r := range c.Roles {
		set[r] = struct{}{}
	}
	for _, r := range roles {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

// PermissionSet retorna los permisos del token como set.
func (c *Claims) PermissionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Permisos))
	for _, p := range c.Permisos {
		set[p] = struct{}{}
	}
	return set
}
