// Package jwt emite y valida los tokens de acceso y refresh del servicio.
//
// Los tokens van firmados con HS256 y llevan una foto denormalizada de
// roles/permisos al momento de emisión. El claim "type" distingue access de
// refresh para que un refresh token no pueda reutilizarse como access token.
package jwt

import (
	"errors"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Errores de validación de tokens.
var (
	ErrInvalidToken = errors.New("jwt: token inválido o expirado")
	ErrWrongType    = errors.New("jwt: tipo de token inesperado")
)

// leeway tolerado al validar exp/nbf, para desfases de reloj menores.
const leeway = 30 * time.Second

// Issuer firma tokens con un secreto compartido y TTLs por tipo.
type Issuer struct {
	Iss        string         // claim "iss"
	Secret     []byte         // clave HMAC-SHA256
	AccessTTL  time.Duration  // TTL de access tokens (ej: 15m)
	RefreshTTL time.Duration  // TTL de refresh tokens (ej: 7 días)
	Location   *time.Location // zona horaria autoritativa para iat/exp
}

// NewIssuer construye un Issuer con TTLs por defecto (15m access, 7d refresh).
func NewIssuer(iss string, secret []byte, loc *time.Location) *Issuer {
	if loc == nil {
		loc = time.UTC
	}
	return &Issuer{
		Iss:        iss,
		Secret:     secret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Location:   loc,
	}
}

func (i *Issuer) now() time.Time {
	return time.Now().In(i.Location)
}

func (i *Issuer) sign(s Snapshot, typ string, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(ttl)

	claims := Claims{
		ID:       s.UserID,
		Email:    s.Email,
		Roles:    s.Roles,
		Permisos: s.Permisos,
		Type:     typ,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   strconv.FormatInt(s.UserID, 10),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	if claims.Roles == nil {
		claims.Roles = []string{}
	}
	if claims.Permisos == nil {
		claims.Permisos = []string{}
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueAccess emite un access token con la foto de roles/permisos dada.
func (i *Issuer) IssueAccess(s Snapshot) (string, time.Time, error) {
	return i.sign(s, TypeAccess, i.AccessTTL)
}

// IssueRefresh emite un refresh token de vida larga con la misma foto.
func (i *Issuer) IssueRefresh(s Snapshot) (string, time.Time, error) {
	return i.sign(s, TypeRefresh, i.RefreshTTL)
}

// Validate verifica firma, expiración y tipo del token.
// La expiración la chequea el parser (con leeway corto), nunca el caller.
// Retorna ErrInvalidToken para tokens malformados, mal firmados o vencidos,
// y ErrWrongType cuando el claim "type" no coincide con expectedType.
func (i *Issuer) Validate(token, expectedType string) (*Claims, error) {
	var claims Claims
	tk, err := jwtv5.ParseWithClaims(token, &claims,
		func(t *jwtv5.Token) (any, error) { return i.Secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(leeway),
	)
	if err != nil || !tk.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != expectedType {
		return nil, ErrWrongType
	}
	return &claims, nil
}
