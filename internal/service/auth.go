package service

import (
	"context"
	"errors"

	"github.com/quipulabs/centinela/internal/jwt"
	"github.com/quipulabs/centinela/internal/security/password"
	"github.com/quipulabs/centinela/internal/store/core"
)

// TokenPair es el resultado de un login exitoso.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Auth orquesta login y refresh: credenciales contra el storage, snapshot de
// identidad vía el agregador y firma de tokens vía el emisor.
type Auth struct {
	repo   core.Repository
	agg    *Aggregator
	issuer *jwt.Issuer
}

func NewAuth(repo core.Repository, agg *Aggregator, issuer *jwt.Issuer) *Auth {
	return &Auth{repo: repo, agg: agg, issuer: issuer}
}

// Login valida las credenciales y emite un par access/refresh. Email
// desconocido, password incorrecta y cuenta desactivada devuelven el mismo
// ErrInvalidCredentials para no filtrar cuál de los tres falló.
func (s *Auth) Login(ctx context.Context, email, plain string) (*TokenPair, *jwt.Snapshot, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !u.IsActive || !password.Verify(plain, u.Password) {
		return nil, nil, ErrInvalidCredentials
	}
	snap, err := s.agg.Snapshot(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	access, _, err := s.issuer.IssueAccess(snap)
	if err != nil {
		return nil, nil, err
	}
	refresh, _, err := s.issuer.IssueRefresh(snap)
	if err != nil {
		return nil, nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, &snap, nil
}

// Refresh valida un refresh token y emite un access token nuevo. Los roles y
// permisos del token nuevo se releen del storage, no del token viejo: un
// cambio de asignaciones se refleja en el próximo refresh.
func (s *Auth) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.issuer.Validate(refreshToken, jwt.TypeRefresh)
	if err != nil {
		return "", ErrInvalidRefresh
	}
	snap, err := s.agg.Snapshot(ctx, claims.ID)
	if err != nil {
		// El usuario pudo haber sido borrado después de emitido el token.
		if errors.Is(err, core.ErrNotFound) {
			return "", ErrInvalidRefresh
		}
		return "", err
	}
	access, _, err := s.issuer.IssueAccess(snap)
	return access, err
}
