package middlewares

import (
	"context"

	"github.com/quipulabs/centinela/internal/jwt"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyClaims
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

// GetRequestID devuelve el request id del contexto, o "".
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKeyRequestID).(string)
	return rid
}

// WithClaims guarda las claims validadas del token en el contexto.
func WithClaims(ctx context.Context, c *jwt.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

// GetClaims devuelve las claims del contexto, o nil si no hay usuario
// autenticado.
func GetClaims(ctx context.Context) *jwt.Claims {
	c, _ := ctx.Value(ctxKeyClaims).(*jwt.Claims)
	return c
}
