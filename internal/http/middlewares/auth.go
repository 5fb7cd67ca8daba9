package middlewares

import (
	"net/http"
	"strings"

	"github.com/quipulabs/centinela/internal/http/respond"
	jwtx "github.com/quipulabs/centinela/internal/jwt"
	"github.com/quipulabs/centinela/internal/rbac"
)

// RequireAuth valida Authorization: Bearer <JWT> y guarda las claims en el
// contexto. Sólo acepta access tokens: un refresh token responde 401 igual
// que un token ausente o inválido.
func RequireAuth(issuer *jwtx.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				respond.Error(w, r, rbac.ErrUnauthenticated)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims, err := issuer.Validate(raw, jwtx.TypeAccess)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				respond.Error(w, r, err)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require evalúa la regla de autorización contra las claims del contexto.
// Debe ir después de RequireAuth. Sin claims responde 401; con claims que no
// cumplen la regla responde 403.
func Require(req rbac.Requirement) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := rbac.Authorize(GetClaims(r.Context()), req); err != nil {
				respond.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
