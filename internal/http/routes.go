// Package http arma el router del servicio: middlewares globales, endpoints
// de negocio y los auxiliares de salud y métricas.
package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quipulabs/centinela/internal/http/handlers"
	"github.com/quipulabs/centinela/internal/http/middlewares"
	"github.com/quipulabs/centinela/internal/jwt"
	"github.com/quipulabs/centinela/internal/service"
)

// Deps agrupa todo lo que el router necesita.
type Deps struct {
	Auth        *service.Auth
	Users       *service.Users
	Roles       *service.Roles
	Permissions *service.Permissions
	Aggregator  *service.Aggregator
	Issuer      *jwt.Issuer

	// Store para readyz; nil deja readyz sin chequeo de storage.
	Store handlers.Pinger
	// Pool para el collector de métricas; nil lo omite.
	Pool *pgxpool.Pool
	// Metrics en false deja el router sin /metrics ni instrumentación.
	Metrics bool
}

// NewRouter construye el chi.Mux completo del servicio.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithLogging())
	if d.Metrics {
		metricsHandler := RegisterMetrics(MetricsConfig{Pool: d.Pool})
		r.Use(WithMetrics())
		r.Handle("/metrics", metricsHandler)
	}

	handlers.NewHealth(d.Store).Register(r)
	handlers.NewAuth(d.Auth).Register(r)
	handlers.NewUsers(d.Users, d.Aggregator, d.Issuer).Register(r)
	handlers.NewRoles(d.Roles, d.Permissions, d.Aggregator).Register(r)
	handlers.NewPermissions(d.Permissions).Register(r)

	return r
}
