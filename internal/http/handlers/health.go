package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quipulabs/centinela/internal/http/respond"
)

// Pinger verifica que una dependencia siga viva.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health expone healthz (proceso vivo) y readyz (storage alcanzable).
type Health struct {
	store Pinger
}

func NewHealth(store Pinger) *Health {
	return &Health{store: store}
}

func (h *Health) Register(r chi.Router) {
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
}

func (h *Health) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Health) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			respond.Fail(w, http.StatusServiceUnavailable, respond.IconError, "storage no disponible")
			return
		}
	}
	respond.Success(w, http.StatusOK, "ok", nil)
}
