// Package handlers expone los endpoints del servicio. Cada handler agrupa
// las rutas de un recurso y se monta con Register sobre el router.
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quipulabs/centinela/internal/http/respond"
	"github.com/quipulabs/centinela/internal/service"
)

// Auth maneja login y refresh de tokens.
type Auth struct {
	svc *service.Auth
}

func NewAuth(svc *service.Auth) *Auth {
	return &Auth{svc: svc}
}

func (h *Auth) Register(r chi.Router) {
	r.Post("/users/login", h.Login)
	r.Post("/users/refresh", h.Refresh)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type loginUser struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type loginData struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         loginUser `json:"user"`
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !respond.ReadJSON(w, r, &body) {
		return
	}
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" || body.Password == "" {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "email y password son requeridos")
		return
	}

	pair, snap, err := h.svc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, "Login exitoso.", loginData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         loginUser{ID: snap.UserID, Email: snap.Email, Roles: snap.Roles},
	})
}

func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if !respond.ReadJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.RefreshToken) == "" {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "refresh_token es requerido")
		return
	}

	access, err := h.svc.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, "Token renovado.", map[string]string{
		"access_token": access,
	})
}
