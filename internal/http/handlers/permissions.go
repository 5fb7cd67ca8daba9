package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quipulabs/centinela/internal/http/respond"
	"github.com/quipulabs/centinela/internal/service"
)

// Permissions maneja el catálogo de permisos.
type Permissions struct {
	svc *service.Permissions
}

func NewPermissions(svc *service.Permissions) *Permissions {
	return &Permissions{svc: svc}
}

func (h *Permissions) Register(r chi.Router) {
	r.Get("/permissions", h.All)
	r.Post("/permissions", h.Create)
}

type createPermissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type permissionData struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Permissions) All(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	permissions := make([]permissionData, 0, len(all))
	for _, p := range all {
		permissions = append(permissions, permissionData{ID: p.ID, Name: p.Name, Description: p.Description})
	}

	respond.Success(w, http.StatusOK, "Permisos obtenidos correctamente", permissions)
}

func (h *Permissions) Create(w http.ResponseWriter, r *http.Request) {
	var body createPermissionRequest
	if !respond.ReadJSON(w, r, &body) {
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "name es requerido")
		return
	}

	p, err := h.svc.Create(r.Context(), body.Name, body.Description)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Success(w, http.StatusCreated, "Permiso creado correctamente", permissionData{
		ID: p.ID, Name: p.Name, Description: p.Description,
	})
}
