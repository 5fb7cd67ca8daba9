package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quipulabs/centinela/internal/http/respond"
	"github.com/quipulabs/centinela/internal/service"
)

// Roles maneja roles y las dos asignaciones: roles a usuarios y permisos a
// roles.
type Roles struct {
	svc   *service.Roles
	perms *service.Permissions
	agg   *service.Aggregator
}

func NewRoles(svc *service.Roles, perms *service.Permissions, agg *service.Aggregator) *Roles {
	return &Roles{svc: svc, perms: perms, agg: agg}
}

func (h *Roles) Register(r chi.Router) {
	r.Get("/roles", h.All)
	r.Post("/roles", h.Create)
	r.Post("/roles/users", h.AssignUsers)
	r.Post("/roles/permissions", h.AssignPermissions)
}

type createRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type assignRolesRequest struct {
	UserID  int64   `json:"user_id"`
	RolesID []int64 `json:"roles_id"`
}

type assignPermissionsRequest struct {
	RoleID        int64   `json:"role_id"`
	PermissionsID []int64 `json:"permissions_id"`
}

type roleData struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type rolePermissionData struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type roleListItem struct {
	ID            int64                `json:"id"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	PermissionsID []int64              `json:"permissions_id"`
	Permissions   []rolePermissionData `json:"permissions"`
}

func (h *Roles) All(w http.ResponseWriter, r *http.Request) {
	graphs, err := h.agg.RolesWithPermissions(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	roles := make([]roleListItem, 0, len(graphs))
	for _, g := range graphs {
		item := roleListItem{
			ID:            g.ID,
			Name:          g.Name,
			Description:   g.Description,
			PermissionsID: make([]int64, 0, len(g.Permissions)),
			Permissions:   make([]rolePermissionData, 0, len(g.Permissions)),
		}
		for _, p := range g.Permissions {
			item.PermissionsID = append(item.PermissionsID, p.ID)
			item.Permissions = append(item.Permissions, rolePermissionData{ID: p.ID, Name: p.Name, Description: p.Description})
		}
		roles = append(roles, item)
	}

	respond.Success(w, http.StatusOK, "Roles obtenidos correctamente", roles)
}

func (h *Roles) Create(w http.ResponseWriter, r *http.Request) {
	var body createRoleRequest
	if !respond.ReadJSON(w, r, &body) {
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "name es requerido")
		return
	}

	role, err := h.svc.Create(r.Context(), body.Name, body.Description)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Success(w, http.StatusCreated, "Role creado correctamente", roleData{
		ID: role.ID, Name: role.Name, Description: role.Description,
	})
}

func (h *Roles) AssignUsers(w http.ResponseWriter, r *http.Request) {
	var body assignRolesRequest
	if !respond.ReadJSON(w, r, &body) {
		return
	}
	if body.UserID <= 0 {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "user_id es requerido")
		return
	}

	if err := h.svc.AssignUserRoles(r.Context(), body.UserID, body.RolesID); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, "Roles asignados correctamente", nil)
}

func (h *Roles) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	var body assignPermissionsRequest
	if !respond.ReadJSON(w, r, &body) {
		return
	}
	if body.RoleID <= 0 {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "role_id es requerido")
		return
	}

	if err := h.perms.AssignRolePermissions(r.Context(), body.RoleID, body.PermissionsID); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, "Permisos asignados correctamente", nil)
}
