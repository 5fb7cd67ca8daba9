package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quipulabs/centinela/internal/http/middlewares"
	"github.com/quipulabs/centinela/internal/http/respond"
	"github.com/quipulabs/centinela/internal/jwt"
	"github.com/quipulabs/centinela/internal/rbac"
	"github.com/quipulabs/centinela/internal/service"
	"github.com/quipulabs/centinela/internal/store/core"
)

// Users maneja alta, edición y consulta de usuarios.
type Users struct {
	svc    *service.Users
	agg    *service.Aggregator
	issuer *jwt.Issuer
}

func NewUsers(svc *service.Users, agg *service.Aggregator, issuer *jwt.Issuer) *Users {
	return &Users{svc: svc, agg: agg, issuer: issuer}
}

func (h *Users) Register(r chi.Router) {
	r.Get("/users/all", h.All)
	r.Post("/users", h.Create)
	r.Put("/users/{id}", h.Update)

	// Detalle protegido: sólo el rol Administrador puede consultar usuarios.
	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireAuth(h.issuer))
		r.Use(middlewares.Require(rbac.Requirement{Roles: []string{"Administrador"}}))
		r.Get("/users/{id}", h.Get)
	})
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Email    string  `json:"email"`
	Password *string `json:"password"`
}

type userData struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// Shapes del listado: ids de roles/permisos por separado de los nombres,
// como consumen los clientes existentes.
type listRoleIDs struct {
	ID            int64   `json:"id"`
	PermissionsID []int64 `json:"permissions_id"`
}

type listRole struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type listUser struct {
	ID      int64         `json:"id"`
	Email   string        `json:"email"`
	RolesID []listRoleIDs `json:"roles_id"`
	Roles   []listRole    `json:"roles"`
}

type detailPermission struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type detailRole struct {
	ID       int64              `json:"id"`
	Name     string             `json:"name"`
	Permisos []detailPermission `json:"permisos"`
}

type detailUser struct {
	ID    int64        `json:"id"`
	Email string       `json:"email"`
	Roles []detailRole `json:"roles"`
}

func (h *Users) All(w http.ResponseWriter, r *http.Request) {
	graphs, err := h.agg.UsersWithRoles(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	users := make([]listUser, 0, len(graphs))
	for _, g := range graphs {
		u := listUser{
			ID:      g.ID,
			Email:   g.Email,
			RolesID: make([]listRoleIDs, 0, len(g.Roles)),
			Roles:   make([]listRole, 0, len(g.Roles)),
		}
		for _, role := range g.Roles {
			ids := listRoleIDs{ID: role.ID, PermissionsID: make([]int64, 0, len(role.Permissions))}
			names := listRole{ID: role.ID, Name: role.Name, Permissions: make([]string, 0, len(role.Permissions))}
			for _, p := range role.Permissions {
				ids.PermissionsID = append(ids.PermissionsID, p.ID)
				names.Permissions = append(names.Permissions, p.Name)
			}
			u.RolesID = append(u.RolesID, ids)
			u.Roles = append(u.Roles, names)
		}
		users = append(users, u)
	}

	respond.Success(w, http.StatusOK, "Usuarios obtenidos correctamente", users)
}

func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "id inválido")
		return
	}
	// id 0 significa "el usuario del token".
	if id == 0 {
		claims := middlewares.GetClaims(r.Context())
		if claims == nil {
			respond.Error(w, r, rbac.ErrUnauthenticated)
			return
		}
		id = claims.ID
	}

	g, err := h.agg.UserWithRoles(r.Context(), id)
	if err != nil {
		if core.IsNotFound(err) {
			respond.Fail(w, http.StatusNotFound, respond.IconWarning, "Usuario no encontrado")
			return
		}
		respond.Error(w, r, err)
		return
	}

	detail := detailUser{ID: g.ID, Email: g.Email, Roles: make([]detailRole, 0, len(g.Roles))}
	for _, role := range g.Roles {
		dr := detailRole{ID: role.ID, Name: role.Name, Permisos: make([]detailPermission, 0, len(role.Permissions))}
		for _, p := range role.Permissions {
			dr.Permisos = append(dr.Permisos, detailPermission{ID: p.ID, Name: p.Name})
		}
		detail.Roles = append(detail.Roles, dr)
	}

	respond.Success(w, http.StatusOK, "Usuario obtenido correctamente", detail)
}

func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	var body createUserRequest
	if !respond.ReadJSON(w, r, &body) {
		return
	}
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" || body.Password == "" {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "email y password son requeridos")
		return
	}

	u, err := h.svc.Create(r.Context(), body.Email, body.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Success(w, http.StatusCreated, "Usuario creado correctamente", userData{
		ID: u.ID, Email: u.Email, IsActive: u.IsActive,
	})
}

func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "id inválido")
		return
	}

	var body updateUserRequest
	if !respond.ReadJSON(w, r, &body) {
		return
	}
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "email es requerido")
		return
	}
	if body.Password != nil && *body.Password == "" {
		respond.Fail(w, http.StatusBadRequest, respond.IconError, "password no puede ser vacía")
		return
	}

	u, err := h.svc.Update(r.Context(), id, body.Email, body.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Success(w, http.StatusOK, "Usuario actualizado correctamente", userData{
		ID: u.ID, Email: u.Email, IsActive: u.IsActive,
	})
}
