package service

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quipulabs/centinela/internal/cache"
	"github.com/quipulabs/centinela/internal/jwt"
	"github.com/quipulabs/centinela/internal/store/core"
)

// RoleGraph es un rol con sus permisos resueltos.
type RoleGraph struct {
	core.Role
	Permissions []core.Permission
}

// UserGraph es un usuario con sus roles resueltos, cada rol con sus permisos.
type UserGraph struct {
	core.User
	Roles []RoleGraph
}

const (
	cacheKeyUsers = "agg:users"
	cacheKeyRoles = "agg:roles"
)

// Aggregator arma las vistas usuario→roles→permisos con pocas queries por
// lote en lugar de una por fila: lista base más los joins de links, y agrupa
// en memoria. Las vistas de listado se cachean; los snapshots para tokens
// se leen siempre frescos del storage.
type Aggregator struct {
	repo  core.Repository
	cache cache.Cache
	ttl   time.Duration
	sf    singleflight.Group
}

func NewAggregator(repo core.Repository, c cache.Cache, ttl time.Duration) *Aggregator {
	return &Aggregator{repo: repo, cache: c, ttl: ttl}
}

// Invalidate descarta las vistas cacheadas. Toda mutación de usuarios,
// roles, permisos o links pasa por acá.
func (a *Aggregator) Invalidate() {
	if a.cache == nil {
		return
	}
	a.cache.Delete(cacheKeyUsers)
	a.cache.Delete(cacheKeyRoles)
}

// UsersWithRoles devuelve todos los usuarios con sus roles y los permisos de
// cada rol. Los slices nunca son nil: un usuario sin roles lleva [].
func (a *Aggregator) UsersWithRoles(ctx context.Context) ([]UserGraph, error) {
	if out, ok := getCached[[]UserGraph](a.cache, cacheKeyUsers); ok {
		return out, nil
	}
	v, err, _ := a.sf.Do(cacheKeyUsers, func() (any, error) {
		out, err := a.buildUsers(ctx)
		if err != nil {
			return nil, err
		}
		setCached(a.cache, cacheKeyUsers, out, a.ttl)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]UserGraph), nil
}

// UserWithRoles devuelve un usuario con sus roles y permisos, siempre fresco.
func (a *Aggregator) UserWithRoles(ctx context.Context, id int64) (*UserGraph, error) {
	u, err := a.repo.GetUserByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, &core.EntityNotFoundError{Entity: "user", ID: id}
		}
		return nil, err
	}
	rows, err := a.repo.ListUserRoleRowsByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	permsByRole, err := a.permissionsByRole(ctx)
	if err != nil {
		return nil, err
	}
	g := UserGraph{User: *u, Roles: make([]RoleGraph, 0, len(rows))}
	for _, row := range rows {
		g.Roles = append(g.Roles, RoleGraph{Role: row.Role, Permissions: permsOrEmpty(permsByRole, row.Role.ID)})
	}
	return &g, nil
}

// RolesWithPermissions devuelve todos los roles con sus permisos resueltos.
func (a *Aggregator) RolesWithPermissions(ctx context.Context) ([]RoleGraph, error) {
	if out, ok := getCached[[]RoleGraph](a.cache, cacheKeyRoles); ok {
		return out, nil
	}
	v, err, _ := a.sf.Do(cacheKeyRoles, func() (any, error) {
		out, err := a.buildRoles(ctx)
		if err != nil {
			return nil, err
		}
		setCached(a.cache, cacheKeyRoles, out, a.ttl)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]RoleGraph), nil
}

// Snapshot arma los claims de identidad del usuario leyendo el estado actual
// del storage: nombres de rol y la unión de los permisos de esos roles, sin
// duplicados y en orden de primera aparición.
func (a *Aggregator) Snapshot(ctx context.Context, userID int64) (jwt.Snapshot, error) {
	g, err := a.UserWithRoles(ctx, userID)
	if err != nil {
		return jwt.Snapshot{}, err
	}
	snap := jwt.Snapshot{
		UserID:   g.ID,
		Email:    g.Email,
		Roles:    make([]string, 0, len(g.Roles)),
		Permisos: []string{},
	}
	seen := map[string]struct{}{}
	for _, r := range g.Roles {
		snap.Roles = append(snap.Roles, r.Name)
		for _, p := range r.Permissions {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			snap.Permisos = append(snap.Permisos, p.Name)
		}
	}
	return snap, nil
}

func (a *Aggregator) buildUsers(ctx context.Context) ([]UserGraph, error) {
	users, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	userRoles, err := a.repo.ListUserRoleRows(ctx)
	if err != nil {
		return nil, err
	}
	permsByRole, err := a.permissionsByRole(ctx)
	if err != nil {
		return nil, err
	}
	rolesByUser := make(map[int64][]RoleGraph, len(users))
	for _, row := range userRoles {
		rolesByUser[row.UserID] = append(rolesByUser[row.UserID], RoleGraph{
			Role:        row.Role,
			Permissions: permsOrEmpty(permsByRole, row.Role.ID),
		})
	}
	out := make([]UserGraph, 0, len(users))
	for _, u := range users {
		roles := rolesByUser[u.ID]
		if roles == nil {
			roles = []RoleGraph{}
		}
		out = append(out, UserGraph{User: u, Roles: roles})
	}
	return out, nil
}

func (a *Aggregator) buildRoles(ctx context.Context) ([]RoleGraph, error) {
	roles, err := a.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	permsByRole, err := a.permissionsByRole(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoleGraph, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleGraph{Role: r, Permissions: permsOrEmpty(permsByRole, r.ID)})
	}
	return out, nil
}

func (a *Aggregator) permissionsByRole(ctx context.Context) (map[int64][]core.Permission, error) {
	rows, err := a.repo.ListRolePermissionRows(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[int64][]core.Permission)
	for _, row := range rows {
		m[row.RoleID] = append(m[row.RoleID], row.Permission)
	}
	return m, nil
}

func permsOrEmpty(m map[int64][]core.Permission, roleID int64) []core.Permission {
	if ps := m[roleID]; ps != nil {
		return ps
	}
	return []core.Permission{}
}

// getCached y setCached serializan en JSON para que ambos backends de cache
// (memoria y redis) funcionen con el mismo contrato de bytes.
func getCached[T any](c cache.Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	raw, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.Delete(key)
		return zero, false
	}
	return v, true
}

func setCached[T any](c cache.Cache, key string, v T, ttl time.Duration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(key, raw, ttl)
}
