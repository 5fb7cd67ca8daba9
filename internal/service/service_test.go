package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quipulabs/centinela/internal/jwt"
	"github.com/quipulabs/centinela/internal/store/core"
	"github.com/quipulabs/centinela/internal/store/storetest"
)

type env struct {
	repo  *storetest.Fake
	agg   *Aggregator
	users *Users
	roles *Roles
	perms *Permissions
	auth  *Auth
}

func newEnv(t *testing.T) *env {
	t.Helper()
	repo := storetest.New()
	agg := NewAggregator(repo, nil, 0)
	users := NewUsers(repo, agg)
	users.HashCost = bcrypt.MinCost
	issuer := jwt.NewIssuer("centinela", []byte("secreto-de-test"), time.UTC)
	return &env{
		repo:  repo,
		agg:   agg,
		users: users,
		roles: NewRoles(repo, agg),
		perms: NewPermissions(repo, agg),
		auth:  NewAuth(repo, agg, issuer),
	}
}

func TestUsersCreateDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.users.Create(ctx, "ana@example.com", "secreta123")
	require.NoError(t, err)

	_, err = e.users.Create(ctx, "ANA@example.com", "otra")
	require.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, "El email ya está registrado", err.Error())
}

func TestUsersUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Create(ctx, "ana@example.com", "secreta123")
	require.NoError(t, err)
	_, err = e.users.Create(ctx, "beto@example.com", "secreta123")
	require.NoError(t, err)

	t.Run("no existe", func(t *testing.T) {
		_, err := e.users.Update(ctx, 999, "x@example.com", nil)
		require.ErrorIs(t, err, core.ErrNotFound)
		assert.Contains(t, err.Error(), "999")
	})

	t.Run("email de otro usuario", func(t *testing.T) {
		_, err := e.users.Update(ctx, u.ID, "beto@example.com", nil)
		require.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("sin password conserva el hash", func(t *testing.T) {
		before := e.repo.Users[u.ID].Password
		got, err := e.users.Update(ctx, u.ID, "ana.m@example.com", nil)
		require.NoError(t, err)
		assert.Equal(t, "ana.m@example.com", got.Email)
		assert.Equal(t, before, e.repo.Users[u.ID].Password)
	})

	t.Run("mismo email propio no es conflicto", func(t *testing.T) {
		nueva := "nueva-secreta"
		before := e.repo.Users[u.ID].Password
		_, err := e.users.Update(ctx, u.ID, "ana.m@example.com", &nueva)
		require.NoError(t, err)
		assert.NotEqual(t, before, e.repo.Users[u.ID].Password)
	})
}

func TestAssignUserRolesReplacesAll(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Create(ctx, "ana@example.com", "secreta123")
	require.NoError(t, err)
	r1, _ := e.roles.Create(ctx, "Ventas", "")
	r2, _ := e.roles.Create(ctx, "Compras", "")
	r3, _ := e.roles.Create(ctx, "Auditoría", "")

	require.NoError(t, e.roles.AssignUserRoles(ctx, u.ID, []int64{r1.ID, r2.ID}))
	require.NoError(t, e.roles.AssignUserRoles(ctx, u.ID, []int64{r3.ID}))

	g, err := e.agg.UserWithRoles(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, g.Roles, 1)
	assert.Equal(t, "Auditoría", g.Roles[0].Name)
}

func TestAssignUserRolesValidatesBeforeMutating(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Create(ctx, "ana@example.com", "secreta123")
	require.NoError(t, err)
	r1, _ := e.roles.Create(ctx, "Ventas", "")
	require.NoError(t, e.roles.AssignUserRoles(ctx, u.ID, []int64{r1.ID}))

	err = e.roles.AssignUserRoles(ctx, u.ID, []int64{r1.ID, 777})
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, err.Error(), "777")

	// La asignación previa queda intacta.
	g, err := e.agg.UserWithRoles(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, g.Roles, 1)
	assert.Equal(t, r1.ID, g.Roles[0].ID)
}

func TestAssignUserRolesUnknownUser(t *testing.T) {
	e := newEnv(t)
	err := e.roles.AssignUserRoles(context.Background(), 42, nil)
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, err.Error(), "42")
}

func TestAddUserRoleIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, _ := e.users.Create(ctx, "ana@example.com", "secreta123")
	r, _ := e.roles.Create(ctx, "Ventas", "")

	first, err := e.roles.AddUserRole(ctx, u.ID, r.ID)
	require.NoError(t, err)
	second, err := e.roles.AddUserRole(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, first.RoleID, second.RoleID)
	assert.Len(t, e.repo.UserRoles, 1)
}

func TestAssignRolePermissionsReplacesAll(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r, _ := e.roles.Create(ctx, "Editor", "")
	p1, _ := e.perms.Create(ctx, "document.read", "")
	p2, _ := e.perms.Create(ctx, "document.write", "")

	require.NoError(t, e.perms.AssignRolePermissions(ctx, r.ID, []int64{p1.ID, p2.ID}))
	require.NoError(t, e.perms.AssignRolePermissions(ctx, r.ID, []int64{p2.ID}))

	out, err := e.agg.RolesWithPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Permissions, 1)
	assert.Equal(t, "document.write", out[0].Permissions[0].Name)
}

func TestAggregatorEmptySlices(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, _ := e.users.Create(ctx, "solo@example.com", "secreta123")
	_, _ = e.roles.Create(ctx, "Vacío", "")

	users, err := e.agg.UsersWithRoles(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NotNil(t, users[0].Roles)
	assert.Empty(t, users[0].Roles)

	roles, err := e.agg.RolesWithPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.NotNil(t, roles[0].Permissions)
	assert.Empty(t, roles[0].Permissions)

	snap, err := e.agg.Snapshot(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, snap.Roles)
	assert.NotNil(t, snap.Permisos)

	_, err = e.agg.UserWithRoles(ctx, 404)
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, "El user con id 404 no existe", err.Error())
}

func TestSnapshotDeduplicatesPermissions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, _ := e.users.Create(ctx, "ana@example.com", "secreta123")
	r1, _ := e.roles.Create(ctx, "Lector", "")
	r2, _ := e.roles.Create(ctx, "Editor", "")
	read, _ := e.perms.Create(ctx, "document.read", "")
	write, _ := e.perms.Create(ctx, "document.write", "")

	require.NoError(t, e.perms.AssignRolePermissions(ctx, r1.ID, []int64{read.ID}))
	require.NoError(t, e.perms.AssignRolePermissions(ctx, r2.ID, []int64{read.ID, write.ID}))
	require.NoError(t, e.roles.AssignUserRoles(ctx, u.ID, []int64{r1.ID, r2.ID}))

	snap, err := e.agg.Snapshot(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Lector", "Editor"}, snap.Roles)
	assert.ElementsMatch(t, []string{"document.read", "document.write"}, snap.Permisos)
}

func TestAuthLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Create(ctx, "ana@example.com", "secreta123")
	require.NoError(t, err)
	r, _ := e.roles.Create(ctx, "Administrador", "")
	require.NoError(t, e.roles.AssignUserRoles(ctx, u.ID, []int64{r.ID}))

	t.Run("credenciales correctas", func(t *testing.T) {
		pair, snap, err := e.auth.Login(ctx, "ana@example.com", "secreta123")
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, []string{"Administrador"}, snap.Roles)
	})

	t.Run("password incorrecta", func(t *testing.T) {
		_, _, err := e.auth.Login(ctx, "ana@example.com", "incorrecta")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("email desconocido", func(t *testing.T) {
		_, _, err := e.auth.Login(ctx, "nadie@example.com", "secreta123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("cuenta desactivada", func(t *testing.T) {
		deactivated := e.repo.Users[u.ID]
		deactivated.IsActive = false
		e.repo.Users[u.ID] = deactivated
		_, _, err := e.auth.Login(ctx, "ana@example.com", "secreta123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthRefresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.users.Create(ctx, "ana@example.com", "secreta123")
	require.NoError(t, err)
	r1, _ := e.roles.Create(ctx, "Lector", "")
	require.NoError(t, e.roles.AssignUserRoles(ctx, u.ID, []int64{r1.ID}))

	pair, _, err := e.auth.Login(ctx, "ana@example.com", "secreta123")
	require.NoError(t, err)

	t.Run("relee roles del storage", func(t *testing.T) {
		r2, _ := e.roles.Create(ctx, "Editor", "")
		require.NoError(t, e.roles.AssignUserRoles(ctx, u.ID, []int64{r2.ID}))

		access, err := e.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		claims, err := e.auth.issuer.Validate(access, jwt.TypeAccess)
		require.NoError(t, err)
		assert.Equal(t, []string{"Editor"}, claims.Roles)
	})

	t.Run("un access token no sirve como refresh", func(t *testing.T) {
		_, err := e.auth.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("basura", func(t *testing.T) {
		_, err := e.auth.Refresh(ctx, "no-es-un-jwt")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}
