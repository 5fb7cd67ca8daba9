package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpapi "github.com/quipulabs/centinela/internal/http"
	"github.com/quipulabs/centinela/internal/jwt"
	"github.com/quipulabs/centinela/internal/service"
	"github.com/quipulabs/centinela/internal/store/storetest"
)

type testAPI struct {
	srv    *httptest.Server
	repo   *storetest.Fake
	users  *service.Users
	roles  *service.Roles
	perms  *service.Permissions
	issuer *jwt.Issuer
}

func newAPI(t *testing.T) *testAPI {
	t.Helper()
	repo := storetest.New()
	agg := service.NewAggregator(repo, nil, 0)
	users := service.NewUsers(repo, agg)
	users.HashCost = bcrypt.MinCost
	roles := service.NewRoles(repo, agg)
	perms := service.NewPermissions(repo, agg)
	issuer := jwt.NewIssuer("centinela", []byte("secreto-de-test"), time.UTC)

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:        service.NewAuth(repo, agg, issuer),
		Users:       users,
		Roles:       roles,
		Permissions: perms,
		Aggregator:  agg,
		Issuer:      issuer,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testAPI{srv: srv, repo: repo, users: users, roles: roles, perms: perms, issuer: issuer}
}

type envelope struct {
	Estado  bool            `json:"estado"`
	Icono   string          `json:"icono"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testAPI) request(t *testing.T, method, path, token string, payload any) (int, envelope) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestLoginEndpoint(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()
	_, err := api.users.Create(ctx, "ana@example.com", "secreta123")
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		status, env := api.request(t, "POST", "/users/login", "", map[string]string{
			"email": "ana@example.com", "password": "secreta123",
		})
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, env.Estado)
		assert.Equal(t, "success", env.Icono)
		assert.Equal(t, "Login exitoso.", env.Message)

		var data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
			User         struct {
				Email string   `json:"email"`
				Roles []string `json:"roles"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.NotEmpty(t, data.AccessToken)
		assert.NotEmpty(t, data.RefreshToken)
		assert.Equal(t, "ana@example.com", data.User.Email)
		assert.NotNil(t, data.User.Roles)
	})

	t.Run("password incorrecta", func(t *testing.T) {
		status, env := api.request(t, "POST", "/users/login", "", map[string]string{
			"email": "ana@example.com", "password": "incorrecta",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.False(t, env.Estado)
		assert.Equal(t, "error", env.Icono)
		assert.Equal(t, "Credenciales inválidas.", env.Message)
	})

	t.Run("body incompleto", func(t *testing.T) {
		status, _ := api.request(t, "POST", "/users/login", "", map[string]string{"email": "ana@example.com"})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()
	_, err := api.users.Create(ctx, "ana@example.com", "secreta123")
	require.NoError(t, err)

	_, loginEnv := api.request(t, "POST", "/users/login", "", map[string]string{
		"email": "ana@example.com", "password": "secreta123",
	})
	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(loginEnv.Data, &tokens))

	t.Run("ok", func(t *testing.T) {
		status, env := api.request(t, "POST", "/users/refresh", "", map[string]string{
			"refresh_token": tokens.RefreshToken,
		})
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Token renovado.", env.Message)
	})

	t.Run("access token como refresh", func(t *testing.T) {
		status, env := api.request(t, "POST", "/users/refresh", "", map[string]string{
			"refresh_token": tokens.AccessToken,
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Refresh token inválido o expirado.", env.Message)
	})
}

func TestUserCRUDEndpoints(t *testing.T) {
	api := newAPI(t)

	t.Run("crear", func(t *testing.T) {
		status, env := api.request(t, "POST", "/users", "", map[string]string{
			"email": "beto@example.com", "password": "secreta123",
		})
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "Usuario creado correctamente", env.Message)
	})

	t.Run("email duplicado", func(t *testing.T) {
		status, env := api.request(t, "POST", "/users", "", map[string]string{
			"email": "beto@example.com", "password": "otra",
		})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "warning", env.Icono)
	})

	t.Run("actualizar inexistente", func(t *testing.T) {
		status, env := api.request(t, "PUT", "/users/999", "", map[string]string{
			"email": "x@example.com",
		})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, env.Message, "999")
	})

	t.Run("actualizar", func(t *testing.T) {
		status, env := api.request(t, "PUT", "/users/1", "", map[string]string{
			"email": "beto.m@example.com",
		})
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Usuario actualizado correctamente", env.Message)
	})

	t.Run("listar", func(t *testing.T) {
		status, env := api.request(t, "GET", "/users/all", "", nil)
		assert.Equal(t, http.StatusOK, status)

		var users []struct {
			Email   string `json:"email"`
			Roles   []any  `json:"roles"`
			RolesID []any  `json:"roles_id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &users))
		require.Len(t, users, 1)
		assert.Equal(t, "beto.m@example.com", users[0].Email)
		assert.NotNil(t, users[0].Roles)
		assert.NotNil(t, users[0].RolesID)
	})
}

func TestProtectedUserDetail(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	admin, err := api.users.Create(ctx, "admin@example.com", "secreta123")
	require.NoError(t, err)
	adminRole, err := api.roles.Create(ctx, "Administrador", "")
	require.NoError(t, err)
	require.NoError(t, api.roles.AssignUserRoles(ctx, admin.ID, []int64{adminRole.ID}))

	pleb, err := api.users.Create(ctx, "pleb@example.com", "secreta123")
	require.NoError(t, err)

	adminToken, _, err := api.issuer.IssueAccess(jwt.Snapshot{
		UserID: admin.ID, Email: admin.Email, Roles: []string{"Administrador"}, Permisos: []string{},
	})
	require.NoError(t, err)
	plebToken, _, err := api.issuer.IssueAccess(jwt.Snapshot{
		UserID: pleb.ID, Email: pleb.Email, Roles: []string{"Usuario"}, Permisos: []string{},
	})
	require.NoError(t, err)

	t.Run("sin token", func(t *testing.T) {
		status, _ := api.request(t, "GET", "/users/1", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("sin rol requerido", func(t *testing.T) {
		status, env := api.request(t, "GET", "/users/1", plebToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.False(t, env.Estado)
	})

	t.Run("con rol", func(t *testing.T) {
		status, env := api.request(t, "GET", "/users/2", adminToken, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Usuario obtenido correctamente", env.Message)

		var detail struct {
			Email string `json:"email"`
			Roles []any  `json:"roles"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &detail))
		assert.Equal(t, "pleb@example.com", detail.Email)
	})

	t.Run("id cero es el propio usuario", func(t *testing.T) {
		status, env := api.request(t, "GET", "/users/0", adminToken, nil)
		assert.Equal(t, http.StatusOK, status)

		var detail struct {
			Email string `json:"email"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &detail))
		assert.Equal(t, "admin@example.com", detail.Email)
	})

	t.Run("inexistente", func(t *testing.T) {
		status, env := api.request(t, "GET", "/users/404", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Usuario no encontrado", env.Message)
	})
}

func TestRoleAndPermissionEndpoints(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	u, err := api.users.Create(ctx, "ana@example.com", "secreta123")
	require.NoError(t, err)

	status, _ := api.request(t, "POST", "/roles", "", map[string]string{"name": "Editor", "description": "Edita documentos"})
	require.Equal(t, http.StatusCreated, status)

	status, env := api.request(t, "POST", "/roles", "", map[string]string{"name": "Editor"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "warning", env.Icono)

	status, _ = api.request(t, "POST", "/permissions", "", map[string]string{"name": "document.read"})
	require.Equal(t, http.StatusCreated, status)

	t.Run("asignar permisos a rol", func(t *testing.T) {
		status, env := api.request(t, "POST", "/roles/permissions", "", map[string]any{
			"role_id": 1, "permissions_id": []int64{1},
		})
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Permisos asignados correctamente", env.Message)
	})

	t.Run("asignar roles a usuario", func(t *testing.T) {
		status, env := api.request(t, "POST", "/roles/users", "", map[string]any{
			"user_id": u.ID, "roles_id": []int64{1},
		})
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Roles asignados correctamente", env.Message)
	})

	t.Run("rol inexistente en asignación", func(t *testing.T) {
		status, env := api.request(t, "POST", "/roles/users", "", map[string]any{
			"user_id": u.ID, "roles_id": []int64{777},
		})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "El rol con id 777 no existe", env.Message)
	})

	t.Run("listar roles con permisos", func(t *testing.T) {
		status, env := api.request(t, "GET", "/roles", "", nil)
		assert.Equal(t, http.StatusOK, status)

		var roles []struct {
			Name          string  `json:"name"`
			PermissionsID []int64 `json:"permissions_id"`
			Permissions   []struct {
				Name string `json:"name"`
			} `json:"permissions"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &roles))
		require.Len(t, roles, 1)
		assert.Equal(t, "Editor", roles[0].Name)
		require.Len(t, roles[0].Permissions, 1)
		assert.Equal(t, "document.read", roles[0].Permissions[0].Name)
		assert.Equal(t, []int64{1}, roles[0].PermissionsID)
	})

	t.Run("listar permisos", func(t *testing.T) {
		status, env := api.request(t, "GET", "/permissions", "", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Permisos obtenidos correctamente", env.Message)
	})
}

func TestHealthz(t *testing.T) {
	api := newAPI(t)
	resp, err := http.Get(api.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
