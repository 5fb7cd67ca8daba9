// Package storetest provee un core.Repository en memoria para tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quipulabs/centinela/internal/store/core"
)

// Fake implementa core.Repository sobre maps. WithTx ejecuta fn directo,
// sin semántica transaccional: suficiente para tests de services y handlers.
type Fake struct {
	mu sync.Mutex

	nextUserID int64
	nextRoleID int64
	nextPermID int64

	Users       map[int64]core.User
	Roles       map[int64]core.Role
	Permissions map[int64]core.Permission
	UserRoles   map[[2]int64]core.UserRole       // (user_id, role_id)
	RolePerms   map[[2]int64]core.RolePermission // (role_id, permission_id)
}

func New() *Fake {
	return &Fake{
		Users:       map[int64]core.User{},
		Roles:       map[int64]core.Role{},
		Permissions: map[int64]core.Permission{},
		UserRoles:   map[[2]int64]core.UserRole{},
		RolePerms:   map[[2]int64]core.RolePermission{},
	}
}

var _ core.Repository = (*Fake)(nil)

func (f *Fake) WithTx(ctx context.Context, fn func(core.Repository) error) error {
	return fn(f)
}

// ---------- usuarios ----------

func (f *Fake) GetUserByID(_ context.Context, id int64) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.Users[id]; ok {
		return &u, nil
	}
	return nil, core.ErrNotFound
}

func (f *Fake) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.Users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *Fake) GetUserByEmailExceptID(_ context.Context, email string, id int64) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.Users {
		if u.ID != id && strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *Fake) ListUsers(_ context.Context) ([]core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.User, 0, len(f.Users))
	for _, u := range f.Users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) CreateUser(_ context.Context, email, passwordHash string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.Users {
		if strings.EqualFold(u.Email, email) {
			return nil, core.ErrConflict
		}
	}
	f.nextUserID++
	now := time.Now()
	u := core.User{ID: f.nextUserID, Email: email, Password: passwordHash, IsActive: true, CreatedAt: now, UpdatedAt: now}
	f.Users[u.ID] = u
	return &u, nil
}

func (f *Fake) UpdateUser(_ context.Context, id int64, email string, passwordHash *string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.Users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	for _, other := range f.Users {
		if other.ID != id && strings.EqualFold(other.Email, email) {
			return nil, core.ErrConflict
		}
	}
	u.Email = email
	if passwordHash != nil {
		u.Password = *passwordHash
	}
	u.UpdatedAt = time.Now()
	f.Users[id] = u
	return &u, nil
}

// ---------- roles ----------

func (f *Fake) GetRoleByID(_ context.Context, id int64) (*core.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.Roles[id]; ok {
		return &r, nil
	}
	return nil, core.ErrNotFound
}

func (f *Fake) GetRoleByName(_ context.Context, name string) (*core.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Roles {
		if r.Name == name {
			r := r
			return &r, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *Fake) ListRoles(_ context.Context) ([]core.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Role, 0, len(f.Roles))
	for _, r := range f.Roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) CreateRole(_ context.Context, name, description string) (*core.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Roles {
		if r.Name == name {
			return nil, core.ErrConflict
		}
	}
	f.nextRoleID++
	now := time.Now()
	r := core.Role{ID: f.nextRoleID, Name: name, Description: description, CreatedAt: now, UpdatedAt: now}
	f.Roles[r.ID] = r
	return &r, nil
}

// ---------- permisos ----------

func (f *Fake) GetPermissionByID(_ context.Context, id int64) (*core.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Permissions[id]; ok {
		return &p, nil
	}
	return nil, core.ErrNotFound
}

func (f *Fake) GetPermissionByName(_ context.Context, name string) (*core.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.Permissions {
		if p.Name == name {
			p := p
			return &p, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *Fake) ListPermissions(_ context.Context) ([]core.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Permission, 0, len(f.Permissions))
	for _, p := range f.Permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) CreatePermission(_ context.Context, name, description string) (*core.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.Permissions {
		if p.Name == name {
			return nil, core.ErrConflict
		}
	}
	f.nextPermID++
	now := time.Now()
	p := core.Permission{ID: f.nextPermID, Name: name, Description: description, CreatedAt: now, UpdatedAt: now}
	f.Permissions[p.ID] = p
	return &p, nil
}

// ---------- links ----------

func (f *Fake) GetUserRole(_ context.Context, userID, roleID int64) (*core.UserRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ur, ok := f.UserRoles[[2]int64{userID, roleID}]; ok {
		return &ur, nil
	}
	return nil, core.ErrNotFound
}

func (f *Fake) AddUserRole(_ context.Context, userID, roleID int64) (*core.UserRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]int64{userID, roleID}
	if _, ok := f.UserRoles[k]; ok {
		return nil, core.ErrConflict
	}
	ur := core.UserRole{UserID: userID, RoleID: roleID, CreatedAt: time.Now()}
	f.UserRoles[k] = ur
	return &ur, nil
}

func (f *Fake) DeleteUserRoles(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.UserRoles {
		if k[0] == userID {
			delete(f.UserRoles, k)
		}
	}
	return nil
}

func (f *Fake) GetRolePermission(_ context.Context, roleID, permissionID int64) (*core.RolePermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rp, ok := f.RolePerms[[2]int64{roleID, permissionID}]; ok {
		return &rp, nil
	}
	return nil, core.ErrNotFound
}

func (f *Fake) AddRolePermission(_ context.Context, roleID, permissionID int64) (*core.RolePermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]int64{roleID, permissionID}
	if _, ok := f.RolePerms[k]; ok {
		return nil, core.ErrConflict
	}
	rp := core.RolePermission{RoleID: roleID, PermissionID: permissionID, CreatedAt: time.Now()}
	f.RolePerms[k] = rp
	return &rp, nil
}

func (f *Fake) DeleteRolePermissions(_ context.Context, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.RolePerms {
		if k[0] == roleID {
			delete(f.RolePerms, k)
		}
	}
	return nil
}

func (f *Fake) ListUserRoleRows(_ context.Context) ([]core.UserRoleRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.UserRoleRow
	for k := range f.UserRoles {
		if r, ok := f.Roles[k[1]]; ok {
			out = append(out, core.UserRoleRow{UserID: k[0], Role: r})
		}
	}
	sortUserRoleRows(out)
	return out, nil
}

func (f *Fake) ListUserRoleRowsByUser(_ context.Context, userID int64) ([]core.UserRoleRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.UserRoleRow
	for k := range f.UserRoles {
		if k[0] != userID {
			continue
		}
		if r, ok := f.Roles[k[1]]; ok {
			out = append(out, core.UserRoleRow{UserID: k[0], Role: r})
		}
	}
	sortUserRoleRows(out)
	return out, nil
}

func (f *Fake) ListRolePermissionRows(_ context.Context) ([]core.RolePermissionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.RolePermissionRow
	for k := range f.RolePerms {
		if p, ok := f.Permissions[k[1]]; ok {
			out = append(out, core.RolePermissionRow{RoleID: k[0], Permission: p})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoleID != out[j].RoleID {
			return out[i].RoleID < out[j].RoleID
		}
		return out[i].Permission.ID < out[j].Permission.ID
	})
	return out, nil
}

func sortUserRoleRows(rows []core.UserRoleRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UserID != rows[j].UserID {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].Role.ID < rows[j].Role.ID
	})
}
