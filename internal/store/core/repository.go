// Package core define los contratos de persistencia del dominio.
//
// El backend concreto (postgres) vive en store/pg; los services dependen solo
// de estas interfaces, lo que permite fakes en memoria para tests.
package core

import "context"

// Repository agrupa todas las operaciones de persistencia.
type Repository interface {
	UserRepository
	RoleRepository
	PermissionRepository
	LinkRepository

	// WithTx ejecuta fn contra un Repository ligado a una transacción.
	// Commit si fn retorna nil; rollback ante error o panic. Las mutaciones
	// compuestas (replace-all de links) deben correr dentro de WithTx para
	// que ningún estado parcial sea visible a otros requests.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// GetUserByID retorna ErrNotFound si no existe.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail busca por email (case-insensitive).
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByEmailExceptID busca otro usuario con el mismo email.
	// Usado por update para detectar emails duplicados sin chocar consigo mismo.
	GetUserByEmailExceptID(ctx context.Context, email string, id int64) (*User, error)

	// ListUsers retorna todos los usuarios ordenados por id.
	ListUsers(ctx context.Context) ([]User, error)

	// CreateUser persiste un usuario nuevo con is_active=true.
	// Retorna ErrConflict si el email ya existe (backstop: unique index).
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)

	// UpdateUser sobreescribe email y, si passwordHash != nil, el password.
	// Retorna ErrNotFound si el id no existe.
	UpdateUser(ctx context.Context, id int64, email string, passwordHash *string) (*User, error)
}

// RoleRepository define operaciones sobre roles.
type RoleRepository interface {
	GetRoleByID(ctx context.Context, id int64) (*Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)

	// CreateRole retorna ErrConflict si el nombre ya existe.
	CreateRole(ctx context.Context, name, description string) (*Role, error)
}

// PermissionRepository define operaciones sobre permisos.
type PermissionRepository interface {
	GetPermissionByID(ctx context.Context, id int64) (*Permission, error)
	GetPermissionByName(ctx context.Context, name string) (*Permission, error)
	ListPermissions(ctx context.Context) ([]Permission, error)

	// CreatePermission retorna ErrConflict si el nombre ya existe.
	CreatePermission(ctx context.Context, name, description string) (*Permission, error)
}

// LinkRepository define operaciones sobre las aristas many-to-many.
type LinkRepository interface {
	// GetUserRole retorna ErrNotFound si el par no existe.
	GetUserRole(ctx context.Context, userID, roleID int64) (*UserRole, error)

	// AddUserRole inserta la arista (user_id, role_id).
	AddUserRole(ctx context.Context, userID, roleID int64) (*UserRole, error)

	// DeleteUserRoles borra todas las aristas del usuario.
	DeleteUserRoles(ctx context.Context, userID int64) error

	// GetRolePermission retorna ErrNotFound si el par no existe.
	GetRolePermission(ctx context.Context, roleID, permissionID int64) (*RolePermission, error)

	// AddRolePermission inserta la arista (role_id, permission_id).
	AddRolePermission(ctx context.Context, roleID, permissionID int64) (*RolePermission, error)

	// DeleteRolePermissions borra todas las aristas del rol.
	DeleteRolePermissions(ctx context.Context, roleID int64) error

	// ListUserRoleRows trae user_roles ⋈ roles completo en una sola pasada.
	ListUserRoleRows(ctx context.Context) ([]UserRoleRow, error)

	// ListUserRoleRowsByUser trae solo las filas de un usuario.
	ListUserRoleRowsByUser(ctx context.Context, userID int64) ([]UserRoleRow, error)

	// ListRolePermissionRows trae role_permissions ⋈ permissions en una pasada.
	ListRolePermissionRows(ctx context.Context) ([]RolePermissionRow, error)
}
