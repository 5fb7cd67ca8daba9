package core

import "time"

// User representa una cuenta del sistema.
type User struct {
	ID        int64
	Email     string
	Password  string // hash bcrypt, nunca el texto plano
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role representa un agrupador de permisos asignable a usuarios.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission representa una capacidad atómica.
type Permission struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRole es la arista usuario↔rol. Identidad compuesta (user_id, role_id):
// a lo sumo una fila por par. Las filas son inmutables, solo se borran y
// recrean.
type UserRole struct {
	UserID    int64
	RoleID    int64
	CreatedAt time.Time
}

// RolePermission es la arista rol↔permiso, con la misma semántica de par único.
type RolePermission struct {
	RoleID       int64
	PermissionID int64
	CreatedAt    time.Time
}

// UserRoleRow es una fila del join user_roles ⋈ roles, usada por las
// queries de agregación para armar el grafo sin fanout por fila.
type UserRoleRow struct {
	UserID int64
	Role   Role
}

// RolePermissionRow es una fila del join role_permissions ⋈ permissions.
type RolePermissionRow struct {
	RoleID     int64
	Permission Permission
}
