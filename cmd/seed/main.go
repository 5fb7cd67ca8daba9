// Crea los datos mínimos de arranque: el rol Administrador, el permiso
// admin.full_access y un usuario administrador tomado del entorno.
// Es idempotente: lo que ya existe se reutiliza.
package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/quipulabs/centinela/internal/config"
	"github.com/quipulabs/centinela/internal/rbac"
	"github.com/quipulabs/centinela/internal/service"
	"github.com/quipulabs/centinela/internal/store/core"
	"github.com/quipulabs/centinela/internal/store/pg"
)

func strEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load(strEnv("CONFIG_PATH", "configs/config.yaml"))
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	adminEmail := strEnv("SEED_ADMIN_EMAIL", "admin@example.com")
	adminPassword := strEnv("SEED_ADMIN_PASSWORD", "")
	if adminPassword == "" {
		log.Fatal("SEED_ADMIN_PASSWORD es requerido")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{Location: cfg.Location()})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	agg := service.NewAggregator(store, nil, 0)
	users := service.NewUsers(store, agg)
	roles := service.NewRoles(store, agg)
	perms := service.NewPermissions(store, agg)

	role, err := roles.Create(ctx, "Administrador", "Acceso total al sistema")
	if err != nil {
		if !core.IsConflict(err) {
			log.Fatalf("rol: %v", err)
		}
		role, err = store.GetRoleByName(ctx, "Administrador")
		if err != nil {
			log.Fatalf("rol: %v", err)
		}
	}

	perm, err := perms.Create(ctx, rbac.PermFullAccess, "Omite toda verificación de permisos")
	if err != nil {
		if !core.IsConflict(err) {
			log.Fatalf("permiso: %v", err)
		}
		perm, err = store.GetPermissionByName(ctx, rbac.PermFullAccess)
		if err != nil {
			log.Fatalf("permiso: %v", err)
		}
	}

	if _, err := perms.AddRolePermission(ctx, role.ID, perm.ID); err != nil {
		log.Fatalf("rol-permiso: %v", err)
	}

	admin, err := users.Create(ctx, adminEmail, adminPassword)
	if err != nil {
		if !core.IsConflict(err) {
			log.Fatalf("usuario: %v", err)
		}
		admin, err = store.GetUserByEmail(ctx, adminEmail)
		if err != nil {
			log.Fatalf("usuario: %v", err)
		}
		log.Printf("usuario %s ya existe, se conserva su password", adminEmail)
	}

	if _, err := roles.AddUserRole(ctx, admin.ID, role.ID); err != nil {
		log.Fatalf("usuario-rol: %v", err)
	}

	log.Printf("seed listo: usuario=%s rol=%s permiso=%s", admin.Email, role.Name, perm.Name)
}
