// Aplica las migraciones embebidas contra la base configurada.
//
//	migrate [-config configs/config.yaml] [up|down] [steps]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/quipulabs/centinela/internal/config"
	migrations "github.com/quipulabs/centinela/migrations/postgres"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "ruta al YAML de configuración")
	flag.Parse()

	_ = godotenv.Load(".env")

	// Args posicionales: [action] [steps]
	action := "up"
	steps := 0
	args := flag.Args()
	if len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			steps = n
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		log.Fatal("config: STORAGE_DSN es requerido")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	switch action {
	case "up":
		files, err := listSQL("_up.sql")
		if err != nil {
			log.Fatalf("list up: %v", err)
		}
		sort.Strings(files) // orden ascendente
		if steps > 0 && steps < len(files) {
			files = files[:steps]
		}
		log.Printf("Aplicando %d migración(es) up...", len(files))
		for _, f := range files {
			if err := execSQLFile(ctx, pool, f); err != nil {
				log.Fatalf("exec %s: %v", f, err)
			}
		}
		log.Println("Migraciones up completadas.")

	case "down":
		files, err := listSQL("_down.sql")
		if err != nil {
			log.Fatalf("list down: %v", err)
		}
		sort.Strings(files)
		reverseInPlace(files) // los down corren de la más nueva a la más vieja
		if steps > 0 && steps < len(files) {
			files = files[:steps]
		}
		log.Printf("Aplicando %d migración(es) down...", len(files))
		for _, f := range files {
			if err := execSQLFile(ctx, pool, f); err != nil {
				log.Fatalf("exec %s: %v", f, err)
			}
		}
		log.Println("Migraciones down completadas.")

	default:
		log.Fatalf("acción desconocida %q. Uso: up | down [steps]", action)
	}
}

func listSQL(suffix string) ([]string, error) {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func reverseInPlace(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}

func execSQLFile(ctx context.Context, pool *pgxpool.Pool, name string) error {
	b, err := migrations.FS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	start := time.Now()
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	log.Printf("OK %s (%s)", name, time.Since(start).Truncate(time.Millisecond))
	return nil
}
