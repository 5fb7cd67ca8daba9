package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quipulabs/centinela/internal/cache"
	"github.com/quipulabs/centinela/internal/config"
	httpserver "github.com/quipulabs/centinela/internal/http"
	jwtx "github.com/quipulabs/centinela/internal/jwt"
	"github.com/quipulabs/centinela/internal/observability/logger"
	"github.com/quipulabs/centinela/internal/service"
	"github.com/quipulabs/centinela/internal/store/pg"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "ruta al YAML de configuración")
	flag.Parse()

	// .env (opcional), antes de leer la config
	_ = godotenv.Load(".env")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "centinela"})
	defer func() { _ = logger.Sync() }()
	lg := logger.Named("service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()

	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
		MaxConns:        int32(cfg.Storage.Postgres.MaxConns),
		MinConns:        int32(cfg.Storage.Postgres.MinConns),
		ConnMaxLifetime: config.Duration(cfg.Storage.Postgres.ConnMaxLifetime, 0),
		Location:        loc,
	})
	if err != nil {
		lg.Fatal("no se pudo abrir el storage", logger.Err(err))
	}
	defer store.Close()

	issuer := jwtx.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret), loc)
	issuer.AccessTTL = config.Duration(cfg.JWT.AccessTTL, issuer.AccessTTL)
	issuer.RefreshTTL = config.Duration(cfg.JWT.RefreshTTL, issuer.RefreshTTL)

	cacheTTL := config.Duration(cfg.Cache.Memory.DefaultTTL, 2*time.Minute)
	ch := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		DefaultTTL: cacheTTL,
		RedisAddr:  cfg.Cache.Redis.Addr,
		RedisDB:    cfg.Cache.Redis.DB,
	})

	agg := service.NewAggregator(store, ch, cacheTTL)
	router := httpserver.NewRouter(httpserver.Deps{
		Auth:        service.NewAuth(store, agg, issuer),
		Users:       service.NewUsers(store, agg),
		Roles:       service.NewRoles(store, agg),
		Permissions: service.NewPermissions(store, agg),
		Aggregator:  agg,
		Issuer:      issuer,
		Store:       store,
		Pool:        store.Pool(),
		Metrics:     cfg.Server.Metrics,
	})

	lg.Info("servidor escuchando en " + cfg.Server.Addr)
	if err := httpserver.Serve(ctx, cfg.Server.Addr, router, config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second)); err != nil {
		lg.Fatal("servidor http", logger.Err(err))
	}
}
