// Package cache define una abstracción mínima de cache con backends
// intercambiables: memoria (go-cache) para una sola instancia, redis para
// despliegues con varias réplicas.
package cache

import (
	"strings"
	"time"

	"github.com/quipulabs/centinela/internal/cache/memory"
	"github.com/quipulabs/centinela/internal/cache/redis"
)

// Cache es el contrato común de los backends.
type Cache interface {
	Get(k string) ([]byte, bool)
	Set(k string, v []byte, ttl time.Duration)
	Delete(k string)
}

// Config selecciona y configura el backend.
type Config struct {
	Kind       string // "memory" | "redis"
	DefaultTTL time.Duration
	RedisAddr  string
	RedisDB    int
}

// New construye el backend según cfg.Kind. Default: memoria.
func New(cfg Config) Cache {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	if strings.EqualFold(cfg.Kind, "redis") && cfg.RedisAddr != "" {
		return redis.New(cfg.RedisAddr, cfg.RedisDB)
	}
	return memory.New(ttl)
}
