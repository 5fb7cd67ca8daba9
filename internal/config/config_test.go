package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "no-existe.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.Cache.Kind)
	assert.Equal(t, "centinela", c.JWT.Issuer)
	assert.Equal(t, "15m", c.JWT.AccessTTL)
	assert.Equal(t, "America/Lima", c.Time.Zone)
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
server:
  addr: ":9000"
jwt:
  issuer: otro
cache:
  kind: redis
  redis:
    addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("JWT_SECRET", "s3creto")

	c, err := Load(path)
	require.NoError(t, err)

	// env pisa yaml; yaml pisa defaults
	assert.Equal(t, ":9999", c.Server.Addr)
	assert.Equal(t, "otro", c.JWT.Issuer)
	assert.Equal(t, "redis", c.Cache.Kind)
	assert.Equal(t, "s3creto", c.JWT.Secret)
}

func TestValidate(t *testing.T) {
	var c Config
	require.Error(t, c.Validate())

	c.Storage.DSN = "postgres://localhost/centinela"
	require.Error(t, c.Validate())

	c.JWT.Secret = "s3creto"
	require.NoError(t, c.Validate())
}

func TestDurationFallback(t *testing.T) {
	assert.Equal(t, 15*time.Minute, Duration("15m", time.Hour))
	assert.Equal(t, time.Hour, Duration("no-es-duracion", time.Hour))
	assert.Equal(t, time.Hour, Duration("", time.Hour))
}
