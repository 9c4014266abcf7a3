package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "STORE", "DATABASE_URL", "PG_HOST", "PG_PORT", "PG_DATABASE",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "ADMIN_KEY", "ADMIN_KEY_HASH",
		"REDIS_ADDR", "REDIS_DB", "HISTORY_QUEUE_NAME", "STATIC_DIR", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE", "memory")
	t.Setenv("ADMIN_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "./public", cfg.StaticDir)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadAssemblesDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_KEY", "secret")
	t.Setenv("PG_HOST", "db")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("PG_DATABASE", "ranked")
	t.Setenv("PORT", "8081")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/ranked", cfg.DatabaseURL)
	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_KEY", "secret")
	_, err := Load()
	assert.Error(t, err, "postgres store without a database")

	t.Setenv("STORE", "sqlite")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("STORE", "memory")
	t.Setenv("ADMIN_KEY", "")
	_, err = Load()
	assert.Error(t, err, "missing admin key")

	t.Setenv("ADMIN_KEY", "secret")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load()
	assert.Error(t, err)
}
