// Package config reads service settings from the environment. A .env file in
// the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port        string
	Store       string
	DatabaseURL string

	// AdminKey is the plaintext admin secret; AdminKeyHash an argon2id
	// encoded hash. The hash wins when both are set.
	AdminKey     string
	AdminKeyHash string

	// RedisAddr enables the match history feed when non-empty.
	RedisAddr    string
	RedisDB      int
	HistoryQueue string

	StaticDir string
	LogLevel  logrus.Level
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		Store:        getEnv("STORE", StorePostgres),
		DatabaseURL:  databaseURL(),
		AdminKey:     os.Getenv("ADMIN_KEY"),
		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		HistoryQueue: getEnv("HISTORY_QUEUE_NAME", ""),
		StaticDir:    getEnv("STATIC_DIR", "./public"),
		LogLevel:     level,
	}

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL or PG_HOST is required for the postgres store")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	if cfg.AdminKey == "" && cfg.AdminKeyHash == "" {
		return nil, fmt.Errorf("ADMIN_KEY or ADMIN_KEY_HASH is required")
	}
	return cfg, nil
}

// Addr is the listen address for net/http.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the
// individual POSTGRES_* / PG_* variables.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("PG_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
