package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var allKeys = []string{
	"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "JWT_SECRET", "TOKEN_TTL", "BCRYPT_COST",
	"STORAGE_DRIVER", "DATABASE_URL", "REDIS_URL", "RELAY_WORKERS", "RELAY_QUEUE_SIZE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_DevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 4, cfg.RelayWorkers)
	assert.Equal(t, 1024, cfg.RelayQueueSize)
}

func TestLoadConfig_Production(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("DATABASE_URL", "postgres://db/notices")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("RELAY_WORKERS", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "postgres://db/notices", cfg.DatabaseDSN)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
	assert.Equal(t, 8, cfg.RelayWorkers)
}

func TestLoadConfig_MemoryDriverNeedsNoDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "Memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Empty(t, cfg.DatabaseDSN)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"port not a number":        {"PORT": "http"},
		"privileged port":          {"PORT": "80"},
		"secret missing in prod":   {"ENVIRONMENT": "production", "DATABASE_URL": "postgres://db"},
		"database missing in prod": {"ENVIRONMENT": "production", "JWT_SECRET": "s"},
		"bad ttl":                  {"TOKEN_TTL": "tomorrow"},
		"negative ttl":             {"TOKEN_TTL": "-1h"},
		"bcrypt too high":          {"BCRYPT_COST": "40"},
		"unknown driver":           {"STORAGE_DRIVER": "sqlite"},
		"zero workers":             {"RELAY_WORKERS": "0"},
		"bad queue size":           {"RELAY_QUEUE_SIZE": "many"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
