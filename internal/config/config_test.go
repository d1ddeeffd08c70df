package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Finalization.RepairInterval)
	assert.Equal(t, 50, cfg.Finalization.RepairBatchLimit)
	assert.Empty(t, cfg.Storage.SeedFile)
}

func TestLoad_MemorySeedFile(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("MEMORY_SEED_FILE", "/tmp/seed.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/seed.json", cfg.Storage.SeedFile)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("IDEMPOTENCY_TTL", "tomorrow")

	_, err := Load()
	assert.ErrorContains(t, err, "IDEMPOTENCY_TTL")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database:     DatabaseConfig{Password: "pw", MaxConns: 10},
			JWT:          JWTConfig{Secret: "secret"},
			Storage:      StorageConfig{Driver: StorageDriverPostgres},
			Finalization: FinalizationConfig{RepairInterval: time.Minute, RepairBatchLimit: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "postgres needs password", mutate: func(c *Config) { c.Database.Password = "" }, wantErr: "DB_PASSWORD"},
		{name: "memory needs no password", mutate: func(c *Config) { c.Database.Password = ""; c.Storage.Driver = StorageDriverMemory }},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: "STORAGE_DRIVER"},
		{name: "missing secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: "JWT_SECRET_KEY"},
		{name: "pool bounds", mutate: func(c *Config) { c.Database.MinConns = 20 }, wantErr: "DB_MIN_CONNS"},
		{name: "repair batch", mutate: func(c *Config) { c.Finalization.RepairBatchLimit = 0 }, wantErr: "FINALIZATION_REPAIR_BATCH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{App: AppConfig{LogLevel: "DEBUG"}}
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	cfg.App.LogLevel = "nonsense"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
