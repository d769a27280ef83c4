package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, 10, cfg.App.ShutdownTimeoutSeconds)
	assert.Equal(t, StoreDriverJSON, cfg.Store.Driver)
	assert.Equal(t, "db.json", cfg.Store.JSONPath)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 60, cfg.Redis.CacheTTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "user-admin-service", cfg.Logger.ServiceName)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "HTTP_PORT=9090\nSTORE_DRIVER=SQLite\nSQLITE_PATH=/tmp/u.db\nREDIS_CACHE_TTL=5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("REDIS_CACHE_TTL", "30")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.HTTPPort)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/u.db", cfg.Store.SQLitePath)
	assert.Equal(t, 30, cfg.Redis.CacheTTL)
}

func TestLoadConfig_ProductionLoggerDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
}

func validConfig() *Config {
	return &Config{
		App:   AppConfig{HTTPPort: "8080", ShutdownTimeoutSeconds: 5},
		Store: StoreConfig{Driver: StoreDriverJSON, JSONPath: "db.json"},
		DB:    DatabaseConfig{Host: "localhost", Name: "users", MaxOpenConns: 10, MaxIdleConns: 2},
		Redis: RedisConfig{Host: "localhost", Port: "6379", CacheTTL: 60},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			BurstCapacity:     20,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }, wantErr: "unsupported STORE_DRIVER"},
		{name: "json without path", mutate: func(c *Config) { c.Store.JSONPath = "" }, wantErr: "STORE_JSON_PATH"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Store.Driver = StoreDriverSQLite }, wantErr: "SQLITE_PATH"},
		{name: "postgres ok", mutate: func(c *Config) { c.Store.Driver = StoreDriverPostgres }},
		{name: "postgres bad pool", mutate: func(c *Config) {
			c.Store.Driver = StoreDriverPostgres
			c.DB.MaxOpenConns = 0
		}, wantErr: "pool sizes"},
		{name: "missing port", mutate: func(c *Config) { c.App.HTTPPort = "" }, wantErr: "HTTP_PORT"},
		{name: "redis zero ttl", mutate: func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.CacheTTL = 0
		}, wantErr: "REDIS_CACHE_TTL"},
		{name: "rate limit without redis", mutate: func(c *Config) { c.RateLimit.Enabled = true }, wantErr: "requires REDIS_ENABLED"},
		{name: "rate limit with redis", mutate: func(c *Config) {
			c.Redis.Enabled = true
			c.RateLimit.Enabled = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable", db.DSN())
}
