package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_ADDR", "POSTGRES_HOST", "MYSQL_HOST", "REDIS_HOST", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "SCRAPER_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Postgres.Enabled)
	assert.False(t, cfg.MySQL.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ikusa.example, https://staging.ikusa.example")
	t.Setenv("POSTGRES_HOST", "db.supabase.co")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("MYSQL_HOST", "mysql")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SCRAPER_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("SCRAPER_BATCH_CONCURRENCY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://ikusa.example", "https://staging.ikusa.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Postgres.Enabled)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.True(t, cfg.MySQL.Enabled)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 0.5, cfg.Scraper.RequestsPerSecond)
	assert.Equal(t, 4, cfg.Scraper.BatchConcurrency)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Addr: ":8080"},
		Scraper: ScraperConfig{Timeout: time.Second, BatchConcurrency: 1},
	}
	require.NoError(t, cfg.Validate())

	cfg.Scraper.RequestsPerSecond = -1
	assert.ErrorContains(t, cfg.Validate(), "SCRAPER_REQUESTS_PER_SECOND")

	cfg.Scraper.RequestsPerSecond = 1
	cfg.MySQL = MySQLConfig{Enabled: true}
	assert.ErrorContains(t, cfg.Validate(), "MYSQL_DATABASE")

	cfg.MySQL = MySQLConfig{}
	cfg.Server.Addr = ""
	assert.ErrorContains(t, cfg.Validate(), "SERVER_ADDR")
}
