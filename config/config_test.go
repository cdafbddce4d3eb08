package config

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_PATH", "TABLES_PATH", "HISTORY_RETENTION", "CACHE_TTL", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "payroll.db", cfg.DatabasePath)
	assert.Empty(t, cfg.TablesPath)
	assert.Equal(t, 30*24*time.Hour, cfg.HistoryRetention)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Len(t, cfg.AllowedOrigins, 2)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("TABLES_PATH", "tables/2026.yaml")
	t.Setenv("HISTORY_RETENTION", "0")
	t.Setenv("PRUNE_INTERVAL", "15m")
	t.Setenv("CACHE_TTL", "nonsense")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DatabasePath)
	assert.Equal(t, "tables/2026.yaml", cfg.TablesPath)
	assert.Zero(t, cfg.HistoryRetention)
	assert.Equal(t, 15*time.Minute, cfg.PruneInterval)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestApplyLogLevel(t *testing.T) {
	defer logrus.SetLevel(logrus.GetLevel())

	ApplyLogLevel("DEBUG")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	ApplyLogLevel("loud")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestLoad_NonPositivePruneInterval(t *testing.T) {
	for _, value := range []string{"0", "-5m"} {
		t.Setenv("PRUNE_INTERVAL", value)

		cfg := Load()

		assert.Equal(t, time.Hour, cfg.PruneInterval, "PRUNE_INTERVAL=%s", value)
	}
}
