package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shalev396/Call-Filter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, DriverJSONFile, cfg.Storage.Driver)
	assert.Equal(t, "data/accounts.json", cfg.Storage.Path)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, domain.IsraelPolicy{}, cfg.Policy())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CALLFILTER_REDIS_PASSWORD", "s3cret")
	path := writeFile(t, `
http:
  addr: ":9000"
  rate_limit_rps: 5
storage:
  driver: sqlite
  path: `+filepath.Join(dir, "db", "cf.db")+`
redis:
  address: localhost:6379
  password: ${CALLFILTER_REDIS_PASSWORD}
  ttl_seconds: 30
timezone:
  default: UTC+1
monitoring:
  prometheus_enabled: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 6, cfg.HTTP.RateLimitBurst)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 30*time.Second, cfg.RedisTTL())
	assert.Equal(t, domain.FixedOffsetPolicy(1), cfg.Policy())
	assert.Equal(t, ":9090", cfg.Monitoring.PrometheusAddr)

	require.NoError(t, cfg.EnsureStorageDir())
	assert.DirExists(t, filepath.Join(dir, "db"))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"driver", "storage:\n  driver: postgres\n"},
		{"timezone", "timezone:\n  default: UTC+99\n"},
		{"yaml", "http: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, os.IsNotExist(err))
}
