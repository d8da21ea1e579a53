package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "revenue-atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: "9090"
storage:
  db_path: /var/lib/atlas/metrics.db
warehouses:
  profiles_path: /etc/atlas/profiles
file_drop:
  profile: remits
  bucket: rcm-remits
  prefix: incoming/
schedules:
  poll_interval: 2m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/var/lib/atlas/metrics.db", cfg.Storage.DbPath)
	assert.Equal(t, "/etc/atlas/profiles", cfg.Warehouses.ProfilesPath)
	assert.Equal(t, "rcm-remits", cfg.FileDrop.Bucket)
	assert.Equal(t, "incoming/", cfg.FileDrop.Prefix)
	assert.Equal(t, 2*time.Minute, cfg.Schedules.PollInterval)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "revenue-atlas.db", cfg.Storage.DbPath)
	assert.Equal(t, "", cfg.FileDrop.Bucket)
	assert.Equal(t, 30*time.Second, cfg.Schedules.PollInterval)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"3000\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "revenue-atlas.db", cfg.Storage.DbPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REVENUE_ATLAS_SERVER_PORT", "9999")
	t.Setenv("REVENUE_ATLAS_FILE_DROP_BUCKET", "env-bucket")
	t.Setenv("SERVER_HOST", "10.0.0.5")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "env-bucket", cfg.FileDrop.Bucket)
	assert.Equal(t, "10.0.0.5", cfg.Server.Host)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "server: [not a map\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
