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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
export:
  chunk_size: 4
  fetch_timeout: "30s"
  json_merge: merge
storage:
  strategy: indexed
  root: /tmp/exports
  index_path: /tmp/exports/index.db
server:
  schedule: "0 * * * *"
logging:
  level: debug
  format: console
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Export.ChunkSize)
	assert.Equal(t, 30*time.Second, cfg.Export.FetchTimeout)
	assert.Equal(t, DefaultRenderTimeout, cfg.Export.RenderTimeout)
	assert.Equal(t, "merge", cfg.Export.JSONMerge)
	assert.Equal(t, "indexed", cfg.Storage.Strategy)
	assert.Equal(t, filepath.Join("/tmp/exports", ".scratch"), cfg.Storage.ScratchDir)
	assert.Equal(t, DefaultJSONDocument, cfg.Storage.JSONDocument)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Export.ChunkSize = -1 },
			wantErr: "chunk_size",
		},
		{
			name:    "unknown merge policy",
			mutate:  func(c *Config) { c.Export.JSONMerge = "last" },
			wantErr: "json_merge",
		},
		{
			name:    "indexed without index path",
			mutate:  func(c *Config) { c.Storage.Strategy = "indexed" },
			wantErr: "index_path",
		},
		{
			name:    "document name with separator",
			mutate:  func(c *Config) { c.Storage.JSONDocument = "a/b.json" },
			wantErr: "json_document",
		},
		{
			name:    "bad schedule",
			mutate:  func(c *Config) { c.Server.Schedule = "every tuesday" },
			wantErr: "server.schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("SCOUTEXPORT_EXPORT_CHUNK_SIZE", "3")
	t.Setenv("SCOUTEXPORT_EXPORT_FETCH_TIMEOUT", "2m")
	t.Setenv("SCOUTEXPORT_STORAGE_STRATEGY", "direct")
	t.Setenv("SCOUTEXPORT_SERVER_SCHEDULE_JSON", "true")

	path := writeConfig(t, "export:\n  chunk_size: 8\n")
	cfg, err := LoadConfigWithEnvOverrides(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Export.ChunkSize)
	assert.Equal(t, 2*time.Minute, cfg.Export.FetchTimeout)
	assert.Equal(t, "direct", cfg.Storage.Strategy)
	assert.True(t, cfg.Server.ScheduleJSON)
}

func TestLoadConfigWithEnvOverrides_MissingFileFallsBack(t *testing.T) {
	cfg, err := LoadConfigWithEnvOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkSize, cfg.Export.ChunkSize)
}
