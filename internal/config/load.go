package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCOUTEXPORT_"

// LoadConfig loads configuration from a YAML file, applies defaults and validates it.
// An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads the file (if it exists) and then applies
// SCOUTEXPORT_SECTION_FIELD environment overrides, which always win.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setInt(&cfg.Export.ChunkSize, "EXPORT_CHUNK_SIZE")
	setDuration(&cfg.Export.FetchTimeout, "EXPORT_FETCH_TIMEOUT")
	setDuration(&cfg.Export.RenderTimeout, "EXPORT_RENDER_TIMEOUT")
	setDuration(&cfg.Export.JSONRenderTimeout, "EXPORT_JSON_RENDER_TIMEOUT")
	setString(&cfg.Export.JSONMerge, "EXPORT_JSON_MERGE")

	setString(&cfg.Storage.Strategy, "STORAGE_STRATEGY")
	setString(&cfg.Storage.Root, "STORAGE_ROOT")
	setString(&cfg.Storage.ScratchDir, "STORAGE_SCRATCH_DIR")
	setString(&cfg.Storage.IndexPath, "STORAGE_INDEX_PATH")

	setString(&cfg.Source.DataDir, "SOURCE_DATA_DIR")
	setString(&cfg.Store.Path, "STORE_PATH")

	setString(&cfg.Server.ListenAddress, "SERVER_LISTEN_ADDRESS")
	setString(&cfg.Server.Schedule, "SERVER_SCHEDULE")
	if val := os.Getenv(EnvPrefix + "SERVER_SCHEDULE_JSON"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.ScheduleJSON = b
		}
	}

	setString(&cfg.Logging.Level, "LOGGING_LEVEL")
	setString(&cfg.Logging.Format, "LOGGING_FORMAT")
}

func setString(dst *string, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
