package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration and joins every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Export.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("export.chunk_size must be at least 1, got %d", cfg.Export.ChunkSize))
	}
	if cfg.Export.FetchTimeout < 0 {
		errs = append(errs, fmt.Errorf("export.fetch_timeout must not be negative"))
	}
	if cfg.Export.RenderTimeout < 0 || cfg.Export.JSONRenderTimeout < 0 {
		errs = append(errs, fmt.Errorf("export render timeouts must not be negative"))
	}
	switch cfg.Export.JSONMerge {
	case "first", "merge":
	default:
		errs = append(errs, fmt.Errorf("export.json_merge must be \"first\" or \"merge\", got %q", cfg.Export.JSONMerge))
	}

	switch cfg.Storage.Strategy {
	case "auto", "direct":
	case "indexed":
		if cfg.Storage.IndexPath == "" {
			errs = append(errs, fmt.Errorf("storage.index_path is required for the indexed strategy"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.strategy must be auto, indexed or direct, got %q", cfg.Storage.Strategy))
	}
	if strings.ContainsAny(cfg.Storage.JSONDocument, `/\`) {
		errs = append(errs, fmt.Errorf("storage.json_document must be a file name, got %q", cfg.Storage.JSONDocument))
	}

	if cfg.Server.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Server.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("server.schedule: %w", err))
		}
	}

	switch cfg.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format))
	}

	return errors.Join(errs...)
}
