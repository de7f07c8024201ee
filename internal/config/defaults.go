package config

import (
	"path/filepath"
	"time"
)

const (
	DefaultChunkSize         = 10
	DefaultFetchTimeout      = 10 * time.Minute
	DefaultRenderTimeout     = 10 * time.Minute
	DefaultJSONRenderTimeout = 5 * time.Minute
	DefaultJSONMerge         = "first"
	DefaultStrategy          = "auto"
	DefaultRoot              = "./exports"
	DefaultPublicDir         = "Download"
	DefaultFolder            = "Robot Scouter"
	DefaultJSONDocument      = "RadioScout.json"
	DefaultDataDir           = "./data"
	DefaultStorePath         = "scout-export.db"
	DefaultListenAddress     = ":8080"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Export.ChunkSize == 0 {
		cfg.Export.ChunkSize = DefaultChunkSize
	}
	if cfg.Export.FetchTimeout == 0 {
		cfg.Export.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Export.RenderTimeout == 0 {
		cfg.Export.RenderTimeout = DefaultRenderTimeout
	}
	if cfg.Export.JSONRenderTimeout == 0 {
		cfg.Export.JSONRenderTimeout = DefaultJSONRenderTimeout
	}
	if cfg.Export.JSONMerge == "" {
		cfg.Export.JSONMerge = DefaultJSONMerge
	}

	if cfg.Storage.Strategy == "" {
		cfg.Storage.Strategy = DefaultStrategy
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = DefaultRoot
	}
	if cfg.Storage.PublicDir == "" {
		cfg.Storage.PublicDir = DefaultPublicDir
	}
	if cfg.Storage.Folder == "" {
		cfg.Storage.Folder = DefaultFolder
	}
	if cfg.Storage.ScratchDir == "" {
		cfg.Storage.ScratchDir = filepath.Join(cfg.Storage.Root, ".scratch")
	}
	if cfg.Storage.JSONDocument == "" {
		cfg.Storage.JSONDocument = DefaultJSONDocument
	}

	if cfg.Source.DataDir == "" {
		cfg.Source.DataDir = DefaultDataDir
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}
