// Package config loads the exporter configuration from YAML.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Storage StorageConfig `yaml:"storage"`
	Source  SourceConfig  `yaml:"source"`
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig tunes the export pipeline.
type ExportConfig struct {
	// ChunkSize is how many teams are fetched concurrently before the next chunk starts.
	ChunkSize int `yaml:"chunk_size"`

	// FetchTimeout bounds the whole multi-chunk fetch in spreadsheet mode.
	// JSON mode always fetches without a timeout.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// RenderTimeout bounds the spreadsheet render fan-out.
	RenderTimeout time.Duration `yaml:"render_timeout"`

	// JSONRenderTimeout bounds the JSON render fan-out.
	JSONRenderTimeout time.Duration `yaml:"json_render_timeout"`

	// JSONMerge is "first" or "merge".
	JSONMerge string `yaml:"json_merge"`
}

// StorageConfig configures where artifacts are published.
type StorageConfig struct {
	// Strategy is "auto", "indexed" or "direct".
	Strategy string `yaml:"strategy"`

	// Root is the storage root every relative location resolves against.
	Root string `yaml:"root"`

	// PublicDir is the shared directory under Root, e.g. "Download".
	PublicDir string `yaml:"public_dir"`

	// Folder is the application folder under PublicDir.
	Folder string `yaml:"folder"`

	// ScratchDir holds per-run scratch areas. Defaults to <root>/.scratch.
	ScratchDir string `yaml:"scratch_dir"`

	// IndexPath is the content index database used by the indexed strategy.
	IndexPath string `yaml:"index_path"`

	// JSONDocument is the well-known consolidated document name.
	JSONDocument string `yaml:"json_document"`
}

// SourceConfig points at the scouting data.
type SourceConfig struct {
	DataDir string `yaml:"data_dir"`
}

// StoreConfig configures the job database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP API and scheduled exports.
type ServerConfig struct {
	ListenAddress string `yaml:"listen_address"`

	// Schedule is a cron expression; empty disables scheduled exports.
	Schedule string `yaml:"schedule"`

	// ScheduleJSON exports the consolidated document on schedule instead of spreadsheets.
	ScheduleJSON bool `yaml:"schedule_json"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
