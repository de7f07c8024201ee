package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"go-scout-export/internal/config"
	"go-scout-export/internal/logging"
	"go-scout-export/internal/model"
	"go-scout-export/internal/pipeline"
	"go-scout-export/internal/source"
	"go-scout-export/internal/storage"
	"go-scout-export/internal/store"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	jobs     *store.Store
	storage  storage.Strategy
	source   *source.Dir
	service  *pipeline.Service
}

func newApp(cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	jobs, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open job store: %w", err)
	}

	strategy, err := storage.New(cfg.Storage, logger)
	if err != nil {
		jobs.Close()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := pipeline.NewMetrics(registry)

	src := source.NewDir(cfg.Source.DataDir)
	orchestrator := &pipeline.Orchestrator{
		Fetcher:   &pipeline.ChunkedFetcher{Source: src, Logger: logger, Metrics: metrics},
		Names:     &pipeline.NameResolver{Source: src, Logger: logger},
		Sheets:    pipeline.CSVRenderer{},
		JSON:      pipeline.JSONExporter{},
		Publisher: strategy,
		Merge:     model.MergePolicy(cfg.Export.JSONMerge),
		Logger:    logger,
		Metrics:   metrics,
	}

	service := &pipeline.Service{
		Orchestrator: orchestrator,
		Teams:        src,
		Recorder:     jobs,
		Options: pipeline.Options{
			ChunkSize:         cfg.Export.ChunkSize,
			FetchTimeout:      cfg.Export.FetchTimeout,
			RenderTimeout:     cfg.Export.RenderTimeout,
			JSONRenderTimeout: cfg.Export.JSONRenderTimeout,
		},
		NewSink: func(job *model.ExportJob) pipeline.ProgressSink {
			log := logger.With(zap.String("job_id", job.ID))
			return pipeline.MultiSink{pipeline.NewLogSink(log), store.NewJobSink(jobs, job.ID, log)}
		},
		Logger: logger,
	}

	logger.Info("export service ready",
		zap.String("strategy", strategy.Name()),
		zap.String("data_dir", cfg.Source.DataDir),
		zap.String("storage_root", cfg.Storage.Root))

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		jobs:     jobs,
		storage:  strategy,
		source:   src,
		service:  service,
	}, nil
}

// Close stops running jobs and releases every resource.
func (a *app) Close() error {
	a.service.Close()
	err := errors.Join(a.storage.Close(), a.jobs.Close())
	a.logger.Sync()
	return err
}
