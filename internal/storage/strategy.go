package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"go-scout-export/internal/config"
	"go-scout-export/internal/logging"
	"go-scout-export/internal/model"
	"go-scout-export/internal/pipeline"
	"go-scout-export/pkg/utils"
)

// Strategy is a publisher that holds resources.
type Strategy interface {
	pipeline.Publisher
	io.Closer
}

// New selects the strategy for cfg. "auto" prefers the indexed strategy when
// an index path is configured.
func New(cfg config.StorageConfig, logger *zap.Logger) (Strategy, error) {
	switch cfg.Strategy {
	case "direct":
		return NewDirectStrategy(cfg, logger), nil
	case "indexed":
		return openIndexed(cfg, logger)
	case "auto", "":
		if cfg.IndexPath != "" {
			return openIndexed(cfg, logger)
		}
		return NewDirectStrategy(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage strategy %q", cfg.Strategy)
	}
}

func openIndexed(cfg config.StorageConfig, logger *zap.Logger) (Strategy, error) {
	cs, err := OpenContentStore(cfg.IndexPath, cfg.Root)
	if err != nil {
		return nil, err
	}
	return NewIndexedStrategy(cfg, cs, logger), nil
}

// layout is the directory layout shared by both strategies.
type layout struct {
	root      string
	publicDir string
	folder    string
	document  string
	scratch   *utils.OutputManager
}

func newLayout(cfg config.StorageConfig) layout {
	return layout{
		root:      cfg.Root,
		publicDir: cfg.PublicDir,
		folder:    cfg.Folder,
		document:  cfg.JSONDocument,
		scratch:   utils.NewOutputManager(cfg.ScratchDir),
	}
}

// prepare creates the scratch area of a run; artifacts are published under
// <public dir>/<folder>/Export_<millis>.
func (l layout) prepare(startedAt time.Time) (model.Workspace, error) {
	dir, err := l.scratch.CreateExportDir(startedAt)
	if err != nil {
		return model.Workspace{}, err
	}
	rel := path.Join(l.publicDir, l.folder, utils.ExportFolderName(startedAt))
	return model.Workspace{
		Dir:          dir,
		RelativePath: rel,
		Destination:  filepath.Join(l.root, filepath.FromSlash(rel)),
	}, nil
}

func (l layout) documentLocation() model.Location {
	return model.Location{
		RelativePath: path.Join(l.publicDir, l.folder),
		DisplayName:  l.document,
		MimeType:     pipeline.JSONMimeType,
	}
}

func (l layout) cleanup(ws model.Workspace) error {
	if ws.Dir == "" {
		return nil
	}
	return l.scratch.RemoveExportDir(ws.Dir)
}

// ------------------- Direct -------------------

// DirectStrategy writes artifacts straight into the public directory tree.
type DirectStrategy struct {
	layout
	logger *zap.Logger
}

// NewDirectStrategy creates a DirectStrategy.
func NewDirectStrategy(cfg config.StorageConfig, logger *zap.Logger) *DirectStrategy {
	return &DirectStrategy{layout: newLayout(cfg), logger: logging.OrNop(logger)}
}

func (d *DirectStrategy) Name() string { return "direct" }

func (d *DirectStrategy) Prepare(startedAt time.Time) (model.Workspace, error) {
	return d.prepare(startedAt)
}

func (d *DirectStrategy) DocumentLocation() model.Location { return d.documentLocation() }

func (d *DirectStrategy) Cleanup(ws model.Workspace) error { return d.cleanup(ws) }

// Publish copies the artifact to its target, replacing any existing file.
func (d *DirectStrategy) Publish(ctx context.Context, a model.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(a.File)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	return d.replace(a.Location, f)
}

// PublishDocument replaces the consolidated document.
func (d *DirectStrategy) PublishDocument(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.replace(d.documentLocation(), bytes.NewReader(data))
}

func (d *DirectStrategy) replace(loc model.Location, r io.Reader) (string, error) {
	if filepath.Base(loc.DisplayName) != loc.DisplayName {
		return "", fmt.Errorf("invalid display name %q", loc.DisplayName)
	}
	target := filepath.Join(d.root, filepath.FromSlash(loc.RelativePath), loc.DisplayName)

	// Last writer wins: the previous file is gone before the new one lands.
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to remove existing %s: %w", target, err)
	}
	if err := writeFileAtomic(target, r); err != nil {
		return "", err
	}

	d.logger.Debug("published", zap.String("path", target))
	return target, nil
}

func (d *DirectStrategy) Close() error { return nil }

// ------------------- Indexed -------------------

// IndexedStrategy commits artifacts through a ContentStore.
type IndexedStrategy struct {
	layout
	store  *ContentStore
	logger *zap.Logger
}

// NewIndexedStrategy creates an IndexedStrategy that owns store.
func NewIndexedStrategy(cfg config.StorageConfig, store *ContentStore, logger *zap.Logger) *IndexedStrategy {
	s := &IndexedStrategy{layout: newLayout(cfg), store: store, logger: logging.OrNop(logger)}

	if pending, err := store.Pending(context.Background()); err != nil {
		s.logger.Warn("failed to list pending entries", zap.Error(err))
	} else if len(pending) > 0 {
		s.logger.Warn("index has entries left pending by an interrupted export", zap.Int("entries", len(pending)))
	}
	return s
}

func (s *IndexedStrategy) Name() string { return "indexed" }

func (s *IndexedStrategy) Prepare(startedAt time.Time) (model.Workspace, error) {
	return s.prepare(startedAt)
}

func (s *IndexedStrategy) DocumentLocation() model.Location { return s.documentLocation() }

func (s *IndexedStrategy) Cleanup(ws model.Workspace) error { return s.cleanup(ws) }

// Store exposes the content index.
func (s *IndexedStrategy) Store() *ContentStore { return s.store }

// Publish finds or inserts the entry for the artifact, copies the scratch
// bytes into it and marks it ready.
func (s *IndexedStrategy) Publish(ctx context.Context, a model.Artifact) (string, error) {
	f, err := os.Open(a.File)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	return s.commit(ctx, a.Location, f)
}

// PublishDocument replaces the consolidated document entry.
func (s *IndexedStrategy) PublishDocument(ctx context.Context, data []byte) (string, error) {
	return s.commit(ctx, s.documentLocation(), bytes.NewReader(data))
}

// commit is query-then-insert and not atomic: two concurrent commits of the
// same name may both insert. Runs publish sequentially, so only separate
// runs can race.
func (s *IndexedStrategy) commit(ctx context.Context, loc model.Location, r io.Reader) (string, error) {
	entry, err := s.store.Find(ctx, loc.RelativePath, loc.DisplayName)
	if err != nil {
		return "", err
	}
	if entry == nil {
		if entry, err = s.store.Insert(ctx, loc); err != nil {
			return "", err
		}
	}

	if err := s.store.Write(ctx, entry, r); err != nil {
		return "", err
	}
	if err := s.store.MarkReady(ctx, entry.ID); err != nil {
		return "", err
	}

	target := s.store.Path(entry)
	s.logger.Debug("published", zap.Int64("entry", entry.ID), zap.String("path", target))
	return target, nil
}

func (s *IndexedStrategy) Close() error { return s.store.Close() }
