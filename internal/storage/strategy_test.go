package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-scout-export/internal/config"
	"go-scout-export/internal/model"
)

func testStorageConfig(t *testing.T, strategy string) config.StorageConfig {
	t.Helper()
	root := t.TempDir()
	cfg := config.StorageConfig{
		Strategy:     strategy,
		Root:         root,
		PublicDir:    "Download",
		Folder:       "Robot Scouter",
		ScratchDir:   filepath.Join(root, ".scratch"),
		JSONDocument: "RadioScout.json",
	}
	if strategy == "indexed" {
		cfg.IndexPath = filepath.Join(root, "index.db")
	}
	return cfg
}

func newStrategy(t *testing.T, strategy string) Strategy {
	t.Helper()
	s, err := New(testStorageConfig(t, strategy), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// writeArtifact renders a fake artifact into the workspace.
func writeArtifact(t *testing.T, ws model.Workspace, name, content string) model.Artifact {
	t.Helper()
	path := filepath.Join(ws.Dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return model.Artifact{
		File: path,
		Location: model.Location{
			RelativePath: ws.RelativePath,
			DisplayName:  name,
			MimeType:     "text/csv",
		},
	}
}

func TestNew_SelectsStrategy(t *testing.T) {
	assert.IsType(t, &DirectStrategy{}, newStrategy(t, "direct"))
	assert.IsType(t, &IndexedStrategy{}, newStrategy(t, "indexed"))

	auto := testStorageConfig(t, "auto")
	s, err := New(auto, nil)
	require.NoError(t, err)
	assert.Equal(t, "direct", s.Name())

	auto.IndexPath = filepath.Join(auto.Root, "index.db")
	s, err = New(auto, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "indexed", s.Name())

	_, err = New(config.StorageConfig{Strategy: "cloud"}, nil)
	assert.Error(t, err)
}

func TestStrategies_PublishAndCleanup(t *testing.T) {
	for _, name := range []string{"direct", "indexed"} {
		t.Run(name, func(t *testing.T) {
			s := newStrategy(t, name)
			ctx := context.Background()

			started := time.UnixMilli(1700000000000)
			ws, err := s.Prepare(started)
			require.NoError(t, err)
			assert.Equal(t, "Download/Robot Scouter/Export_1700000000000", ws.RelativePath)
			assert.DirExists(t, ws.Dir)

			a := writeArtifact(t, ws, "Match Scout.csv", "team,scout\n254,Q1\n")
			target, err := s.Publish(ctx, a)
			require.NoError(t, err)

			data, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, "team,scout\n254,Q1\n", string(data))
			assert.Equal(t, filepath.Join(ws.Destination, "Match Scout.csv"), target)

			require.NoError(t, s.Cleanup(ws))
			assert.NoDirExists(t, ws.Dir)
			assert.FileExists(t, target)
		})
	}
}

func TestStrategies_DocumentIsReplaced(t *testing.T) {
	for _, name := range []string{"direct", "indexed"} {
		t.Run(name, func(t *testing.T) {
			s := newStrategy(t, name)
			ctx := context.Background()

			first, err := s.PublishDocument(ctx, []byte(`["old export with more bytes"]`))
			require.NoError(t, err)
			second, err := s.PublishDocument(ctx, []byte(`["new"]`))
			require.NoError(t, err)
			assert.Equal(t, first, second)

			data, err := os.ReadFile(second)
			require.NoError(t, err)
			assert.Equal(t, `["new"]`, string(data))

			loc := s.DocumentLocation()
			assert.Equal(t, "Download/Robot Scouter", loc.RelativePath)
			assert.Equal(t, "RadioScout.json", loc.DisplayName)
		})
	}
}

func TestStrategies_RejectPathInDisplayName(t *testing.T) {
	for _, name := range []string{"direct", "indexed"} {
		t.Run(name, func(t *testing.T) {
			s := newStrategy(t, name)
			ws, err := s.Prepare(time.Now())
			require.NoError(t, err)

			a := writeArtifact(t, ws, "ok.csv", "x")
			a.Location.DisplayName = "../escape.csv"
			_, err = s.Publish(context.Background(), a)
			assert.Error(t, err)
		})
	}
}

func TestIndexedStrategy_ReusesExistingEntry(t *testing.T) {
	s := newStrategy(t, "indexed").(*IndexedStrategy)
	ctx := context.Background()

	_, err := s.PublishDocument(ctx, []byte("1"))
	require.NoError(t, err)
	_, err = s.PublishDocument(ctx, []byte("22"))
	require.NoError(t, err)

	entries, err := s.Store().Query(ctx, "Download/Robot Scouter")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "RadioScout.json", entries[0].DisplayName)
	assert.Equal(t, "application/json", entries[0].MimeType)
	assert.False(t, entries[0].Pending)
	assert.EqualValues(t, 2, entries[0].Size)
}

func TestDirectStrategy_CleanupWithoutWorkspace(t *testing.T) {
	s := newStrategy(t, "direct")
	assert.NoError(t, s.Cleanup(model.Workspace{}))
}
