package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-scout-export/internal/model"
)

func newTestContentStore(t *testing.T) *ContentStore {
	t.Helper()
	root := t.TempDir()
	cs, err := OpenContentStore(filepath.Join(root, "index", "content.db"), root)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func TestContentStore_InsertWriteMarkReady(t *testing.T) {
	cs := newTestContentStore(t)
	ctx := context.Background()

	loc := model.Location{RelativePath: "Download/Robot Scouter", DisplayName: "a.csv", MimeType: "text/csv"}
	entry, err := cs.Insert(ctx, loc)
	require.NoError(t, err)
	assert.True(t, entry.Pending)

	pending, err := cs.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entry.ID, pending[0].ID)

	require.NoError(t, cs.Write(ctx, entry, strings.NewReader("hello")))
	require.NoError(t, cs.MarkReady(ctx, entry.ID))

	data, err := os.ReadFile(cs.Path(entry))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	found, err := cs.Find(ctx, loc.RelativePath, "a.csv")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.Pending)
	assert.EqualValues(t, 5, found.Size)

	pending, err = cs.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestContentStore_FindMissing(t *testing.T) {
	cs := newTestContentStore(t)
	found, err := cs.Find(context.Background(), "Download", "nothing.json")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestContentStore_MarkReadyUnknownEntry(t *testing.T) {
	cs := newTestContentStore(t)
	assert.Error(t, cs.MarkReady(context.Background(), 42))
}

func TestOpenContentStore_RequiresPath(t *testing.T) {
	_, err := OpenContentStore("", t.TempDir())
	assert.Error(t, err)
}
