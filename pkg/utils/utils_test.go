package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Minute, ParseDuration("2m", time.Second))
	assert.Equal(t, time.Second, ParseDuration("", time.Second))
	assert.Equal(t, time.Second, ParseDuration("soon", time.Second))
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"Match Scout":   "Match Scout",
		"a/b\\c":        "a_b_c",
		"what?":         "what_",
		"  ..hidden.. ": "hidden",
		"":              "_",
		"tab\there":     "tabhere",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFileName(in), "input %q", in)
	}
}

func TestOutputManager_CreateAndRemove(t *testing.T) {
	base := t.TempDir()
	om := NewOutputManager(base)

	started := time.UnixMilli(1700000000123)
	dir, err := om.CreateExportDir(started)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "Export_1700000000123"), dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0o644))

	require.NoError(t, om.RemoveExportDir(dir))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestOutputManager_RemoveRefusesOutsideBase(t *testing.T) {
	om := NewOutputManager(t.TempDir())
	assert.Error(t, om.RemoveExportDir(t.TempDir()))
	assert.Error(t, om.RemoveExportDir(om.BaseOutputDir))
}
