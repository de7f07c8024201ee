package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// OutputManager handles per-export output directory naming and lifetime
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// ExportFolderName names the folder of an export started at t, e.g. Export_1700000000000
func ExportFolderName(t time.Time) string {
	return "Export_" + strconv.FormatInt(t.UnixMilli(), 10)
}

// CreateExportDir creates the directory for an export started at t
func (om *OutputManager) CreateExportDir(t time.Time) (string, error) {
	dir := filepath.Join(om.BaseOutputDir, ExportFolderName(t))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	return dir, nil
}

// RemoveExportDir deletes an export directory and everything below it. Only
// directories inside the base directory are removed.
func (om *OutputManager) RemoveExportDir(dir string) error {
	rel, err := filepath.Rel(om.BaseOutputDir, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %q outside %q", dir, om.BaseOutputDir)
	}
	return os.RemoveAll(dir)
}
