// Package source reads scouting data from a directory of JSONC files.
//
// Layout:
//
//	<dir>/teams.json           [{"id": "...", "number": 254, "name": "..."}]
//	<dir>/templates.json       [{"id": "...", "name": "..." | null}]
//	<dir>/scouts/<team id>.json [{"id": "...", "templateId": "...", ...}]
//
// Comments and trailing commas are allowed. A team without a scouts file has
// no scouts and a missing templates file means no user templates.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"go-scout-export/internal/model"
	"go-scout-export/pkg/utils"
)

// Dir reads teams, templates and scouts from a data directory.
type Dir struct {
	Path string
}

// NewDir returns a source rooted at path.
func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

// ListTeams returns every team in teams.json.
func (d *Dir) ListTeams(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	if err := readJSONC(ctx, filepath.Join(d.Path, "teams.json"), &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// QueryGroupNames returns the user-defined templates.
func (d *Dir) QueryGroupNames(ctx context.Context) ([]model.Template, error) {
	var templates []model.Template
	err := readJSONC(ctx, filepath.Join(d.Path, "templates.json"), &templates)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return templates, err
}

// FetchRecords returns the scouts of team. Scouts whose teamId is empty are
// attributed to team.
func (d *Dir) FetchRecords(ctx context.Context, team model.Team) ([]model.Scout, error) {
	var scouts []model.Scout
	path := filepath.Join(d.Path, "scouts", utils.SanitizeFileName(team.ID)+".json")
	err := readJSONC(ctx, path, &scouts)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range scouts {
		if scouts[i].TeamID == "" {
			scouts[i].TeamID = team.ID
		}
	}
	return scouts, nil
}

func readJSONC(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := json.Unmarshal(standardized, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
