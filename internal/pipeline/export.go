package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-scout-export/internal/model"
	"go-scout-export/pkg/utils"
)

// SheetRenderer renders one template's scouts into spreadsheet files inside
// the workspace. An empty result means there was nothing to write.
type SheetRenderer interface {
	Render(ctx context.Context, group model.Group, ws model.Workspace, name string) ([]model.Artifact, error)
}

// JSONRenderer renders one template's scouts into a JSON-serialisable value.
// A nil value means there was nothing to write.
type JSONRenderer interface {
	RenderJSON(ctx context.Context, group model.Group, name string) (any, error)
}

// ------------------- CSV -------------------

// CSVMimeType is the mime type of CSVRenderer artifacts.
const CSVMimeType = "text/csv"

// CSVRenderer writes one CSV file per template: a row per scout, a column per
// metric name in first-seen order.
type CSVRenderer struct{}

// Render implements SheetRenderer. An empty name falls back to the team numbers.
func (CSVRenderer) Render(ctx context.Context, group model.Group, ws model.Workspace, name string) ([]model.Artifact, error) {
	if group.Count() == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileName := utils.SanitizeFileName(sheetTitle(group, name)) + ".csv"
	dir := filepath.Join(ws.Dir, utils.SanitizeFileName(group.ID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	path := filepath.Join(dir, fileName)

	if err := writeCSV(path, group); err != nil {
		return nil, err
	}

	return []model.Artifact{{
		File: path,
		Location: model.Location{
			RelativePath: ws.RelativePath,
			DisplayName:  fileName,
			MimeType:     CSVMimeType,
		},
	}}, nil
}

func sheetTitle(group model.Group, name string) string {
	if name != "" {
		return name
	}
	numbers := make([]string, len(group.Teams))
	for i, tr := range group.Teams {
		numbers[i] = tr.Team.String()
	}
	return strings.Join(numbers, ", ")
}

// uniqueDisplayNames renames artifacts whose destination repeats an earlier
// one of the same run by appending " (n)" before the extension. Names are
// compared case-insensitively and a generated name never takes one that
// some other artifact already carries.
func uniqueDisplayNames(rendered [][]model.Artifact) {
	key := func(loc model.Location) string {
		return loc.RelativePath + "\x00" + strings.ToLower(loc.DisplayName)
	}

	taken := make(map[string]bool)
	for _, artifacts := range rendered {
		for _, a := range artifacts {
			taken[key(a.Location)] = true
		}
	}

	seen := make(map[string]bool)
	for i := range rendered {
		for j := range rendered[i] {
			loc := &rendered[i][j].Location
			if k := key(*loc); !seen[k] {
				seen[k] = true
				continue
			}

			ext := filepath.Ext(loc.DisplayName)
			base := strings.TrimSuffix(loc.DisplayName, ext)
			for n := 1; ; n++ {
				candidate := *loc
				candidate.DisplayName = fmt.Sprintf("%s (%d)%s", base, n, ext)
				if k := key(candidate); !taken[k] {
					taken[k] = true
					seen[k] = true
					loc.DisplayName = candidate.DisplayName
					break
				}
			}
		}
	}
}

func writeCSV(path string, group model.Group) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	var columns []string
	seen := make(map[string]bool)
	for _, tr := range group.Teams {
		for _, scout := range tr.Scouts {
			for _, m := range scout.Metrics {
				if !seen[m.Name] {
					seen[m.Name] = true
					columns = append(columns, m.Name)
				}
			}
		}
	}

	writer := csv.NewWriter(file)
	header := append([]string{"team", "scout", "timestamp"}, columns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, tr := range group.Teams {
		for _, scout := range tr.Scouts {
			values := make(map[string]string, len(scout.Metrics))
			for _, m := range scout.Metrics {
				if m.Value != nil {
					values[m.Name] = fmt.Sprintf("%v", m.Value)
				}
			}

			row := []string{tr.Team.String(), scout.Name, formatTimestamp(scout.Timestamp)}
			for _, col := range columns {
				row = append(row, values[col])
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ------------------- JSON -------------------

// JSONMimeType is the mime type of the consolidated document.
const JSONMimeType = "application/json"

// TeamExport is one team's entry in the consolidated document.
type TeamExport struct {
	Team     model.Team    `json:"team"`
	Template *string       `json:"template"`
	Scouts   []model.Scout `json:"scouts"`
}

// JSONExporter renders a template as an array of TeamExport values.
type JSONExporter struct{}

// RenderJSON implements JSONRenderer. The result is a []any so it can be merged.
func (JSONExporter) RenderJSON(ctx context.Context, group model.Group, name string) (any, error) {
	if group.Count() == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var template *string
	if name != "" {
		template = &name
	}

	out := make([]any, 0, len(group.Teams))
	for _, tr := range group.Teams {
		out = append(out, TeamExport{Team: tr.Team, Template: template, Scouts: tr.Scouts})
	}
	return out, nil
}

// MergeJSON combines group values under policy. MergeFirst keeps the first
// non-nil value. MergeAll flattens []any values into one array and appends
// any other value as a single element. Nil values are always skipped.
func MergeJSON(values []any, policy model.MergePolicy) any {
	if policy != model.MergeAll {
		for _, v := range values {
			if v != nil {
				return v
			}
		}
		return nil
	}

	merged := []any{}
	for _, v := range values {
		switch v := v.(type) {
		case nil:
		case []any:
			merged = append(merged, v...)
		default:
			merged = append(merged, v)
		}
	}
	return merged
}
