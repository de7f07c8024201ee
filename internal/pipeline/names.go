package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-scout-export/internal/logging"
	"go-scout-export/internal/model"
)

// UnknownTemplateName is used for templates that no longer exist.
const UnknownTemplateName = "Unknown Template"

// BuiltinTemplates names the built-in templates. They never need a lookup
// and take precedence over user templates with the same id.
var BuiltinTemplates = map[string]string{
	"0": "Match Scout",
	"1": "Pit Scout",
	"2": "Blank Scout",
}

// GroupNameSource lists user-defined templates.
type GroupNameSource interface {
	QueryGroupNames(ctx context.Context) ([]model.Template, error)
}

// NameResolver maps template ids to display names.
type NameResolver struct {
	Source   GroupNameSource
	Builtins map[string]string
	Logger   *zap.Logger
}

// Resolve returns a display name for each id. Ids whose template has no name
// are absent from the result. Repeated names are suffixed in the order of
// ids: "Match", "Match (1)", "Match (2)". A failed lookup is logged and
// treated as if no user template exists.
func (r *NameResolver) Resolve(ctx context.Context, ids []string) map[string]string {
	log := logging.OrNop(r.Logger)

	known := make(map[string]*string)
	if r.Source != nil {
		templates, err := r.Source.QueryGroupNames(ctx)
		if err != nil {
			log.Warn("template names unavailable", zap.Error(&NameResolutionError{Err: err}))
			templates = nil
		}
		for _, t := range templates {
			known[t.ID] = t.Name
		}
	}

	builtins := r.Builtins
	if builtins == nil {
		builtins = BuiltinTemplates
	}
	for id, name := range builtins {
		known[id] = &name
	}

	names := make([]*string, len(ids))
	for i, id := range ids {
		name, ok := known[id]
		if !ok {
			unknown := UnknownTemplateName
			name = &unknown
		}
		names[i] = name
	}

	out := make(map[string]string, len(ids))
	for i, name := range Disambiguate(names) {
		if name != nil {
			out[ids[i]] = *name
		}
	}
	return out
}

// Disambiguate suffixes repeated names with a 1-based occurrence counter.
// Nil names are passed through and never counted.
func Disambiguate(names []*string) []*string {
	used := make(map[string]int)
	out := make([]*string, len(names))
	for i, name := range names {
		if name == nil {
			continue
		}
		n, seen := used[*name]
		used[*name] = n + 1
		if !seen {
			v := *name
			out[i] = &v
			continue
		}
		v := fmt.Sprintf("%s (%d)", *name, n)
		out[i] = &v
	}
	return out
}
