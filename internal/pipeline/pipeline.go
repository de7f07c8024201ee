package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-scout-export/internal/logging"
	"go-scout-export/internal/model"
)

// Publisher commits rendered artifacts to durable storage. One strategy is
// chosen when the orchestrator is built.
type Publisher interface {
	// Name identifies the strategy in logs and metrics.
	Name() string

	// Prepare creates the scratch workspace of a run started at startedAt.
	Prepare(startedAt time.Time) (model.Workspace, error)

	// Publish commits one artifact and returns where it ended up.
	Publish(ctx context.Context, a model.Artifact) (string, error)

	// DocumentLocation is where the consolidated JSON document lives.
	DocumentLocation() model.Location

	// PublishDocument replaces the consolidated JSON document.
	PublishDocument(ctx context.Context, data []byte) (string, error)

	// Cleanup removes the workspace. It runs whatever the outcome.
	Cleanup(ws model.Workspace) error
}

// Result summarises one run.
type Result struct {
	JobID       string      `json:"jobId"`
	State       model.State `json:"state"`
	Records     int         `json:"records"`
	Groups      int         `json:"groups"`
	Destination string      `json:"destination,omitempty"`
	Published   []string    `json:"published,omitempty"`
}

// Orchestrator runs one export job through fetch, group, name resolution,
// render and publish.
type Orchestrator struct {
	Fetcher   *ChunkedFetcher
	Names     *NameResolver
	Sheets    SheetRenderer
	JSON      JSONRenderer
	Publisher Publisher

	// Merge decides how group JSON values become the document.
	Merge model.MergePolicy

	Logger  *zap.Logger
	Metrics *Metrics
}

// ------------------- Pipeline Runner -------------------

// Run executes job and reports progress to sink. Any failure other than name
// resolution aborts the whole run, is reported once through sink.OnAbort and
// is returned. Nothing is published for an aborted run.
func (o *Orchestrator) Run(ctx context.Context, job *model.ExportJob, sink ProgressSink) (res *Result, err error) {
	start := time.Now()
	log := logging.OrNop(o.Logger).With(zap.String("job_id", job.ID), zap.String("mode", string(job.Mode)))
	if sink == nil {
		sink = NewLogSink(log)
	}

	res = &Result{JobID: job.ID, State: model.StateIdle}
	defer func() {
		o.Metrics.observeRun(job.Mode, res.State, time.Since(start))
		log.Info("export finished",
			zap.String("state", string(res.State)),
			zap.Int("published", len(res.Published)),
			zap.Duration("took", time.Since(start)))
	}()

	abort := func(err error) (*Result, error) {
		if sink.Stopped() && errors.Is(err, context.Canceled) {
			err = ErrStopped
		}
		o.transition(res, sink, model.StateAborted)
		sink.OnAbort(err)
		return res, err
	}

	teams := model.SortTeams(job.Teams)
	o.transition(res, sink, model.StateLoading)
	sink.OnStartLoading(ChunkCount(len(teams), job.ChunkSize))

	// The consolidated document must be complete, so JSON mode never times out here.
	fetchTimeout := job.FetchTimeout
	if job.Mode == model.ModeJSON {
		fetchTimeout = 0
	}
	records, err := o.Fetcher.Fetch(ctx, teams, job.ChunkSize, fetchTimeout, sink.OnChunkLoaded)
	if err != nil {
		return abort(err)
	}

	res.Records = CountRecords(records)
	if res.Records == 0 {
		o.transition(res, sink, model.StateEmpty)
		sink.OnEmpty()
		return res, nil
	}

	o.transition(res, sink, model.StateGrouping)
	groups := GroupRecords(records)
	res.Groups = len(groups)

	ws, err := o.Publisher.Prepare(job.StartedAt)
	if err != nil {
		return abort(&PublishError{Err: fmt.Errorf("prepare workspace: %w", err)})
	}
	defer func() {
		if cerr := o.Publisher.Cleanup(ws); cerr != nil {
			log.Warn("failed to clean up scratch area", zap.String("dir", ws.Dir), zap.Error(cerr))
		}
	}()

	res.Destination = ws.Destination
	sink.OnLoaded(len(groups), teams, ws.Destination)

	o.transition(res, sink, model.StateResolving)
	names := o.Names.Resolve(ctx, GroupIDs(groups))

	o.transition(res, sink, model.StateRendering)
	if job.Mode == model.ModeJSON {
		err = o.exportJSON(ctx, job, groups, names, sink, res, log)
	} else {
		err = o.exportSheets(ctx, job, ws, groups, names, sink, res)
	}
	if err != nil {
		return abort(err)
	}

	o.transition(res, sink, model.StateDone)
	return res, nil
}

func (o *Orchestrator) exportSheets(ctx context.Context, job *model.ExportJob, ws model.Workspace, groups []model.Group, names map[string]string, sink ProgressSink, res *Result) error {
	rendered, err := renderAll(ctx, job.RenderTimeout, sink, groups, func(ctx context.Context, g model.Group) ([]model.Artifact, error) {
		return o.Sheets.Render(ctx, g, ws, names[g.ID])
	})
	if err != nil {
		return err
	}

	o.transition(res, sink, model.StatePublishing)
	// Fallback titles and sanitizing can map two groups onto one file name.
	uniqueDisplayNames(rendered)
	for _, artifacts := range rendered {
		for _, a := range artifacts {
			loc, err := o.Publisher.Publish(ctx, a)
			if err != nil {
				return &PublishError{Location: a.Location, Err: err}
			}
			res.Published = append(res.Published, loc)
		}
	}
	o.Metrics.observePublished(o.Publisher.Name(), len(res.Published))
	return nil
}

func (o *Orchestrator) exportJSON(ctx context.Context, job *model.ExportJob, groups []model.Group, names map[string]string, sink ProgressSink, res *Result, log *zap.Logger) error {
	values, err := renderAll(ctx, job.RenderTimeout, sink, groups, func(ctx context.Context, g model.Group) (any, error) {
		return o.JSON.RenderJSON(ctx, g, names[g.ID])
	})
	if err != nil {
		return err
	}

	doc := MergeJSON(values, o.Merge)
	if doc == nil {
		log.Warn("no template produced a JSON value, document left untouched")
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return &RenderError{Err: fmt.Errorf("failed to encode JSON: %w", err)}
	}

	o.transition(res, sink, model.StatePublishing)
	loc, err := o.Publisher.PublishDocument(ctx, buf.Bytes())
	if err != nil {
		return &PublishError{Location: o.Publisher.DocumentLocation(), Err: err}
	}
	res.Published = append(res.Published, loc)
	o.Metrics.observePublished(o.Publisher.Name(), 1)
	return nil
}

// renderAll renders every group concurrently and waits for all of them.
// The first failure cancels the shared context; tasks that have not started
// or that observe the cancellation return nothing. A positive timeout bounds
// the whole fan-out. Results are indexed like groups.
func renderAll[T any](ctx context.Context, timeout time.Duration, sink ProgressSink, groups []model.Group, render func(context.Context, model.Group) (T, error)) ([]T, error) {
	rctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeoutCause(ctx, timeout, ErrRenderTimeout)
		defer cancel()
	}

	out := make([]T, len(groups))
	g, gctx := errgroup.WithContext(rctx)
	for i, group := range groups {
		g.Go(func() error {
			if gctx.Err() != nil || sink.Stopped() {
				return nil
			}
			v, err := render(gctx, group)
			if gctx.Err() != nil {
				return nil
			}
			if err != nil {
				return &RenderError{GroupID: group.ID, Err: err}
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if rctx.Err() != nil {
		return nil, context.Cause(rctx)
	}
	if sink.Stopped() {
		return nil, ErrStopped
	}
	return out, nil
}

func (o *Orchestrator) transition(res *Result, sink ProgressSink, state model.State) {
	res.State = state
	logging.OrNop(o.Logger).Debug("export state", zap.String("job_id", res.JobID), zap.String("state", string(state)))
	if l, ok := sink.(StateListener); ok {
		l.OnState(state)
	}
}
