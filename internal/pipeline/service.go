package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-scout-export/internal/logging"
	"go-scout-export/internal/model"
)

// TeamLister lists every team known to the system.
type TeamLister interface {
	ListTeams(ctx context.Context) ([]model.Team, error)
}

// JobRecorder persists submitted jobs.
type JobRecorder interface {
	SaveJob(ctx context.Context, job *model.ExportJob) error
}

// Request triggers one export. No teams means every team.
type Request struct {
	Teams []model.Team `json:"teams"`
	JSON  bool         `json:"json"`
}

// Options are the per-job budgets applied by Service.
type Options struct {
	ChunkSize         int
	FetchTimeout      time.Duration
	RenderTimeout     time.Duration
	JSONRenderTimeout time.Duration
}

// Service submits export jobs and tracks the running ones.
type Service struct {
	Orchestrator *Orchestrator
	Teams        TeamLister
	Recorder     JobRecorder // optional
	Options      Options

	// NewSink builds the sink of each job; nil logs events only.
	NewSink func(job *model.ExportJob) ProgressSink

	Logger *zap.Logger

	mu      sync.Mutex
	running map[string]*JobHandle
	wg      sync.WaitGroup
}

// JobHandle observes and controls one submitted job.
type JobHandle struct {
	ID   string
	Mode model.Mode

	done   chan struct{}
	cancel context.CancelFunc
	sink   ProgressSink
	result *Result
	err    error
}

// Done is closed once the job reached a terminal state.
func (h *JobHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the job finishes or ctx is done.
func (h *JobHandle) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel stops the job. Tasks already running finish on their own.
func (h *JobHandle) Cancel() {
	h.sink.Stop()
	h.cancel()
}

// Submit records and starts an export job and returns its handle without
// waiting for it. An empty team list is resolved to all teams inside the job.
// The job outlives ctx's cancellation but keeps its values.
func (s *Service) Submit(ctx context.Context, req Request) (*JobHandle, error) {
	job := &model.ExportJob{
		ID:            uuid.NewString(),
		Teams:         req.Teams,
		Mode:          model.ModeSpreadsheet,
		ChunkSize:     s.Options.ChunkSize,
		FetchTimeout:  s.Options.FetchTimeout,
		RenderTimeout: s.Options.RenderTimeout,
		StartedAt:     time.Now(),
	}
	if req.JSON {
		job.Mode = model.ModeJSON
		job.RenderTimeout = s.Options.JSONRenderTimeout
	}

	if s.Recorder != nil {
		if err := s.Recorder.SaveJob(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to save job: %w", err)
		}
	}

	log := logging.OrNop(s.Logger).With(zap.String("job_id", job.ID))
	var sink ProgressSink = NewLogSink(log)
	if s.NewSink != nil {
		sink = s.NewSink(job)
	}

	jctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &JobHandle{ID: job.ID, Mode: job.Mode, done: make(chan struct{}), cancel: cancel, sink: sink}

	s.mu.Lock()
	if s.running == nil {
		s.running = make(map[string]*JobHandle)
	}
	s.running[job.ID] = h
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer func() {
			s.mu.Lock()
			delete(s.running, job.ID)
			s.mu.Unlock()
			close(h.done)
		}()

		h.result, h.err = s.run(jctx, job, sink)
	}()

	log.Info("export submitted", zap.String("mode", string(job.Mode)), zap.Int("teams", len(job.Teams)))
	return h, nil
}

func (s *Service) run(ctx context.Context, job *model.ExportJob, sink ProgressSink) (*Result, error) {
	if len(job.Teams) == 0 {
		teams, err := s.Teams.ListTeams(ctx)
		if err != nil {
			err = fmt.Errorf("list teams: %w", err)
			if l, ok := sink.(StateListener); ok {
				l.OnState(model.StateAborted)
			}
			sink.OnAbort(err)
			return &Result{JobID: job.ID, State: model.StateAborted}, err
		}
		job.Teams = teams
	}
	return s.Orchestrator.Run(ctx, job, sink)
}

// Cancel stops a running job. It reports false when no such job is running.
func (s *Service) Cancel(id string) bool {
	s.mu.Lock()
	h, ok := s.running[id]
	s.mu.Unlock()
	if ok {
		h.Cancel()
	}
	return ok
}

// Running returns the ids of jobs that have not finished.
func (s *Service) Running() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.running))
	for id := range s.running {
		ids = append(ids, id)
	}
	return ids
}

// Close cancels every running job and waits for them to return.
func (s *Service) Close() {
	s.mu.Lock()
	for _, h := range s.running {
		h.Cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
