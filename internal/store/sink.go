package store

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"go-scout-export/internal/logging"
	"go-scout-export/internal/model"
)

// JobSink records the progress of one job in the store. Write failures are
// logged; they never affect the export.
type JobSink struct {
	store  *Store
	jobID  string
	logger *zap.Logger

	stopped atomic.Bool

	mu     sync.Mutex
	total  int
	loaded int
}

// NewJobSink creates a sink for jobID.
func NewJobSink(s *Store, jobID string, logger *zap.Logger) *JobSink {
	return &JobSink{store: s, jobID: jobID, logger: logging.OrNop(logger)}
}

func (j *JobSink) OnState(state model.State) {
	j.check("status", j.store.UpdateJobStatus(context.Background(), j.jobID, state))
}

func (j *JobSink) OnStartLoading(chunkCount int) {
	j.mu.Lock()
	j.total, j.loaded = chunkCount, 0
	j.mu.Unlock()
	j.check("progress", j.store.SaveChunkProgress(context.Background(), j.jobID, chunkCount, 0))
}

func (j *JobSink) OnChunkLoaded() {
	j.mu.Lock()
	j.loaded++
	total, loaded := j.total, j.loaded
	j.mu.Unlock()
	j.check("progress", j.store.SaveChunkProgress(context.Background(), j.jobID, total, loaded))
}

func (j *JobSink) OnLoaded(groupCount int, _ []model.Team, destination string) {
	j.check("loaded", j.store.SaveLoaded(context.Background(), j.jobID, groupCount, destination))
}

func (j *JobSink) OnEmpty() {}

func (j *JobSink) OnAbort(err error) {
	j.stopped.Store(true)
	j.check("error", j.store.SaveJobError(context.Background(), j.jobID, err))
}

func (j *JobSink) Stop() { j.stopped.Store(true) }

func (j *JobSink) Stopped() bool { return j.stopped.Load() }

func (j *JobSink) check(what string, err error) {
	if err != nil {
		j.logger.Warn("failed to record job "+what, zap.String("job_id", j.jobID), zap.Error(err))
	}
}
