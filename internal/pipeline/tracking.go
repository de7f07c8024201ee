package pipeline

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"go-scout-export/internal/logging"
	"go-scout-export/internal/model"
)

// ProgressSink receives lifecycle events of one export run.
type ProgressSink interface {
	OnStartLoading(chunkCount int)
	OnChunkLoaded()
	OnLoaded(groupCount int, teams []model.Team, destination string)
	OnEmpty()
	OnAbort(err error)

	// Stop asks the run to stop; Stopped reports whether it was asked.
	Stop()
	Stopped() bool
}

// StateListener is implemented by sinks that also want state transitions.
type StateListener interface {
	OnState(state model.State)
}

// ------------------- Log Sink -------------------

// LogSink logs every event. Fetch timeouts abort at Warn, every other abort
// is escalated to Error.
type LogSink struct {
	logger  *zap.Logger
	stopped atomic.Bool

	mu           sync.Mutex
	chunks       int
	chunksLoaded int
}

// NewLogSink creates a LogSink; a nil logger discards everything.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logging.OrNop(logger)}
}

func (s *LogSink) OnStartLoading(chunkCount int) {
	s.mu.Lock()
	s.chunks = chunkCount
	s.mu.Unlock()
	s.logger.Info("loading teams", zap.Int("chunks", chunkCount))
}

func (s *LogSink) OnChunkLoaded() {
	s.mu.Lock()
	s.chunksLoaded++
	loaded, total := s.chunksLoaded, s.chunks
	s.mu.Unlock()
	s.logger.Info("chunk loaded", zap.Int("loaded", loaded), zap.Int("chunks", total))
}

func (s *LogSink) OnLoaded(groupCount int, teams []model.Team, destination string) {
	s.logger.Info("scouts loaded",
		zap.Int("templates", groupCount),
		zap.Int("teams", len(teams)),
		zap.String("destination", destination))
}

func (s *LogSink) OnEmpty() {
	s.logger.Info("nothing to export")
}

func (s *LogSink) OnAbort(err error) {
	s.stopped.Store(true)
	if IsExpected(err) {
		s.logger.Warn("export aborted", zap.Error(err))
		return
	}
	s.logger.Error("export aborted", zap.Error(err))
}

func (s *LogSink) Stop() { s.stopped.Store(true) }

func (s *LogSink) Stopped() bool { return s.stopped.Load() }

// ------------------- Multi Sink -------------------

// MultiSink fans every event out to several sinks. It is stopped when any
// of them is.
type MultiSink []ProgressSink

func (m MultiSink) OnStartLoading(chunkCount int) {
	for _, s := range m {
		s.OnStartLoading(chunkCount)
	}
}

func (m MultiSink) OnChunkLoaded() {
	for _, s := range m {
		s.OnChunkLoaded()
	}
}

func (m MultiSink) OnLoaded(groupCount int, teams []model.Team, destination string) {
	for _, s := range m {
		s.OnLoaded(groupCount, teams, destination)
	}
}

func (m MultiSink) OnEmpty() {
	for _, s := range m {
		s.OnEmpty()
	}
}

func (m MultiSink) OnAbort(err error) {
	for _, s := range m {
		s.OnAbort(err)
	}
}

func (m MultiSink) Stop() {
	for _, s := range m {
		s.Stop()
	}
}

func (m MultiSink) Stopped() bool {
	for _, s := range m {
		if s.Stopped() {
			return true
		}
	}
	return false
}

// OnState forwards to every sink that listens for states.
func (m MultiSink) OnState(state model.State) {
	for _, s := range m {
		if l, ok := s.(StateListener); ok {
			l.OnState(state)
		}
	}
}
