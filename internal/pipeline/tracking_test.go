package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go-scout-export/internal/model"
)

func TestLogSink_AbortLevels(t *testing.T) {
	tests := []struct {
		err   error
		level zapcore.Level
	}{
		{err: ErrFetchTimeout, level: zap.WarnLevel},
		{err: fmt.Errorf("run: %w", ErrStopped), level: zap.WarnLevel},
		{err: &RenderError{GroupID: "0", Err: errors.New("bad")}, level: zap.ErrorLevel},
		{err: context.Canceled, level: zap.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			sink := NewLogSink(zap.New(core))

			sink.OnAbort(tt.err)

			assert.True(t, sink.Stopped())
			entries := logs.All()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, tt.level, entries[0].Level)
			}
		})
	}
}

func TestLogSink_Progress(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogSink(zap.New(core))

	sink.OnStartLoading(2)
	sink.OnChunkLoaded()
	sink.OnChunkLoaded()
	sink.OnLoaded(1, []model.Team{{ID: "a"}}, "/tmp/out")

	chunks := logs.FilterMessage("chunk loaded").All()
	if assert.Len(t, chunks, 2) {
		assert.Equal(t, int64(2), chunks[1].ContextMap()["loaded"])
	}
	assert.Equal(t, 1, logs.FilterMessage("scouts loaded").Len())
	assert.False(t, sink.Stopped())
}

type stateSink struct {
	*LogSink
	states []model.State
}

func (s *stateSink) OnState(state model.State) { s.states = append(s.states, state) }

func TestMultiSink(t *testing.T) {
	a := NewLogSink(nil)
	b := &stateSink{LogSink: NewLogSink(nil)}
	m := MultiSink{a, b}

	m.OnState(model.StateLoading)
	assert.Equal(t, []model.State{model.StateLoading}, b.states)

	assert.False(t, m.Stopped())
	b.Stop()
	assert.True(t, m.Stopped())
	assert.False(t, a.Stopped())

	m.Stop()
	assert.True(t, a.Stopped())
}
