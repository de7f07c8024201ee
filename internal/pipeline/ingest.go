package pipeline

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-scout-export/internal/logging"
	"go-scout-export/internal/model"
)

// RecordSource returns every scout of one team. Implementations may fail or
// hang; the fetcher bounds them.
//
// FetchRecords must return once ctx is done. The fetcher stops waiting at
// the deadline, but a call that ignores ctx keeps its goroutine and
// connections alive after Fetch has returned, possibly past the end of the
// export.
type RecordSource interface {
	FetchRecords(ctx context.Context, team model.Team) ([]model.Scout, error)
}

// ------------------- Chunked Fetcher -------------------

// ChunkedFetcher fetches teams in fixed-size chunks. All teams of a chunk are
// fetched concurrently and the next chunk starts only once the chunk is done.
type ChunkedFetcher struct {
	Source  RecordSource
	Logger  *zap.Logger
	Metrics *Metrics
}

// ChunkTeams splits teams into contiguous chunks of at most size teams.
// Sizes below one are treated as one.
func ChunkTeams(teams []model.Team, size int) [][]model.Team {
	if len(teams) == 0 {
		return nil
	}
	return slices.Collect(slices.Chunk(teams, max(size, 1)))
}

// ChunkCount returns ceil(n/size).
func ChunkCount(n, size int) int {
	size = max(size, 1)
	return (n + size - 1) / size
}

// Fetch loads the scouts of every team, chunkSize teams at a time, and
// returns them paired with their team in input order. A positive timeout
// bounds the entire multi-chunk sequence; when it expires the whole fetch
// fails with ErrFetchTimeout and nothing is returned. onChunk, if set, runs
// after each chunk completes.
func (f *ChunkedFetcher) Fetch(ctx context.Context, teams []model.Team, chunkSize int, timeout time.Duration, onChunk func()) ([]model.TeamRecords, error) {
	log := logging.OrNop(f.Logger)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, timeout, ErrFetchTimeout)
		defer cancel()
	}

	results := make([]model.TeamRecords, 0, len(teams))
	chunks := ChunkTeams(teams, chunkSize)
	for i, chunk := range chunks {
		start := time.Now()
		loaded, err := f.fetchChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		results = append(results, loaded...)

		f.Metrics.observeChunk(time.Since(start), loaded)
		log.Debug("chunk loaded",
			zap.Int("chunk", i+1),
			zap.Int("chunks", len(chunks)),
			zap.Int("teams", len(chunk)),
			zap.Duration("took", time.Since(start)))
		if onChunk != nil {
			onChunk()
		}
	}
	return results, nil
}

// fetchChunk fetches one chunk. Results are written by index so each team
// stays paired with its own scouts regardless of completion order.
func (f *ChunkedFetcher) fetchChunk(ctx context.Context, chunk []model.Team) ([]model.TeamRecords, error) {
	out := make([]model.TeamRecords, len(chunk))

	g, gctx := errgroup.WithContext(ctx)
	for i, team := range chunk {
		g.Go(func() error {
			scouts, err := f.fetchOne(gctx, team)
			if err != nil {
				return err
			}
			out[i] = model.TeamRecords{Team: team, Scouts: scouts}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// A fetch interrupted by our own deadline reports the deadline, not
		// whichever call noticed it first.
		if cause := context.Cause(ctx); cause != nil {
			return nil, cause
		}
		return nil, err
	}
	return out, nil
}

type fetchResult struct {
	scouts []model.Scout
	err    error
}

// fetchOne calls the source but never waits past ctx, even when the source
// ignores cancellation.
func (f *ChunkedFetcher) fetchOne(ctx context.Context, team model.Team) ([]model.Scout, error) {
	done := make(chan fetchResult, 1)
	go func() {
		scouts, err := f.Source.FetchRecords(ctx, team)
		done <- fetchResult{scouts: scouts, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
				if cause := context.Cause(ctx); cause != nil {
					return nil, cause
				}
			}
			return nil, &FetchError{Team: team, Err: res.err}
		}
		return res.scouts, nil
	}
}
