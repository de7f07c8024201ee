package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"go-scout-export/internal/model"
)

type sourceFunc func(ctx context.Context, team model.Team) ([]model.Scout, error)

func (f sourceFunc) FetchRecords(ctx context.Context, team model.Team) ([]model.Scout, error) {
	return f(ctx, team)
}

func makeTeams(n int) []model.Team {
	teams := make([]model.Team, n)
	for i := range teams {
		teams[i] = model.Team{ID: fmt.Sprintf("t%02d", i), Number: int64(i + 1)}
	}
	return teams
}

func TestChunkTeams(t *testing.T) {
	for n := 0; n <= 25; n++ {
		for k := 1; k <= 7; k++ {
			teams := makeTeams(n)
			chunks := ChunkTeams(teams, k)

			require.Len(t, chunks, ChunkCount(n, k), "n=%d k=%d", n, k)
			assert.Equal(t, (n+k-1)/k, len(chunks))

			var joined []model.Team
			for _, c := range chunks {
				assert.LessOrEqual(t, len(c), k)
				assert.NotEmpty(t, c)
				joined = append(joined, c...)
			}
			assert.True(t, slices.Equal(teams, joined), "n=%d k=%d", n, k)
		}
	}
}

func TestChunkTeams_NonPositiveSize(t *testing.T) {
	assert.Len(t, ChunkTeams(makeTeams(3), 0), 3)
	assert.Equal(t, 3, ChunkCount(3, 0))
}

func TestFetch_PairsResultsWithTeams(t *testing.T) {
	teams := makeTeams(9)
	// Later teams finish first so completion order is the reverse of input order.
	src := sourceFunc(func(ctx context.Context, team model.Team) ([]model.Scout, error) {
		time.Sleep(time.Duration(20-team.Number) * time.Millisecond)
		return []model.Scout{{ID: team.ID + "-s", TeamID: team.ID}}, nil
	})

	f := &ChunkedFetcher{Source: src, Logger: zaptest.NewLogger(t)}
	chunks := 0
	records, err := f.Fetch(context.Background(), teams, 4, 0, func() { chunks++ })
	require.NoError(t, err)

	assert.Equal(t, 3, chunks)
	require.Len(t, records, len(teams))
	for i, tr := range records {
		assert.Equal(t, teams[i], tr.Team)
		require.Len(t, tr.Scouts, 1)
		assert.Equal(t, tr.Team.ID, tr.Scouts[0].TeamID)
	}
}

func TestFetch_BoundsConcurrencyToChunk(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex
	var order []string

	src := sourceFunc(func(ctx context.Context, team model.Team) ([]model.Scout, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		order = append(order, team.ID)
		mu.Unlock()
		inFlight.Add(-1)
		return nil, nil
	})

	f := &ChunkedFetcher{Source: src}
	_, err := f.Fetch(context.Background(), makeTeams(10), 3, 0, nil)
	require.NoError(t, err)

	assert.LessOrEqual(t, peak.Load(), int32(3))
	// Every team of chunk N finishes before any team of chunk N+1.
	for i, id := range order {
		chunk := i / 3
		var idx int
		fmt.Sscanf(id, "t%02d", &idx)
		assert.Equal(t, chunk, idx/3, "team %s finished out of its chunk", id)
	}
}

func TestFetch_TimeoutWrapsWholeSequence(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := sourceFunc(func(ctx context.Context, team model.Team) ([]model.Scout, error) {
		select {
		case <-time.After(30 * time.Millisecond):
			return []model.Scout{{ID: team.ID}}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	// Each chunk fits the budget on its own; the sequence does not.
	f := &ChunkedFetcher{Source: src}
	records, err := f.Fetch(context.Background(), makeTeams(6), 1, 100*time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrFetchTimeout)
	assert.Nil(t, records)
}

func TestFetch_HangingSourceTimesOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	var inFlight atomic.Int32

	// Ignores its context entirely.
	src := sourceFunc(func(ctx context.Context, team model.Team) ([]model.Scout, error) {
		inFlight.Add(1)
		defer inFlight.Add(-1)
		<-release
		return []model.Scout{{ID: team.ID}}, nil
	})

	f := &ChunkedFetcher{Source: src}
	start := time.Now()
	res, err := f.Fetch(context.Background(), makeTeams(2), 10, 50*time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrFetchTimeout)
	assert.Nil(t, res)
	assert.Less(t, time.Since(start), time.Second)

	// The calls outlive Fetch until the source itself returns.
	assert.EqualValues(t, 2, inFlight.Load())
	close(release)
	require.Eventually(t, func() bool { return inFlight.Load() == 0 }, time.Second, 5*time.Millisecond)
}

func TestFetch_SourceError(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("permission denied")
	src := sourceFunc(func(ctx context.Context, team model.Team) ([]model.Scout, error) {
		if team.ID == "t01" {
			return nil, boom
		}
		<-ctx.Done()
		return nil, ctx.Err()
	})

	f := &ChunkedFetcher{Source: src}
	_, err := f.Fetch(context.Background(), makeTeams(3), 3, time.Minute, nil)
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "t01", fe.Team.ID)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsExpected(err))
}

func TestFetch_NoTeams(t *testing.T) {
	f := &ChunkedFetcher{Source: sourceFunc(func(context.Context, model.Team) ([]model.Scout, error) {
		t.Fatal("source must not be called")
		return nil, nil
	})}
	records, err := f.Fetch(context.Background(), nil, 10, time.Second, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}
