package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatly/internal/shared/config"
	"seatly/pkg/logger"
)

type fakeStore struct {
	mu           sync.Mutex
	advanceCalls int
	purgeCalls   int
	lastCutoff   time.Time
	toEnd        []uuid.UUID
	advanceErr   error
}

func (f *fakeStore) AdvanceExpiredEvents(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advanceCalls++
	if f.advanceErr != nil {
		return nil, f.advanceErr
	}
	// Only the first pass finds work; later passes are no-ops.
	if f.advanceCalls == 1 {
		return f.toEnd, nil
	}
	return nil, nil
}

func (f *fakeStore) PurgeStale(_ context.Context, cutoff time.Time) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purgeCalls++
	f.lastCutoff = cutoff
	return 0, 0, nil
}

type recordingFeed struct {
	mu    sync.Mutex
	ended []string
}

func (r *recordingFeed) EventEnded(_ context.Context, eventID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, eventID)
}

func newTestSweeper(store Store, interval, retention time.Duration) *Sweeper {
	return NewSweeper(store, nil, nil, config.SweeperConfig{
		Interval:        interval,
		RetentionWindow: retention,
	}, logger.NewNop())
}

func TestRunOnce_ReportsStats(t *testing.T) {
	store := &fakeStore{toEnd: []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}}
	s := newTestSweeper(store, time.Hour, 7*24*time.Hour)

	stats, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Ended)
	assert.Equal(t, 1, store.advanceCalls)
	assert.Equal(t, 1, store.purgeCalls)
}

func TestRunOnce_PublishesEndedEvents(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	store := &fakeStore{toEnd: ids}
	feed := &recordingFeed{}
	s := NewSweeper(store, nil, feed, config.SweeperConfig{
		Interval:        time.Hour,
		RetentionWindow: 7 * 24 * time.Hour,
	}, logger.NewNop())

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0].String(), ids[1].String()}, feed.ended)
}

func TestRunOnce_Idempotent(t *testing.T) {
	store := &fakeStore{toEnd: []uuid.UUID{uuid.New(), uuid.New()}}
	s := newTestSweeper(store, time.Hour, 7*24*time.Hour)

	first, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.Ended)

	second, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Ended)
}

func TestRunOnce_CutoffHonorsRetentionWindow(t *testing.T) {
	store := &fakeStore{}
	retention := 7 * 24 * time.Hour
	s := newTestSweeper(store, time.Hour, retention)

	before := time.Now().Add(-retention)
	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	after := time.Now().Add(-retention)

	store.mu.Lock()
	cutoff := store.lastCutoff
	store.mu.Unlock()
	assert.False(t, cutoff.Before(before))
	assert.False(t, cutoff.After(after))
}

func TestRunOnce_AdvanceErrorSkipsPurge(t *testing.T) {
	store := &fakeStore{advanceErr: errors.New("db down")}
	s := newTestSweeper(store, time.Hour, 7*24*time.Hour)

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Zero(t, store.purgeCalls)
}

func TestStartStop_RunsImmediatelyAndHalts(t *testing.T) {
	store := &fakeStore{}
	s := newTestSweeper(store, 10*time.Millisecond, 7*24*time.Hour)

	s.Start()
	// Let the immediate pass plus at least one tick land.
	time.Sleep(35 * time.Millisecond)
	s.Stop()

	store.mu.Lock()
	calls := store.advanceCalls
	store.mu.Unlock()
	assert.GreaterOrEqual(t, calls, 2)

	// No further passes after Stop.
	time.Sleep(25 * time.Millisecond)
	store.mu.Lock()
	assert.Equal(t, calls, store.advanceCalls)
	store.mu.Unlock()
}
