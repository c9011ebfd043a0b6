package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	countUsers    func(ctx context.Context) (int, error)
	countProducts func(ctx context.Context) (int, error)
}

func (f *fakeCounter) CountUsers(ctx context.Context) (int, error) {
	return f.countUsers(ctx)
}

func (f *fakeCounter) CountProducts(ctx context.Context) (int, error) {
	return f.countProducts(ctx)
}

type fakeSink struct {
	mu    sync.Mutex
	calls [][2]int
}

func (s *fakeSink) SetCatalogCounts(users, products int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, [2]int{users, products})
}

func (s *fakeSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func staticCounter(users, products int) *fakeCounter {
	return &fakeCounter{
		countUsers:    func(context.Context) (int, error) { return users, nil },
		countProducts: func(context.Context) (int, error) { return products, nil },
	}
}

func TestRefreshCatalogStats(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	s, err := NewScheduler("@every 1h", staticCounter(4, 9), sink)
	require.NoError(t, err)

	require.NoError(t, s.RefreshCatalogStats(context.Background()))
	assert.Equal(t, [][2]int{{4, 9}}, sink.calls)
}

func TestRefreshCatalogStats_Error(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	counter := staticCounter(1, 1)
	counter.countProducts = func(context.Context) (int, error) { return 0, errors.New("db down") }

	s, err := NewScheduler("@every 1h", counter, sink)
	require.NoError(t, err)

	err = s.RefreshCatalogStats(context.Background())
	assert.ErrorContains(t, err, "failed to count products")
	assert.Empty(t, sink.calls)
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	t.Parallel()
	_, err := NewScheduler("every minute please", staticCounter(0, 0), &fakeSink{})
	assert.Error(t, err)
}

func TestScheduler_StartRefreshesImmediately(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	s, err := NewScheduler("@every 1h", staticCounter(2, 3), sink)
	require.NoError(t, err)

	s.Start()
	s.Stop()
	assert.Equal(t, 1, sink.len())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	s, err := NewScheduler("@every 1s", staticCounter(2, 3), sink)
	require.NoError(t, err)

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool { return sink.len() >= 2 }, 3*time.Second, 50*time.Millisecond)
}
