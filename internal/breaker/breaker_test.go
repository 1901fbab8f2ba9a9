package breaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/omnipress/publishq/internal/clock"
	"github.com/omnipress/publishq/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu     sync.Mutex
	states map[string]*models.BreakerState
	saves  int
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]*models.BreakerState)}
}

func (s *memStore) Load(_ context.Context, service string) (*models.BreakerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[service], nil
}

func (s *memStore) Save(_ context.Context, state *models.BreakerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.ServiceName] = state
	s.saves++
	return nil
}

func newTestBreaker(t *testing.T, threshold int, cooldown time.Duration, store Store, clk clock.Clock) *Breaker {
	t.Helper()
	reg := NewRegistry(threshold, cooldown, store, clk)
	return reg.For(context.Background(), "tiktok")
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	b := newTestBreaker(t, 3, time.Minute, nil, clk)
	boom := errors.New("HTTP 500 backend blew up")

	for i := 0; i < 2; i++ {
		require.Error(t, b.Call(context.Background(), func() error { return boom }))
		assert.Equal(t, StateClosed, b.Stats().State)
	}

	require.Error(t, b.Call(context.Background(), func() error { return boom }))

	stats := b.Stats()
	assert.Equal(t, StateOpen, stats.State)
	assert.Equal(t, 3, stats.Failures)
	require.NotNil(t, stats.OpenedAt)
	assert.Equal(t, clk.Now(), *stats.OpenedAt)
	assert.Equal(t, boom.Error(), stats.LastFailure)
}

func TestBreaker_OpenRejectsWithoutInvoking(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	b := newTestBreaker(t, 1, time.Minute, nil, clk)

	require.Error(t, b.Call(context.Background(), func() error { return errors.New("down") }))
	require.Equal(t, StateOpen, b.Stats().State)

	invoked := false
	err := b.Call(context.Background(), func() error { invoked = true; return nil })

	var open *OpenError
	require.ErrorAs(t, err, &open)
	assert.Equal(t, "tiktok", open.Service)
	assert.False(t, invoked, "wrapped function must not run while open")
}

func TestBreaker_HalfOpenProbeCloses(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	b := newTestBreaker(t, 1, time.Minute, nil, clk)

	require.Error(t, b.Call(context.Background(), func() error { return errors.New("down") }))

	clk.Advance(61 * time.Second)

	require.NoError(t, b.Call(context.Background(), func() error { return nil }))

	stats := b.Stats()
	assert.Equal(t, StateClosed, stats.State)
	assert.Equal(t, 0, stats.Failures)
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(start)
	b := newTestBreaker(t, 1, time.Minute, nil, clk)

	require.Error(t, b.Call(context.Background(), func() error { return errors.New("down") }))

	clk.Advance(61 * time.Second)
	require.Error(t, b.Call(context.Background(), func() error { return errors.New("still down") }))

	stats := b.Stats()
	assert.Equal(t, StateOpen, stats.State)
	require.NotNil(t, stats.OpenedAt)
	assert.Equal(t, start.Add(61*time.Second), *stats.OpenedAt, "opened_at must be refreshed")

	// Still rejecting within the new cooldown window.
	clk.Advance(30 * time.Second)
	var open *OpenError
	require.ErrorAs(t, b.Call(context.Background(), func() error { return nil }), &open)
}

func TestBreaker_SuccessResetsConsecutiveCount(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	b := newTestBreaker(t, 3, time.Minute, nil, clk)
	boom := errors.New("flaky")

	require.Error(t, b.Call(context.Background(), func() error { return boom }))
	require.Error(t, b.Call(context.Background(), func() error { return boom }))
	require.NoError(t, b.Call(context.Background(), func() error { return nil }))
	require.Error(t, b.Call(context.Background(), func() error { return boom }))

	stats := b.Stats()
	assert.Equal(t, StateClosed, stats.State, "counting is consecutive, not cumulative")
	assert.Equal(t, 1, stats.Failures)
}

func TestBreaker_Reset(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	b := newTestBreaker(t, 1, time.Minute, nil, clk)

	require.Error(t, b.Call(context.Background(), func() error { return errors.New("down") }))
	require.Equal(t, StateOpen, b.Stats().State)

	b.Reset(context.Background())

	stats := b.Stats()
	assert.Equal(t, StateClosed, stats.State)
	assert.Equal(t, 0, stats.Failures)
	assert.Nil(t, stats.OpenedAt)

	require.NoError(t, b.Call(context.Background(), func() error { return nil }))
}

func TestBreaker_PersistsStateTransitions(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	store := newMemStore()
	b := newTestBreaker(t, 1, time.Minute, store, clk)

	require.Error(t, b.Call(context.Background(), func() error { return errors.New("down") }))

	persisted := store.states["tiktok"]
	require.NotNil(t, persisted)
	assert.Equal(t, string(StateOpen), persisted.State)
	assert.Equal(t, 1, persisted.FailureCount)
	assert.NotNil(t, persisted.OpenedAt)
}

func TestRegistry_SeedsFromPersistedState(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(start)
	store := newMemStore()
	openedAt := start.Add(-10 * time.Second)
	store.states["youtube"] = &models.BreakerState{
		ServiceName:  "youtube",
		State:        string(StateOpen),
		FailureCount: 7,
		OpenedAt:     &openedAt,
		LastFailure:  "HTTP 503",
	}

	reg := NewRegistry(5, time.Minute, store, clk)
	b := reg.For(context.Background(), "youtube")

	var open *OpenError
	require.ErrorAs(t, b.Call(context.Background(), func() error { return nil }), &open,
		"an open breaker must survive a restart")
	assert.Equal(t, 7, b.Stats().Failures)
}

func TestRegistry_ReturnsSameBreaker(t *testing.T) {
	reg := NewRegistry(5, time.Minute, nil, clock.System)

	a := reg.For(context.Background(), "meta_facebook")
	b := reg.For(context.Background(), "meta_facebook")
	c := reg.For(context.Background(), "tiktok")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Len(t, reg.AllStats(), 2)
}
