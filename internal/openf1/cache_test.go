package openf1

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stubs ---

type countingGetter struct {
	calls   atomic.Int32
	body    []byte
	err     error
	release chan struct{}
}

func (g *countingGetter) Get(_ context.Context, _ string, _ Params) ([]byte, error) {
	g.calls.Add(1)
	if g.release != nil {
		<-g.release
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.body, nil
}

type memStore struct {
	mu    sync.Mutex
	rows  map[string]storedRow
	saves int
}

type storedRow struct {
	body []byte
	at   time.Time
}

func newMemStore() *memStore { return &memStore{rows: map[string]storedRow{}} }

func (s *memStore) Load(_ context.Context, key string) ([]byte, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	return r.body, r.at, ok, nil
}

func (s *memStore) Save(_ context.Context, key, _ string, body []byte, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[key] = storedRow{body: body, at: at}
	s.saves++
	return nil
}

// --- tests ---

func TestCache_HitWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingGetter{body: []byte(`[]`)}
	c := NewCache(inner, WithClock(clock))

	for range 3 {
		_, err := c.Get(context.Background(), "drivers", Int("session_key", 1))
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingGetter{body: []byte(`[]`)}
	c := NewCache(inner, WithClock(clock))

	_, err := c.Get(context.Background(), "drivers", nil)
	require.NoError(t, err)

	clock.Advance(DefaultTTL)
	_, err = c.Get(context.Background(), "drivers", nil)
	require.NoError(t, err)

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCache_CustomTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingGetter{body: []byte(`[]`)}
	c := NewCache(inner, WithClock(clock), WithTTL(10*time.Second), WithTTL(0))
	assert.Equal(t, 10*time.Second, c.TTL())

	_, _ = c.Get(context.Background(), "laps", nil)
	clock.Advance(11 * time.Second)
	_, _ = c.Get(context.Background(), "laps", nil)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCache_FailuresNotMemoized(t *testing.T) {
	inner := &countingGetter{err: errors.New("boom")}
	c := NewCache(inner)

	_, err := c.Get(context.Background(), "laps", nil)
	require.Error(t, err)

	inner.err = nil
	inner.body = []byte(`[{"lap_number": 1}]`)
	body, err := c.Get(context.Background(), "laps", nil)
	require.NoError(t, err)
	assert.Equal(t, `[{"lap_number": 1}]`, string(body))
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCache_ParamOrderSharesEntry(t *testing.T) {
	inner := &countingGetter{body: []byte(`[]`)}
	c := NewCache(inner)

	_, _ = c.Get(context.Background(), "laps", Params{"session_key": "1", "driver_number": "44"})
	_, _ = c.Get(context.Background(), "laps", Params{"driver_number": "44", "session_key": "1"})
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCache_CoalescesConcurrentMisses(t *testing.T) {
	inner := &countingGetter{body: []byte(`[]`), release: make(chan struct{})}
	c := NewCache(inner)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, err := c.Get(context.Background(), "position", Int("session_key", 7))
			assert.NoError(t, err)
			assert.Equal(t, "[]", string(body))
		}()
	}

	require.Eventually(t, func() bool { return inner.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCache_WaiterHonorsOwnContext(t *testing.T) {
	inner := &countingGetter{body: []byte(`[]`), release: make(chan struct{})}
	c := NewCache(inner)
	defer close(inner.release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "laps", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCache_Purge(t *testing.T) {
	inner := &countingGetter{body: []byte(`[]`)}
	c := NewCache(inner)

	_, _ = c.Get(context.Background(), "laps", nil)
	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, _ = c.Get(context.Background(), "laps", nil)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCache_DiskStore(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newMemStore()

	t.Run("write through", func(t *testing.T) {
		inner := &countingGetter{body: []byte(`[1]`)}
		c := NewCache(inner, WithClock(clock), WithStore(store))
		_, err := c.Get(context.Background(), "laps", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, store.saves)
	})

	t.Run("fresh disk entry served", func(t *testing.T) {
		inner := &countingGetter{body: []byte(`[2]`)}
		c := NewCache(inner, WithClock(clock), WithStore(store))
		body, err := c.Get(context.Background(), "laps", nil)
		require.NoError(t, err)
		assert.Equal(t, "[1]", string(body))
		assert.Equal(t, int32(0), inner.calls.Load())
	})

	t.Run("stale disk entry ignored", func(t *testing.T) {
		clock.Advance(DefaultTTL + time.Second)
		inner := &countingGetter{body: []byte(`[3]`)}
		c := NewCache(inner, WithClock(clock), WithStore(store))
		body, err := c.Get(context.Background(), "laps", nil)
		require.NoError(t, err)
		assert.Equal(t, "[3]", string(body))
		assert.Equal(t, int32(1), inner.calls.Load())
	})
}
