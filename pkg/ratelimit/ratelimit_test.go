package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestClientKey(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"Single value", "203.0.113.7", "203.0.113.7"},
		{"First of many", " 203.0.113.7 , 10.0.0.1, 10.0.0.2", "203.0.113.7"},
		{"Absent", "", UnknownKey},
		{"Blank first value", " , 10.0.0.1", UnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("X-Forwarded-For", tt.header)
			}
			assert.Equal(t, tt.want, ClientKey(h))
		})
	}
}

func TestDecisionRetryAfter(t *testing.T) {
	d := Decision{RetryAfter: 1500 * time.Millisecond}
	assert.Equal(t, int64(1500), d.RetryAfterMs())
	assert.Equal(t, 2, d.RetryAfterSeconds())
	assert.Equal(t, 0, Decision{}.RetryAfterSeconds())
}

// exerciseWindow checks the fixed-window contract with limit=10, window=60s.
func exerciseWindow(t *testing.T, l Limiter, advance func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		d, err := l.Admit(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be admitted", i)
	}

	advance(20 * time.Second)
	d, err := l.Admit(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, d.Allowed, "11th request inside the window must be rejected")
	assert.Greater(t, d.RetryAfterMs(), int64(0))
	assert.LessOrEqual(t, d.RetryAfter, 40*time.Second)

	// Other keys are independent.
	d, err = l.Admit(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	// Window expires naturally: admitted, and the count restarts at 1.
	advance(41 * time.Second)
	for i := 1; i <= 10; i++ {
		d, err := l.Admit(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d of the new window should be admitted", i)
	}
	d, err = l.Admit(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestMemoryStore_FixedWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithClock(clock.Now))

	exerciseWindow(t, store, clock.Advance)
}

func TestMemoryStore_RetryAfterIsRemainingWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithClock(clock.Now), WithLimit(1), WithWindow(10*time.Second))
	ctx := context.Background()

	d, _ := store.Admit(ctx, "k")
	require.True(t, d.Allowed)

	clock.Advance(3 * time.Second)
	d, _ = store.Admit(ctx, "k")
	assert.False(t, d.Allowed)
	assert.Equal(t, 7*time.Second, d.RetryAfter)
	assert.Equal(t, 7, d.RetryAfterSeconds())

	clock.Advance(7 * time.Second)
	d, _ = store.Admit(ctx, "k")
	assert.True(t, d.Allowed)
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithClock(clock.Now))
	ctx := context.Background()

	_, _ = store.Admit(ctx, "old")
	clock.Advance(30 * time.Second)
	_, _ = store.Admit(ctx, "fresh")
	require.Equal(t, 2, store.Len())

	clock.Advance(31 * time.Second)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	clock.Advance(60 * time.Second)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_RunStopsOnCancel(t *testing.T) {
	store := NewMemoryStore(WithSweepInterval(time.Millisecond), WithWindow(time.Millisecond))
	_, _ = store.Admit(context.Background(), "k")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRedisStore_FixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	exerciseWindow(t, store, mr.FastForward)

	assert.True(t, mr.Exists("ratelimit:client-a"))
}

func TestRedisStore_KeyPrefixAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, WithKeyPrefix("summit:rl:"), WithLimit(2), WithWindow(5*time.Second))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := store.Admit(ctx, "203.0.113.7")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	d, err := store.Admit(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 5*time.Second, d.RetryAfter)

	assert.Equal(t, 5*time.Second, mr.TTL("summit:rl:203.0.113.7"))
	val, err := mr.Get("summit:rl:203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "2", val)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewRedisStore(client).Admit(context.Background(), "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStore)
}
