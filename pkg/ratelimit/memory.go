package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// MemoryStore keeps windows in a process-local map. State is lost on restart.
type MemoryStore struct {
	opts    options
	mu      sync.Mutex
	windows map[string]*window
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{
		opts:    o,
		windows: make(map[string]*window),
	}
}

func (m *MemoryStore) Admit(_ context.Context, key string) (Decision, error) {
	now := m.opts.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || m.expired(w, now) {
		m.windows[key] = &window{start: now, count: 1}
		return Decision{Allowed: true}, nil
	}

	if w.count >= m.opts.limit {
		return Decision{Allowed: false, RetryAfter: w.start.Add(m.opts.window).Sub(now)}, nil
	}

	w.count++
	return Decision{Allowed: true}, nil
}

func (m *MemoryStore) expired(w *window, now time.Time) bool {
	return !now.Before(w.start.Add(m.opts.window))
}

// Sweep removes every expired window and returns how many were dropped.
func (m *MemoryStore) Sweep() int {
	now := m.opts.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, w := range m.windows {
		if m.expired(w, now) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked keys.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Run sweeps on every interval until ctx is cancelled.
func (m *MemoryStore) Run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("Rate limit sweep", "removed", n, "remaining", m.Len())
			}
		}
	}
}
