// Package ratelimit provides fixed-window admission control keyed by client.
//
// Two stores implement Limiter: MemoryStore for a single instance and
// RedisStore when several instances must share counters.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultLimit         = 10
	DefaultWindow        = 60 * time.Second
	DefaultSweepInterval = 5 * time.Minute

	// UnknownKey is shared by every client that sends no forwarded-for header.
	UnknownKey = "unknown"
)

var ErrStore = errors.New("rate limit store failed")

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterMs is the wait before the window resets, in milliseconds.
func (d Decision) RetryAfterMs() int64 {
	return d.RetryAfter.Milliseconds()
}

// RetryAfterSeconds rounds the wait up to whole seconds, as sent in the
// Retry-After header.
func (d Decision) RetryAfterSeconds() int {
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// Limiter admits or rejects one request for key.
type Limiter interface {
	Admit(ctx context.Context, key string) (Decision, error)
}

// ClientKey derives the limiter key from the first X-Forwarded-For value.
func ClientKey(h http.Header) string {
	fwd := h.Get("X-Forwarded-For")
	if fwd == "" {
		return UnknownKey
	}
	first, _, _ := strings.Cut(fwd, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return UnknownKey
	}
	return first
}

type options struct {
	limit         int
	window        time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	prefix        string
}

// Option configures a store.
type Option func(*options)

func defaultOptions() options {
	return options{
		limit:         DefaultLimit,
		window:        DefaultWindow,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		prefix:        "ratelimit:",
	}
}

// WithLimit sets the number of requests admitted per window.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithWindow sets the window length.
func WithWindow(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.window = d
		}
	}
}

// WithSweepInterval sets how often MemoryStore.Run purges expired windows.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.sweepInterval = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithKeyPrefix sets the key namespace used by RedisStore.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}
