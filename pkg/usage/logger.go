// Package usage records each completed chat turn without delaying the reply.
package usage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikeboe/summit-buddy/pkg/dataset"
)

const (
	// MaxTextLen bounds the stored user and assistant text, in characters.
	MaxTextLen = 1000

	DefaultTimeout = 5 * time.Second
)

// Entry is one logged chat turn.
type Entry struct {
	ID               uuid.UUID
	ClientKey        string
	UserMessage      string
	AssistantMessage string
	InputTokens      int
	OutputTokens     int
	EstimatedCostINR float64
	SummitDay        int
	Profile          json.RawMessage
	CreatedAt        time.Time
}

// NewEntry fills the derived fields: id, truncation, cost, summit day and
// the profile encoding.
func NewEntry(clientKey, userMsg, assistantMsg string, inputTokens, outputTokens int, profile *dataset.UserProfile, now time.Time) Entry {
	e := Entry{
		ID:               uuid.New(),
		ClientKey:        clientKey,
		UserMessage:      dataset.Prefix(userMsg, MaxTextLen),
		AssistantMessage: dataset.Prefix(assistantMsg, MaxTextLen),
		InputTokens:      inputTokens,
		OutputTokens:     outputTokens,
		EstimatedCostINR: EstimateCost(inputTokens, outputTokens),
		SummitDay:        SummitDay(now),
		CreatedAt:        now,
	}
	if profile != nil {
		if raw, err := json.Marshal(profile); err == nil {
			e.Profile = raw
		}
	}
	return e
}

// Sink persists entries.
type Sink interface {
	Insert(ctx context.Context, e Entry) error
}

// Logger hands entries to a Sink on background goroutines. Failures are
// logged and never reach the caller.
type Logger struct {
	sink    Sink
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewLogger returns a Logger. A nil sink makes Log a no-op.
func NewLogger(sink Sink, timeout time.Duration) *Logger {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Logger{sink: sink, timeout: timeout}
}

// Enabled reports whether entries go anywhere.
func (l *Logger) Enabled() bool {
	return l != nil && l.sink != nil
}

// Log returns immediately. Entries logged after Wait has started are dropped.
func (l *Logger) Log(e Entry) {
	if !l.Enabled() {
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		slog.Warn("Usage log dropped, logger is shutting down", "id", e.ID)
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Warn("Usage log panicked", "id", e.ID, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		if err := l.sink.Insert(ctx, e); err != nil {
			slog.Warn("Usage log failed", "id", e.ID, "error", err)
			return
		}
		slog.Debug("Usage logged", "id", e.ID, "input_tokens", e.InputTokens, "output_tokens", e.OutputTokens, "cost_inr", e.EstimatedCostINR)
	}()
}

// Wait stops accepting entries and blocks until in-flight writes finish or
// ctx is done.
func (l *Logger) Wait(ctx context.Context) error {
	if !l.Enabled() {
		return nil
	}

	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
