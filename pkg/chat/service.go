package chat

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mikeboe/summit-buddy/pkg/clients"
	"github.com/mikeboe/summit-buddy/pkg/dataset"
	"github.com/mikeboe/summit-buddy/pkg/entities"
	"github.com/mikeboe/summit-buddy/pkg/metrics"
	"github.com/mikeboe/summit-buddy/pkg/prompt"
	"github.com/mikeboe/summit-buddy/pkg/ratelimit"
	"github.com/mikeboe/summit-buddy/pkg/usage"
)

const (
	DefaultMaxHistory      = 10
	DefaultMaxOutputTokens = 1500
	DefaultTimeout         = 60 * time.Second
)

type Service struct {
	Data  *dataset.Dataset
	Index *entities.Index
	Model clients.StreamModel

	limiter         ratelimit.Limiter
	usage           *usage.Logger
	metrics         *metrics.Manager
	mode            prompt.Mode
	maxHistory      int
	maxOutputTokens int
	timeout         time.Duration
	now             func() time.Time
}

func NewService(data *dataset.Dataset, index *entities.Index, model clients.StreamModel, opts ...Option) *Service {
	s := &Service{
		Data:            data,
		Index:           index,
		Model:           model,
		mode:            prompt.ModeCompressed,
		maxHistory:      DefaultMaxHistory,
		maxOutputTokens: DefaultMaxOutputTokens,
		timeout:         DefaultTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stream runs one chat turn. Admission, prompt assembly and the first
// upstream chunk happen before it returns, so those failures come back as a
// *Error the caller can turn into a status code. Once the sequence is handed
// out, failures arrive as an "error" event.
func (s *Service) Stream(ctx context.Context, req Request) (iter.Seq2[StreamEvent, error], error) {
	start := s.now()
	key := req.ClientKey
	if key == "" {
		key = ratelimit.UnknownKey
	}

	if err := s.admit(ctx, key); err != nil {
		return nil, err
	}

	history := TrimHistory(req.Messages, s.maxHistory)
	msgs := toModelMessages(history)
	if len(msgs) == 0 {
		s.metrics.ChatRequest(metrics.OutcomeError)
		return nil, &Error{Status: http.StatusBadRequest, Message: MsgNoMessages, outcome: metrics.OutcomeError}
	}

	system := prompt.Build(s.mode, s.Data, req.Profile)
	userText := LastUserText(history)

	slog.Info("Starting chat stream",
		"client", key,
		"model", s.Model.Name(),
		"messages", len(msgs),
		"prompt_mode", s.mode,
		"prompt_chars", len(system),
	)

	streamCtx, cancel := context.WithTimeout(ctx, s.timeout)
	next, stop := iter.Pull2(s.Model.Stream(streamCtx, clients.Request{
		System:          system,
		Messages:        msgs,
		MaxOutputTokens: s.maxOutputTokens,
	}))

	first, firstErr, hasFirst := next()
	if hasFirst && firstErr != nil {
		stop()
		cancel()
		chatErr := classify(firstErr)
		slog.Error("Chat upstream failed", "client", key, "status", chatErr.Status, "error", firstErr)
		s.metrics.ChatRequest(chatErr.outcome)
		if chatErr.Status == http.StatusTooManyRequests {
			s.metrics.RateLimitRejected(metrics.SourceUpstream)
		}
		return nil, chatErr
	}

	state := &turn{
		key:     key,
		profile: req.Profile,
		system:  system,
		history: msgs,
		user:    userText,
		start:   start,
	}

	return func(yield func(StreamEvent, error) bool) {
		defer cancel()
		defer stop()
		defer s.finish(state)

		emit := func(c clients.Chunk) bool {
			if c.Usage != nil {
				state.usage = c.Usage
			}
			if c.Text == "" {
				return true
			}
			state.reply.WriteString(c.Text)
			return yield(StreamEvent{Type: EventContent, Payload: c.Text}, nil)
		}

		if hasFirst && !emit(first) {
			state.outcome = metrics.OutcomeCancelled
			return
		}

		for {
			chunk, err, ok := next()
			if !ok {
				break
			}
			if err != nil {
				chatErr := classify(err)
				state.outcome = metrics.OutcomeStreamError
				slog.Error("Chat stream interrupted", "client", key, "status", chatErr.Status, "error", err)
				yield(StreamEvent{Type: EventError, Payload: chatErr.Message}, chatErr)
				return
			}
			if !emit(chunk) {
				state.outcome = metrics.OutcomeCancelled
				return
			}
		}

		matches := s.Index.FindInText(state.reply.String())
		for kind, n := range countByKind(matches) {
			s.metrics.EntityMatches(string(kind), n)
		}
		if !yield(StreamEvent{Type: EventEntities, Payload: matches}, nil) {
			state.outcome = metrics.OutcomeCancelled
			return
		}

		state.outcome = metrics.OutcomeOK
		yield(StreamEvent{Type: EventDone, Payload: "done"}, nil)
	}, nil
}

// admit applies the rate limit. A failing store admits the request.
func (s *Service) admit(ctx context.Context, key string) error {
	if s.limiter == nil {
		return nil
	}

	decision, err := s.limiter.Admit(ctx, key)
	if err != nil {
		slog.Warn("Rate limiter unavailable, admitting request", "client", key, "error", err)
		return nil
	}
	if decision.Allowed {
		return nil
	}

	slog.Info("Rate limited", "client", key, "retry_after_ms", decision.RetryAfterMs())
	s.metrics.RateLimitRejected(metrics.SourceLocal)
	s.metrics.ChatRequest(metrics.OutcomeRateLimited)
	return &Error{
		Status:     http.StatusTooManyRequests,
		Message:    MsgRateLimited,
		RetryAfter: decision.RetryAfter,
		outcome:    metrics.OutcomeRateLimited,
	}
}

// turn accumulates what a finished stream needs for accounting.
type turn struct {
	key     string
	profile *dataset.UserProfile
	system  string
	history []clients.Message
	user    string
	start   time.Time

	reply   strings.Builder
	usage   *clients.Usage
	outcome string
}

// tokens prefers provider counts and falls back to a character estimate.
func (t *turn) tokens() (int, int) {
	if t.usage != nil && (t.usage.InputTokens > 0 || t.usage.OutputTokens > 0) {
		return t.usage.InputTokens, t.usage.OutputTokens
	}
	in := usage.EstimateTokens(t.system)
	for _, m := range t.history {
		in += usage.EstimateTokens(m.Text)
	}
	return in, usage.EstimateTokens(t.reply.String())
}

func (s *Service) finish(t *turn) {
	if t.outcome == "" {
		t.outcome = metrics.OutcomeCancelled
	}
	elapsed := s.now().Sub(t.start)
	in, out := t.tokens()

	s.metrics.ChatRequest(t.outcome)
	s.metrics.StreamDuration(elapsed)
	s.metrics.Tokens(in, out)

	slog.Info("Chat stream finished",
		"client", t.key,
		"outcome", t.outcome,
		"input_tokens", in,
		"output_tokens", out,
		"reply_chars", t.reply.Len(),
		"duration", elapsed,
	)

	s.usage.Log(usage.NewEntry(t.key, t.user, t.reply.String(), in, out, t.profile, s.now()))
}

func toModelMessages(msgs []Message) []clients.Message {
	out := make([]clients.Message, 0, len(msgs))
	for _, m := range msgs {
		text := m.Text()
		if text == "" {
			continue
		}
		switch m.Role {
		case "user":
			out = append(out, clients.Message{Role: clients.RoleUser, Text: text})
		case "assistant":
			out = append(out, clients.Message{Role: clients.RoleAssistant, Text: text})
		}
	}
	return out
}

func countByKind(matches []entities.Match) map[entities.Kind]int {
	counts := make(map[entities.Kind]int)
	for _, m := range matches {
		counts[m.Type]++
	}
	return counts
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var chatErr *Error
	if errors.As(err, &chatErr) {
		return chatErr, true
	}
	return nil, false
}
