package chat

import (
	"time"

	"github.com/mikeboe/summit-buddy/pkg/metrics"
	"github.com/mikeboe/summit-buddy/pkg/prompt"
	"github.com/mikeboe/summit-buddy/pkg/ratelimit"
	"github.com/mikeboe/summit-buddy/pkg/usage"
)

// Option configures a Service.
type Option func(*Service)

// WithLimiter enables rate limiting. Without it every request is admitted.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(s *Service) {
		s.limiter = l
	}
}

func WithUsageLogger(l *usage.Logger) Option {
	return func(s *Service) {
		s.usage = l
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPromptMode(mode prompt.Mode) Option {
	return func(s *Service) {
		s.mode = mode
	}
}

// WithMaxHistory sets how many trailing messages are sent to the model.
func WithMaxHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

func WithMaxOutputTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxOutputTokens = n
		}
	}
}

// WithTimeout bounds one streamed reply.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
