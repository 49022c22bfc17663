package clients

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mikeboe/summit-buddy/pkg/config"
)

// New builds the model selected by cfg.LLMProvider. A missing API key is not
// fatal: the returned model fails every request with a 401.
func New(ctx context.Context, cfg *config.Config) (StreamModel, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if provider == "" {
		provider = ProviderGoogle
	}

	switch provider {
	case ProviderGoogle:
		if cfg.GoogleAPIKey == "" {
			slog.Warn("GOOGLE_API_KEY is not set, chat will fail until it is configured")
			return unconfigured{provider: provider}, nil
		}
		return NewGoogleModel(ctx, cfg.GoogleAPIKey, cfg.GoogleModel)
	case ProviderGroq:
		if cfg.GroqAPIKey == "" {
			slog.Warn("GROQ_API_KEY is not set, chat will fail until it is configured")
			return unconfigured{provider: provider}, nil
		}
		return NewGroqModel(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.LLMProvider)
	}
}
