// Package clients wraps the language-model providers behind one streaming
// interface so the chat service does not depend on any vendor SDK.
package clients

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
)

// Provider names accepted by New.
const (
	ProviderGoogle = "google"
	ProviderGroq   = "groq"
)

// Default models per provider.
const (
	DefaultGoogleModel = "gemini-2.0-flash-lite"
	DefaultGroqModel   = "llama-3.3-70b-specdec"
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
)

var (
	ErrUnknownProvider = errors.New("unknown model provider")
	ErrMissingAPIKey   = errors.New("model API key is not set")
)

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role Role
	Text string
}

// Request is one stateless completion: a system instruction plus the history,
// whose last entry is normally the user's question.
type Request struct {
	System          string
	Messages        []Message
	MaxOutputTokens int
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Chunk is one streamed piece. Text carries a delta; Usage is set at most once,
// usually on the final chunk.
type Chunk struct {
	Text  string
	Usage *Usage
}

// StreamModel produces a streamed completion. The sequence ends after the
// first error.
type StreamModel interface {
	Name() string
	Stream(ctx context.Context, req Request) iter.Seq2[Chunk, error]
}

// APIError is a provider failure normalised to an HTTP-like status.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the upstream status, or 500 when none was reported.
func (e *APIError) HTTPStatus() int {
	if e.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// unconfigured stands in when the API key is missing, so the server still
// starts and every chat fails with an auth error.
type unconfigured struct {
	provider string
}

func (u unconfigured) Name() string {
	return u.provider + "/unconfigured"
}

func (u unconfigured) Stream(context.Context, Request) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		yield(Chunk{}, &APIError{
			Provider:   u.provider,
			StatusCode: http.StatusUnauthorized,
			Message:    ErrMissingAPIKey.Error(),
			Err:        ErrMissingAPIKey,
		})
	}
}
