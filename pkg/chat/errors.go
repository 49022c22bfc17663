package chat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/mikeboe/summit-buddy/pkg/clients"
	"github.com/mikeboe/summit-buddy/pkg/metrics"
)

// User-facing messages. Provider details are only ever logged.
const (
	MsgRateLimited   = "You're sending messages too quickly. Please wait a moment and try again."
	MsgUpstreamBusy  = "The assistant is busy right now. Please try again in a minute."
	MsgTooLong       = "This conversation is too long. Please start a new conversation."
	MsgMisconfigured = "The assistant is not configured correctly. Please contact the organizers."
	MsgGeneric       = "Something went wrong. Please try again."
	MsgNoMessages    = "Please send at least one message."
)

// UpstreamRetryAfter is suggested to clients when the provider rate limits us.
const UpstreamRetryAfter = 60 * time.Second

// Error is a failure that maps to an HTTP response.
type Error struct {
	Status     int
	Message    string
	RetryAfter time.Duration
	Err        error

	outcome string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chat: %d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("chat: %d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds; 0 when unset.
func (e *Error) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

// classify maps a provider failure onto the user-facing error set. The
// status code wins; message text is only consulted when it is inconclusive.
func classify(err error) *Error {
	status := 0
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return upstreamBusy(err)
	case http.StatusRequestEntityTooLarge:
		return tooLong(err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return misconfigured(err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case isContextTooLarge(msg):
		return tooLong(err)
	case strings.Contains(msg, "api key") || strings.Contains(msg, "api_key"):
		return misconfigured(err)
	case strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "rate limit"):
		return upstreamBusy(err)
	case errors.Is(err, context.Canceled):
		return &Error{Status: http.StatusInternalServerError, Message: MsgGeneric, Err: err, outcome: metrics.OutcomeCancelled}
	default:
		return &Error{Status: http.StatusInternalServerError, Message: MsgGeneric, Err: err, outcome: metrics.OutcomeError}
	}
}

func upstreamBusy(err error) *Error {
	return &Error{Status: http.StatusTooManyRequests, Message: MsgUpstreamBusy, RetryAfter: UpstreamRetryAfter, Err: err, outcome: metrics.OutcomeUpstreamBusy}
}

func tooLong(err error) *Error {
	return &Error{Status: http.StatusRequestEntityTooLarge, Message: MsgTooLong, Err: err, outcome: metrics.OutcomeTooLong}
}

func misconfigured(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: MsgMisconfigured, Err: err, outcome: metrics.OutcomeMisconfigured}
}

func isContextTooLarge(msg string) bool {
	return strings.Contains(msg, "context_length_exceeded") ||
		strings.Contains(msg, "context length") ||
		strings.Contains(msg, "request too large") ||
		(strings.Contains(msg, "token") && strings.Contains(msg, "exceed"))
}
