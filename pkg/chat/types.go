package chat

import (
	"strings"

	"github.com/mikeboe/summit-buddy/pkg/dataset"
)

// Event types sent to the client.
const (
	EventContent  = "content"
	EventEntities = "entities"
	EventDone     = "done"
	EventError    = "error"
)

// StreamEvent represents a single event in the chat stream
type StreamEvent struct {
	Type    string `json:"type"` // "content", "entities", "error", "done"
	Payload any    `json:"payload"`
}

// Part is one piece of a message. Only text parts are used.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Message is a conversation turn as sent by the web client. Older clients
// send Content instead of Parts.
type Message struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role"`
	Parts   []Part `json:"parts,omitempty"`
	Content string `json:"content,omitempty"`
}

// Text concatenates the text parts, or returns Content when there are none.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == "text" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Request is one chat turn. The server keeps no history; every request
// carries the whole conversation.
type Request struct {
	Messages []Message            `json:"messages"`
	Profile  *dataset.UserProfile `json:"profile,omitempty"`

	// ClientKey identifies the caller for rate limiting and usage rows.
	ClientKey string `json:"-"`
}

// TrimHistory keeps the last n messages.
func TrimHistory(msgs []Message, n int) []Message {
	if n <= 0 || len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// LastUserText returns the text of the most recent user message.
func LastUserText(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			return msgs[i].Text()
		}
	}
	return ""
}
