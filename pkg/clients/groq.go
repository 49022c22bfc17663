package clients

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// GroqModel streams from Groq's OpenAI-compatible endpoint through langchaingo.
type GroqModel struct {
	llm   llms.Model
	model string
}

func NewGroqModel(apiKey, model, baseURL string) (*GroqModel, error) {
	if model == "" {
		model = DefaultGroqModel
	}
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithBaseURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Groq client: %w", err)
	}

	return &GroqModel{llm: llm, model: model}, nil
}

func (g *GroqModel) Name() string {
	return ProviderGroq + "/" + g.model
}

type groqResult struct {
	resp *llms.ContentResponse
	err  error
}

func (g *GroqModel) Stream(ctx context.Context, req Request) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		opts := []llms.CallOption{}
		if req.MaxOutputTokens > 0 {
			opts = append(opts, llms.WithMaxTokens(req.MaxOutputTokens))
		}

		deltas := make(chan string)
		done := make(chan groqResult, 1)
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			select {
			case deltas <- string(chunk):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}))

		go func() {
			defer close(deltas)
			resp, err := g.llm.GenerateContent(ctx, toLLMMessages(req), opts...)
			done <- groqResult{resp: resp, err: err}
		}()

		for text := range deltas {
			if text == "" {
				continue
			}
			if !yield(Chunk{Text: text}, nil) {
				return
			}
		}

		res := <-done
		if res.err != nil {
			yield(Chunk{}, wrapGroqError(res.err))
			return
		}
		if usage := usageFromResponse(res.resp); usage != nil {
			yield(Chunk{Usage: usage}, nil)
		}
	}
}

func toLLMMessages(req Request) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, m := range req.Messages {
		if m.Text == "" {
			continue
		}
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(role, m.Text))
	}
	return msgs
}

func usageFromResponse(resp *llms.ContentResponse) *Usage {
	if resp == nil || len(resp.Choices) == 0 {
		return nil
	}
	info := resp.Choices[0].GenerationInfo
	in, okIn := intFromInfo(info, "PromptTokens")
	out, okOut := intFromInfo(info, "CompletionTokens")
	if !okIn && !okOut {
		return nil
	}
	return &Usage{InputTokens: in, OutputTokens: out}
}

func intFromInfo(info map[string]any, key string) (int, bool) {
	switch v := info[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

var statusPattern = regexp.MustCompile(`status code:? (\d{3})`)

// statusFromMessage recovers the HTTP status from SDK errors that only carry
// it in their text.
func statusFromMessage(msg string) int {
	m := statusPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return code
}

func wrapGroqError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Provider: ProviderGroq, StatusCode: statusFromMessage(err.Error()), Message: err.Error(), Err: err}
}
