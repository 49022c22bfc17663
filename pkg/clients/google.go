package clients

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/genai"
)

// GoogleModel streams from Gemini through the genai SDK.
type GoogleModel struct {
	client *genai.Client
	model  string
}

func NewGoogleModel(ctx context.Context, apiKey, model string) (*GoogleModel, error) {
	if model == "" {
		model = DefaultGoogleModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GoogleModel{client: client, model: model}, nil
}

func (g *GoogleModel) Name() string {
	return ProviderGoogle + "/" + g.model
}

func (g *GoogleModel) Stream(ctx context.Context, req Request) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		cfg := &genai.GenerateContentConfig{}
		if req.System != "" {
			cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
		}
		if req.MaxOutputTokens > 0 {
			cfg.MaxOutputTokens = int32(req.MaxOutputTokens)
		}

		var usage *Usage
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, toGenaiContents(req.Messages), cfg) {
			if err != nil {
				yield(Chunk{}, wrapGenaiError(err))
				return
			}

			if resp.UsageMetadata != nil {
				usage = &Usage{
					InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
					OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
				}
			}

			if text := responseText(resp); text != "" {
				if !yield(Chunk{Text: text}, nil) {
					return
				}
			}
		}

		if usage != nil {
			yield(Chunk{Usage: usage}, nil)
		}
	}
}

func toGenaiContents(msgs []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		if m.Text == "" {
			continue
		}
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Text}},
		})
	}
	return contents
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	text := ""
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			text += p.Text
		}
	}
	return text
}

func wrapGenaiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: ProviderGoogle, StatusCode: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &APIError{Provider: ProviderGoogle, StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}
	}
	return &APIError{Provider: ProviderGoogle, StatusCode: statusFromMessage(err.Error()), Message: err.Error(), Err: err}
}
