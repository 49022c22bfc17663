package usage

import (
	"context"
	"fmt"

	"github.com/mikeboe/summit-buddy/pkg/database"
)

// PostgresSink writes entries to the chat_logs table.
type PostgresSink struct {
	DB *database.PostgresDB
}

func NewPostgresSink(db *database.PostgresDB) *PostgresSink {
	return &PostgresSink{DB: db}
}

func (s *PostgresSink) Insert(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO chat_logs (id, ip, user_message, assistant_message, estimated_cost_inr,
			input_tokens, output_tokens, summit_day, user_profile, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var profile any
	if len(e.Profile) > 0 {
		profile = string(e.Profile)
	}

	_, err := s.DB.Pool.Exec(ctx, query,
		e.ID, e.ClientKey, e.UserMessage, e.AssistantMessage, e.EstimatedCostINR,
		e.InputTokens, e.OutputTokens, e.SummitDay, profile, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat log: %w", err)
	}
	return nil
}
