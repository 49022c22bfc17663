package database

import (
	"context"
	"fmt"
)

func (db *PostgresDB) InitSchema(ctx context.Context) error {
	// 1. Chat Logs Table
	logsQuery := `
		CREATE TABLE IF NOT EXISTS chat_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			ip TEXT NOT NULL,
			user_message TEXT NOT NULL,
			assistant_message TEXT NOT NULL,
			estimated_cost_inr NUMERIC(12, 2) NOT NULL DEFAULT 0,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			summit_day SMALLINT NOT NULL,
			user_profile JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
	if _, err := db.Pool.Exec(ctx, logsQuery); err != nil {
		return fmt.Errorf("failed to create chat_logs table: %w", err)
	}

	// Indexes for the daily cost report
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_chat_logs_created_at ON chat_logs(created_at DESC)"); err != nil {
		return fmt.Errorf("failed to create index on chat_logs: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_chat_logs_summit_day ON chat_logs(summit_day)"); err != nil {
		return fmt.Errorf("failed to create index on chat_logs: %w", err)
	}

	return nil
}
