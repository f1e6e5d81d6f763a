package database

import (
	"context"
	"fmt"
)

const logsTable = `
	CREATE TABLE IF NOT EXISTS research_logs (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT,
		source TEXT NOT NULL,
		timestamp TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		metadata JSONB
	);
`

// InitSchema creates the log table and its indexes.
func (db *PostgresDB) InitSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, logsTable); err != nil {
		return fmt.Errorf("failed to create research_logs table: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_research_logs_session_id ON research_logs(session_id)"); err != nil {
		return fmt.Errorf("failed to create index on research_logs: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_research_logs_timestamp ON research_logs(timestamp DESC)"); err != nil {
		return fmt.Errorf("failed to create index on research_logs: %w", err)
	}
	return nil
}
