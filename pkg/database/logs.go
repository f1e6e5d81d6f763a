package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type LogEntry struct {
	ID        int64           `json:"id"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

// SessionLogs returns the most recent log records for a session, oldest
// first.
func (db *PostgresDB) SessionLogs(ctx context.Context, sessionID string, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `
		SELECT id, source, timestamp, level, message, metadata
		FROM (
			SELECT id, source, timestamp, level, message, metadata
			FROM research_logs
			WHERE session_id = $1
			ORDER BY id DESC
			LIMIT $2
		) recent
		ORDER BY id ASC
	`
	rows, err := db.Pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var l LogEntry
		if err := rows.Scan(&l.ID, &l.Source, &l.Timestamp, &l.Level, &l.Message, &l.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
