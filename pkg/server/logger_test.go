package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

type recordedExec struct {
	args [][]any
	err  error
}

func (r *recordedExec) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.args = append(r.args, args)
	return pgconn.CommandTag{}, r.err
}

func TestDBLogHandler(t *testing.T) {
	rec := &recordedExec{}
	h := &DBLogHandler{exec: rec, source: "server", level: slog.LevelInfo}
	logger := slog.New(h).With(SessionAttr, "abc", "route", "/chat")

	logger.Debug("ignored")
	logger.WithGroup("tool").Info("Tool call", "name", "search", "error", errors.New("boom"))

	require.Len(t, rec.args, 1)
	args := rec.args[0]
	require.Len(t, args, 6)

	session, ok := args[0].(*string)
	require.True(t, ok)
	assert.Equal(t, "abc", *session)
	assert.Equal(t, "server", args[1])
	assert.Equal(t, "INFO", args[3])
	assert.Equal(t, "Tool call", args[4])

	var meta map[string]any
	require.NoError(t, json.Unmarshal(args[5].([]byte), &meta))
	assert.Equal(t, "/chat", meta["route"])
	assert.Equal(t, map[string]any{"name": "search", "error": "boom"}, meta["tool"])
}

func TestDBLogHandlerWithoutSession(t *testing.T) {
	rec := &recordedExec{err: errors.New("db down")}
	h := &DBLogHandler{exec: rec, source: "cli", level: slog.LevelWarn}

	err := h.Handle(context.Background(), slog.NewRecord(testTime, slog.LevelWarn, "careful", 0))

	assert.EqualError(t, err, "db down")
	require.Len(t, rec.args, 1)
	assert.Nil(t, rec.args[0][0].(*string))
}
