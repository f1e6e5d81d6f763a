package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mikeboe/research-assistant/pkg/database"
)

// SessionAttr is the log attribute stored in the session_id column.
const SessionAttr = "session"

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DBLogHandler is a slog.Handler that writes records to the research_logs
// table.
type DBLogHandler struct {
	exec   execer
	source string
	level  slog.Leveler
	attrs  []groupedAttr
	groups []string
}

type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

func NewDBLogHandler(db *database.PostgresDB, source string, level slog.Leveler) *DBLogHandler {
	return &DBLogHandler{exec: db.Pool, source: source, level: level}
}

func (h *DBLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *DBLogHandler) Handle(ctx context.Context, r slog.Record) error {
	meta := make(map[string]any)
	var sessionID *string

	add := func(groups []string, a slog.Attr) {
		if a.Key == SessionAttr && len(groups) == 0 {
			s := a.Value.String()
			sessionID = &s
			return
		}
		put(meta, groups, a)
	}
	for _, ga := range h.attrs {
		add(ga.groups, ga.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(h.groups, a)
		return true
	})

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	query := `
		INSERT INTO research_logs (session_id, source, timestamp, level, message, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// Detached from the request context so records survive cancellation.
	insertCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = h.exec.Exec(insertCtx, query, sessionID, h.source, r.Time, r.Level.String(), r.Message, metaJSON)
	return err
}

func put(meta map[string]any, groups []string, a slog.Attr) {
	for _, g := range groups {
		sub, ok := meta[g].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			meta[g] = sub
		}
		meta = sub
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		sub := make(map[string]any)
		for _, ga := range v.Group() {
			put(sub, nil, ga)
		}
		meta[a.Key] = sub
		return
	}
	if err, ok := v.Any().(error); ok {
		meta[a.Key] = err.Error()
		return
	}
	meta[a.Key] = v.Any()
}

func (h *DBLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]groupedAttr{}, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, groupedAttr{groups: h.groups, attr: a})
	}
	return &next
}

func (h *DBLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}
