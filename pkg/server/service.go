package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mikeboe/research-assistant/pkg/database"
	"github.com/mikeboe/research-assistant/pkg/research"
	"github.com/mikeboe/research-assistant/pkg/session"
)

var ErrBusy = errors.New("a query is already running for this session")

// Researcher answers one query given the prior turns.
type Researcher interface {
	Run(ctx context.Context, query string, history []research.Turn) (research.Outcome, error)
}

// LogReader reads back stored log records for a session.
type LogReader interface {
	SessionLogs(ctx context.Context, sessionID string, limit int) ([]database.LogEntry, error)
}

type Service struct {
	Engine   Researcher
	Sessions *session.Store
	Logs     LogReader
	Logger   *slog.Logger
}

func NewService(engine Researcher, sessions *session.Store, logs LogReader) *Service {
	return &Service{
		Engine:   engine,
		Sessions: sessions,
		Logs:     logs,
		Logger:   slog.Default(),
	}
}

// Ask runs query for a session. On success, or on a parse failure, the user
// turn and the assistant turn are appended to the session history. Any
// returned error leaves the history untouched.
func (s *Service) Ask(ctx context.Context, sessionID, query string) (research.Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return research.Outcome{}, research.ErrEmptyQuery
	}
	if !s.Sessions.Acquire(sessionID) {
		return research.Outcome{}, ErrBusy
	}
	defer s.Sessions.Release(sessionID)

	logger := s.Logger.With(SessionAttr, sessionID)
	history := s.Sessions.Get(sessionID)

	outcome, err := s.Engine.Run(ctx, query, history.Turns())
	if err != nil {
		logger.Error("Research request failed", "error", err)
		return research.Outcome{}, err
	}

	history.Append(research.UserTurn(query), research.AssistantTurn(outcome))
	logger.Info("Research request complete", "parsed", outcome.OK(), "turns", history.Len())
	return outcome, nil
}

func (s *Service) History(sessionID string) []research.Turn {
	return s.Sessions.Get(sessionID).Turns()
}

// Clear empties a session's history. It fails with ErrBusy while a query for
// that session is running, so the running query cannot append after the clear.
func (s *Service) Clear(sessionID string) error {
	if !s.Sessions.Acquire(sessionID) {
		return ErrBusy
	}
	defer s.Sessions.Release(sessionID)

	s.Sessions.Get(sessionID).Clear()
	s.Logger.Info("History cleared", SessionAttr, sessionID)
	return nil
}
