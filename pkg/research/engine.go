package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Request is one query plus the prior turns of its conversation.
type Request struct {
	Query   string
	History []Turn
}

// Response is the agent's final answer and the tool calls made on the way.
type Response struct {
	Output RawOutput
	Steps  []ToolStep
}

// Invoker runs the tool-using agent once.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

type ResearchEngine struct {
	Invoker      Invoker
	Mode         Strictness
	HistoryTurns int
	Timeout      time.Duration
	Logger       *slog.Logger
}

func NewEngine(invoker Invoker, mode Strictness) *ResearchEngine {
	return &ResearchEngine{
		Invoker:      invoker,
		Mode:         mode,
		HistoryTurns: 6,
		Logger:       slog.Default(),
	}
}

// Run answers query. Invocation and configuration errors are returned as
// errors; an answer that cannot be parsed is reported in the Outcome.
func (e *ResearchEngine) Run(ctx context.Context, query string, history []Turn) (Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Outcome{}, ErrEmptyQuery
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	history = recent(history, e.HistoryTurns)
	e.Logger.Info("Starting research", "query", query, "history_turns", len(history), "mode", e.Mode.String())

	start := time.Now()
	resp, err := e.Invoker.Invoke(ctx, Request{Query: query, History: history})
	if err != nil {
		if !errors.Is(err, ErrConfiguration) && !errors.Is(err, ErrAgentInvocation) {
			err = fmt.Errorf("%w: %w", ErrAgentInvocation, err)
		}
		e.Logger.Error("Agent invocation failed", "error", err)
		return Outcome{}, err
	}

	for _, step := range resp.Steps {
		e.Logger.Debug("Tool call", "tool", step.Tool, "args", step.Args)
	}

	outcome := Repair(resp.Output, e.Mode)
	if outcome.OK() {
		e.Logger.Info("Research complete", "topic", outcome.Result.Topic, "sources", len(outcome.Result.Sources), "duration", time.Since(start))
	} else {
		e.Logger.Warn("Could not parse agent answer", "error", outcome.Failure.Err)
	}
	return outcome, nil
}

// recent returns the last n turns. n <= 0 means none.
func recent(history []Turn, n int) []Turn {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
