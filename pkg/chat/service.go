package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"github.com/mikeboe/research-assistant/pkg/clients"
	"github.com/mikeboe/research-assistant/pkg/research"
)

const (
	appName   = "research-assistant"
	agentName = "research_assistant"
	userID    = "user"
)

// ModelFactory builds the LLM on first use.
type ModelFactory func(ctx context.Context) (model.LLM, error)

// Service runs the tool-using research agent. It implements research.Invoker.
type Service struct {
	prompt   *research.Prompt
	toolsets []tool.Toolset
	newModel ModelFactory
	Logger   *slog.Logger

	mu    sync.Mutex
	agent agent.Agent
}

func NewService(apiKey, modelName string, prompt *research.Prompt, toolsets ...tool.Toolset) *Service {
	return &Service{
		prompt:   prompt,
		toolsets: toolsets,
		newModel: func(ctx context.Context) (model.LLM, error) {
			return clients.Gemini(ctx, apiKey, modelName)
		},
		Logger: slog.Default(),
	}
}

// ensureAgent creates the agent once. A failed attempt is retried on the
// next call.
func (s *Service) ensureAgent(ctx context.Context, instruction string) (agent.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.agent != nil {
		return s.agent, nil
	}

	llm, err := s.newModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", research.ErrConfiguration, err)
	}

	a, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       llm,
		Description: "A research assistant that searches the web and Wikipedia and answers in JSON.",
		Instruction: instruction,
		Toolsets:    s.toolsets,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create agent: %w", research.ErrConfiguration, err)
	}
	s.agent = a
	return a, nil
}

func (s *Service) Invoke(ctx context.Context, req research.Request) (*research.Response, error) {
	msgs, err := s.prompt.Messages(req.History, req.Query, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", research.ErrAgentInvocation, err)
	}
	instruction, history, query, err := splitPrompt(msgs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", research.ErrAgentInvocation, err)
	}

	a, err := s.ensureAgent(ctx, instruction)
	if err != nil {
		return nil, err
	}

	// Each call gets a fresh in-memory session hydrated with the prior turns.
	sessionSvc := session.InMemoryService()
	sessionID := uuid.NewString()
	createRes, err := sessionSvc.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create session: %w", research.ErrAgentInvocation, err)
	}

	for _, content := range history {
		evt := session.NewEvent(uuid.NewString())
		evt.Author = userID
		if content.Role == genai.RoleModel {
			evt.Author = agentName
		}
		evt.LLMResponse = model.LLMResponse{Content: content}
		if err := sessionSvc.AppendEvent(ctx, createRes.Session, evt); err != nil {
			return nil, fmt.Errorf("%w: failed to load history: %w", research.ErrAgentInvocation, err)
		}
	}

	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          a,
		SessionService: sessionSvc,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create runner: %w", research.ErrAgentInvocation, err)
	}

	s.Logger.Info("Starting agent run", "session_id", sessionID, "history", len(history))

	var t transcript
	for event, err := range r.Run(ctx, userID, sessionID, query, agent.RunConfig{}) {
		if err != nil {
			s.Logger.Error("Agent runner error", "error", err)
			return nil, fmt.Errorf("%w: %w", research.ErrAgentInvocation, err)
		}
		t.add(event)
	}

	resp := t.response()
	s.Logger.Info("Agent run completed", "events", t.events, "tool_calls", len(resp.Steps))
	return resp, nil
}

// splitPrompt maps rendered prompt messages onto the agent: the system
// message becomes the instruction, prior messages become session history
// and the last human message is the new user content.
func splitPrompt(msgs []llms.ChatMessage) (string, []*genai.Content, *genai.Content, error) {
	var (
		instruction string
		contents    []*genai.Content
	)
	for _, m := range msgs {
		switch m.GetType() {
		case llms.ChatMessageTypeSystem:
			instruction = m.GetContent()
		case llms.ChatMessageTypeHuman:
			contents = append(contents, genai.NewContentFromText(m.GetContent(), genai.RoleUser))
		case llms.ChatMessageTypeAI:
			contents = append(contents, genai.NewContentFromText(m.GetContent(), genai.RoleModel))
		}
	}

	last := -1
	for i := len(contents) - 1; i >= 0; i-- {
		if contents[i].Role == genai.RoleUser {
			last = i
			break
		}
	}
	if last < 0 {
		return "", nil, nil, fmt.Errorf("prompt has no user message")
	}
	// Messages after the query are scratchpad entries; the runner keeps its
	// own, so they are dropped.
	return instruction, contents[:last], contents[last], nil
}

// transcript accumulates runner events into a research.Response.
type transcript struct {
	events int
	steps  []research.ToolStep
	final  *genai.Content
	last   *session.Event
}

func (t *transcript) add(event *session.Event) {
	if event == nil {
		return
	}
	t.events++
	t.last = event

	content := event.LLMResponse.Content
	if content == nil {
		return
	}

	hasText, hasCall := false, false
	for _, part := range content.Parts {
		switch {
		case part.FunctionCall != nil:
			hasCall = true
			slog.Info("Agent tool call", "tool", part.FunctionCall.Name)
			t.steps = append(t.steps, research.ToolStep{
				Tool: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		case part.FunctionResponse != nil:
			hasCall = true
			slog.Info("Agent tool result", "tool", part.FunctionResponse.Name)
			t.attachResult(part.FunctionResponse.Name, part.FunctionResponse.Response)
		case part.Text != "" && !part.Thought:
			hasText = true
		}
	}
	if hasText && !hasCall {
		t.final = content
	}
}

func (t *transcript) attachResult(name string, result map[string]any) {
	for i := len(t.steps) - 1; i >= 0; i-- {
		if t.steps[i].Tool == name && t.steps[i].Result == nil {
			t.steps[i].Result = result
			return
		}
	}
	t.steps = append(t.steps, research.ToolStep{Tool: name, Result: result})
}

func (t *transcript) response() *research.Response {
	return &research.Response{Output: t.output(), Steps: t.steps}
}

// output picks the raw answer: joined text when the final content is all
// text, the parts themselves when mixed, and an opaque summary when the
// agent never produced a text answer.
func (t *transcript) output() research.RawOutput {
	if t.final == nil {
		summary := map[string]any{"output": nil, "events": t.events}
		if t.last != nil {
			summary["author"] = t.last.Author
		}
		return research.OpaqueOutput{Value: summary}
	}

	var (
		text    string
		allText = true
	)
	for _, part := range t.final.Parts {
		if part.Thought {
			continue
		}
		if part.Text == "" {
			allText = false
			continue
		}
		text += part.Text
	}
	if allText {
		return research.TextOutput{Text: text}
	}

	parts := make([]any, 0, len(t.final.Parts))
	for _, part := range t.final.Parts {
		var m map[string]any
		b, err := json.Marshal(part)
		if err == nil && json.Unmarshal(b, &m) == nil {
			parts = append(parts, m)
		}
	}
	return research.PartsOutput{Parts: parts}
}
