package chat

import (
	"github.com/mikeboe/research-assistant/pkg/config"
	"github.com/mikeboe/research-assistant/pkg/research"
	"github.com/mikeboe/research-assistant/pkg/research/tools"
)

// NewToolset builds the search, Wikipedia and save tools from cfg.
func NewToolset(cfg *config.Config) *tools.ResearchToolset {
	return tools.NewResearchToolset(
		tools.NewWebSearcher(cfg.SearchMaxResults),
		tools.NewWikipedia(cfg.WikiLang, cfg.WikiMaxChars),
		tools.NewFileSaver(cfg.OutputFile),
	)
}

// NewEngine wires a Gemini-backed Service with the research tools into a
// ResearchEngine.
func NewEngine(cfg *config.Config, mode research.Strictness, ts *tools.ResearchToolset) *research.ResearchEngine {
	svc := NewService(cfg.GoogleApiKey, cfg.Model, research.NewPrompt(), ts)

	engine := research.NewEngine(svc, mode)
	engine.HistoryTurns = cfg.HistoryTurns
	engine.Timeout = cfg.AgentTimeout
	return engine
}
