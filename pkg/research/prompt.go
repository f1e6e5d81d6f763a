package research

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

const systemPrompt = `You are a research assistant that will help generate a research paper.
Answer the user query and use necessary tools.
Wrap the output in this format and provide no other text
{{.format_instructions}}`

// Prompt renders the conversation sent to the model: system instructions,
// prior turns, the current query and the agent scratchpad, in that order.
type Prompt struct {
	template prompts.ChatPromptTemplate
}

func NewPrompt() *Prompt {
	tmpl := prompts.NewChatPromptTemplate([]prompts.MessageFormatter{
		prompts.NewSystemMessagePromptTemplate(systemPrompt, nil),
		prompts.MessagesPlaceholder{VariableName: "chat_history"},
		prompts.NewHumanMessagePromptTemplate("{{.query}}", []string{"query"}),
		prompts.MessagesPlaceholder{VariableName: "agent_scratchpad"},
	})
	tmpl.PartialVariables = map[string]any{
		"format_instructions": FormatInstructions(),
	}
	return &Prompt{template: tmpl}
}

// Messages renders the prompt. scratchpad may be nil.
func (p *Prompt) Messages(history []Turn, query string, scratchpad []llms.ChatMessage) ([]llms.ChatMessage, error) {
	if scratchpad == nil {
		scratchpad = []llms.ChatMessage{}
	}
	msgs, err := p.template.FormatMessages(map[string]any{
		"chat_history":     HistoryMessages(history),
		"query":            query,
		"agent_scratchpad": scratchpad,
	})
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}
	return msgs, nil
}

// HistoryMessages converts conversation turns into chat messages.
func HistoryMessages(history []Turn) []llms.ChatMessage {
	msgs := make([]llms.ChatMessage, 0, len(history))
	for _, t := range history {
		if t.Role == RoleUser {
			msgs = append(msgs, llms.HumanChatMessage{Content: t.Content()})
			continue
		}
		msgs = append(msgs, llms.AIChatMessage{Content: t.Content()})
	}
	return msgs
}
