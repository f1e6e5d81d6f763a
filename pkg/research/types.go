package research

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResearchResult is the structured answer the agent is asked to produce.
type ResearchResult struct {
	Topic     string   `json:"topic" jsonschema_description:"The research topic"`
	Summary   string   `json:"summary" jsonschema_description:"A concise summary of the findings"`
	Sources   []string `json:"sources" jsonschema_description:"Sources consulted, as URLs or citations"`
	ToolsUsed []string `json:"tools_used" jsonschema_description:"Names of the tools used to answer"`
}

// Strictness selects how missing fields are treated when parsing.
type Strictness int

const (
	Lenient Strictness = iota
	Strict
)

func (s Strictness) String() string {
	if s == Strict {
		return "strict"
	}
	return "lenient"
}

// ParseStrictness reads "strict" or "lenient". Empty means lenient.
func ParseStrictness(s string) (Strictness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	}
	return Lenient, fmt.Errorf("%w: unknown parse mode %q", ErrConfiguration, s)
}

// RawOutput is whatever the agent produced as its final answer.
type RawOutput interface {
	isRawOutput()
}

// TextOutput is a plain text answer.
type TextOutput struct {
	Text string
}

// PartsOutput is a list of structured content parts, as returned by
// multi-part model responses.
type PartsOutput struct {
	Parts []any
}

// OpaqueOutput is anything else. Its JSON form is used as the candidate text.
type OpaqueOutput struct {
	Value any
}

func (TextOutput) isRawOutput()   {}
func (PartsOutput) isRawOutput()  {}
func (OpaqueOutput) isRawOutput() {}

// ToolStep records one tool call made while answering.
type ToolStep struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
	Result map[string]any `json:"result,omitempty"`
}

// Outcome is the result of repairing a raw agent answer. Exactly one of
// Result and Failure is set.
type Outcome struct {
	Result  *ResearchResult
	Failure *ParseFailure
}

func (o Outcome) OK() bool {
	return o.Result != nil
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrorPlaceholder stands in for an assistant turn whose answer could not be
// parsed.
type ErrorPlaceholder struct {
	Message string `json:"message"`
	Raw     string `json:"raw"`
}

// Turn is one entry of a conversation. User turns carry Text; assistant
// turns carry either Result or Failure.
type Turn struct {
	Role    Role              `json:"role"`
	Text    string            `json:"text,omitempty"`
	Result  *ResearchResult   `json:"result,omitempty"`
	Failure *ErrorPlaceholder `json:"error,omitempty"`
}

func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

func AssistantTurn(o Outcome) Turn {
	if o.OK() {
		r := *o.Result
		return Turn{Role: RoleAssistant, Result: &r}
	}
	t := Turn{Role: RoleAssistant, Failure: &ErrorPlaceholder{}}
	if o.Failure != nil {
		t.Failure.Message = o.Failure.Error()
		t.Failure.Raw = o.Failure.Raw
	}
	return t
}

// Content is the text a turn contributes to the model prompt.
func (t Turn) Content() string {
	switch {
	case t.Role == RoleUser:
		return t.Text
	case t.Result != nil:
		b, err := json.Marshal(t.Result)
		if err != nil {
			return t.Result.Summary
		}
		return string(b)
	case t.Failure != nil:
		return "Error: " + t.Failure.Message
	}
	return ""
}
