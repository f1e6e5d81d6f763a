package research

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

const formatPreamble = `The output should be formatted as a JSON instance that conforms to the JSON schema below.

As an example, for the schema {"properties": {"foo": {"title": "Foo", "description": "a list of strings", "type": "array", "items": {"type": "string"}}}, "required": ["foo"]}
the object {"foo": ["bar", "baz"]} is a well-formatted instance of the schema. The object {"properties": {"foo": ["bar", "baz"]}} is not well-formatted.

Here is the output schema:
` + "```\n%s\n```"

var (
	formatOnce         sync.Once
	formatInstructions string
)

// ResultSchema returns the JSON schema of ResearchResult.
func ResultSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
		Anonymous:      true,
	}
	s := r.Reflect(&ResearchResult{})
	s.Version = ""
	return json.Marshal(s)
}

// FormatInstructions returns the text that tells the model which JSON shape
// to answer with. It is deterministic.
func FormatInstructions() string {
	formatOnce.Do(func() {
		schema, err := ResultSchema()
		if err != nil {
			// ResearchResult is a fixed struct; reflection cannot fail on it.
			panic(fmt.Sprintf("reflect result schema: %v", err))
		}
		formatInstructions = fmt.Sprintf(formatPreamble, schema)
	})
	return formatInstructions
}

// ParseStrict decodes text into a ResearchResult, requiring every field.
// Null counts as missing. Unknown fields are ignored.
func ParseStrict(text string) (*ResearchResult, error) {
	return parse(text, Strict)
}

// ParseLenient is ParseStrict with defaults for missing fields. A field that
// is present with the wrong type is still an error, and at least one field
// must be present.
func ParseLenient(text string) (*ResearchResult, error) {
	return parse(text, Lenient)
}

func parse(text string, mode Strictness) (*ResearchResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &fields); err != nil {
		return nil, &SchemaViolation{Reason: fmt.Sprintf("invalid JSON object: %v", err)}
	}

	if mode == Lenient && !anyPresent(fields, "topic", "summary", "sources", "tools_used") {
		return nil, &SchemaViolation{Reason: "object has none of the research result fields"}
	}

	var (
		r   ResearchResult
		err error
	)
	if r.Topic, err = stringField(fields, "topic", "Unknown Topic", mode); err != nil {
		return nil, err
	}
	if r.Summary, err = stringField(fields, "summary", "No summary available", mode); err != nil {
		return nil, err
	}
	if r.Sources, err = listField(fields, "sources", mode); err != nil {
		return nil, err
	}
	if r.ToolsUsed, err = listField(fields, "tools_used", mode); err != nil {
		return nil, err
	}
	return &r, nil
}

func anyPresent(fields map[string]json.RawMessage, names ...string) bool {
	for _, name := range names {
		if _, ok := present(fields, name); ok {
			return true
		}
	}
	return false
}

func present(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func stringField(fields map[string]json.RawMessage, name, def string, mode Strictness) (string, error) {
	raw, ok := present(fields, name)
	if !ok {
		if mode == Strict {
			return "", &SchemaViolation{Field: name, Reason: "is required"}
		}
		return def, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &SchemaViolation{Field: name, Reason: "must be a string"}
	}
	return s, nil
}

func listField(fields map[string]json.RawMessage, name string, mode Strictness) ([]string, error) {
	raw, ok := present(fields, name)
	if !ok {
		if mode == Strict {
			return nil, &SchemaViolation{Field: name, Reason: "is required"}
		}
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &SchemaViolation{Field: name, Reason: "must be a list of strings"}
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}
