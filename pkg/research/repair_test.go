package research

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairValidJSON(t *testing.T) {
	raw := TextOutput{Text: `{"topic": "Quantum", "summary": "Qubits.", "sources": ["https://a.example"], "tools_used": ["search"]}`}

	for _, mode := range []Strictness{Strict, Lenient} {
		t.Run(mode.String(), func(t *testing.T) {
			out := Repair(raw, mode)
			require.True(t, out.OK())
			assert.Nil(t, out.Failure)
			assert.Equal(t, &ResearchResult{
				Topic:     "Quantum",
				Summary:   "Qubits.",
				Sources:   []string{"https://a.example"},
				ToolsUsed: []string{"search"},
			}, out.Result)
		})
	}
}

func TestRepairFencedWithTrailingCommas(t *testing.T) {
	raw := TextOutput{Text: "Here you go:\n```json\n{\"topic\": \"X\", \"summary\": \"Y\", \"sources\": [\"a\",], \"tools_used\": [],}\n```\nDone."}

	out := Repair(raw, Strict)

	require.True(t, out.OK())
	assert.Equal(t, &ResearchResult{Topic: "X", Summary: "Y", Sources: []string{"a"}, ToolsUsed: []string{}}, out.Result)
}

func TestRepairKeepsCommasInsideStrings(t *testing.T) {
	summary := "Python allows [1, 2, ] and {a, } trailing commas."
	raw := TextOutput{Text: `{"topic": "Commas", "summary": "` + summary + `", "sources": ["x, ]"], "tools_used": []}`}

	for _, mode := range []Strictness{Strict, Lenient} {
		t.Run(mode.String(), func(t *testing.T) {
			out := Repair(raw, mode)
			require.True(t, out.OK())
			assert.Equal(t, summary, out.Result.Summary)
			assert.Equal(t, []string{"x, ]"}, out.Result.Sources)
		})
	}
}

func TestRepairOuterObjectKeepsCommasInsideStrings(t *testing.T) {
	raw := TextOutput{Text: `Result: {"topic": "T", "summary": "lists like [1, ] are fine", "sources": [], "tools_used": []} bye`}

	out := Repair(raw, Strict)

	require.True(t, out.OK())
	assert.Equal(t, "lists like [1, ] are fine", out.Result.Summary)
}

func TestRepairNoiseFails(t *testing.T) {
	text := "I could not finish."

	out := Repair(TextOutput{Text: text}, Lenient)

	assert.False(t, out.OK())
	require.NotNil(t, out.Failure)
	assert.Equal(t, text, out.Failure.Raw)
	var violation *SchemaViolation
	assert.True(t, errors.As(out.Failure, &violation))
}

func TestRepairMissingFields(t *testing.T) {
	raw := TextOutput{Text: "```json\n{\"topic\": \"Only topic\"}\n```"}

	lenient := Repair(raw, Lenient)
	require.True(t, lenient.OK())
	assert.Equal(t, &ResearchResult{
		Topic:     "Only topic",
		Summary:   "No summary available",
		Sources:   []string{},
		ToolsUsed: []string{},
	}, lenient.Result)

	strict := Repair(raw, Strict)
	require.False(t, strict.OK())
	var violation *SchemaViolation
	require.True(t, errors.As(strict.Failure, &violation))
	assert.Equal(t, "summary", violation.Field)
	assert.Equal(t, raw.Text, strict.Failure.Raw)
}

func TestRepairLenientDefaultsAll(t *testing.T) {
	out := Repair(TextOutput{Text: `{"topic": null, "sources": ["a"]}`}, Lenient)

	require.True(t, out.OK())
	assert.Equal(t, "Unknown Topic", out.Result.Topic)
	assert.Equal(t, "No summary available", out.Result.Summary)
	assert.Equal(t, []string{"a"}, out.Result.Sources)
}

func TestRepairLenientRejectsUnrelatedObject(t *testing.T) {
	out := Repair(TextOutput{Text: `{"answer": "42"}`}, Lenient)

	require.False(t, out.OK())
	assert.Equal(t, `{"answer": "42"}`, out.Failure.Raw)
}

func TestRepairWrongTypeFailsInBothModes(t *testing.T) {
	raw := TextOutput{Text: `{"topic": "T", "summary": "S", "sources": "not a list", "tools_used": []}`}

	for _, mode := range []Strictness{Strict, Lenient} {
		out := Repair(raw, mode)
		require.False(t, out.OK(), mode.String())
		var violation *SchemaViolation
		require.True(t, errors.As(out.Failure, &violation))
		assert.Equal(t, "sources", violation.Field)
	}
}

func TestRepairExtraFieldsIgnored(t *testing.T) {
	out := Repair(TextOutput{Text: `{"topic": "T", "summary": "S", "sources": [], "tools_used": [], "confidence": 0.9}`}, Strict)

	require.True(t, out.OK())
	assert.Equal(t, "T", out.Result.Topic)
}

func TestRepairOuterObjectFallback(t *testing.T) {
	raw := TextOutput{Text: `Sure! {"topic": "T", "summary": "S", "sources": [], "tools_used": ["wikipedia"]} Hope that helps.`}

	out := Repair(raw, Strict)

	require.True(t, out.OK())
	assert.Equal(t, []string{"wikipedia"}, out.Result.ToolsUsed)
}

func TestCandidateText(t *testing.T) {
	tests := []struct {
		name string
		raw  RawOutput
		want string
	}{
		{"text", TextOutput{Text: "hello"}, "hello"},
		{"text pointer", &TextOutput{Text: "hello"}, "hello"},
		{"parts with text", PartsOutput{Parts: []any{map[string]any{"text": "first"}, map[string]any{"text": "second"}}}, "first"},
		{"parts without text", PartsOutput{Parts: []any{map[string]any{"code": "x"}}}, `{"code":"x"}`},
		{"string first part", PartsOutput{Parts: []any{"plain first", map[string]any{"text": "second"}}}, "plain first"},
		{"non-string text", PartsOutput{Parts: []any{map[string]any{"text": 42}}}, "42"},
		{"empty text", PartsOutput{Parts: []any{map[string]any{"text": ""}, map[string]any{"text": "second"}}}, `{"text":""}`},
		{"empty parts", PartsOutput{}, "null"},
		{"opaque map", OpaqueOutput{Value: map[string]any{"output": "x"}}, `{"output":"x"}`},
		{"opaque string", OpaqueOutput{Value: "plain"}, "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateText(tt.raw))
		})
	}
}

func TestRepairPartsOutput(t *testing.T) {
	raw := PartsOutput{Parts: []any{map[string]any{"text": `{"topic": "P", "summary": "S", "sources": [], "tools_used": []}`}}}

	out := Repair(raw, Strict)

	require.True(t, out.OK())
	assert.Equal(t, "P", out.Result.Topic)
}

func TestRepairOpaqueOutputFails(t *testing.T) {
	out := Repair(OpaqueOutput{Value: map[string]any{"output": nil}}, Strict)

	require.False(t, out.OK())
	assert.Equal(t, `{"output":null}`, out.Failure.Raw)
}

func TestStripTrailingCommas(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`[1, 2,]`, `[1, 2]`},
		{`{"a": 1 ,  }`, `{"a": 1 }`},
		{"{\"a\": [1,\n]\n,}", "{\"a\": [1]\n}"},
		{`{"a": 1}`, `{"a": 1}`},
	}
	for _, tt := range tests {
		if got := StripTrailingCommas(tt.in); got != tt.want {
			t.Errorf("StripTrailingCommas(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractJSONBlock(t *testing.T) {
	body, ok := ExtractJSONBlock("before ```json\n {\"a\": 1} \n``` after ```json\n{\"b\": 2}\n```")
	assert.True(t, ok)
	assert.Equal(t, `{"a": 1}`, body)

	body, ok = ExtractJSONBlock("no fence here")
	assert.False(t, ok)
	assert.Equal(t, "no fence here", body)
}
