package research

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSchema(t *testing.T) {
	raw, err := ResultSchema()
	require.NoError(t, err)

	var schema struct {
		Type       string                    `json:"type"`
		Required   []string                  `json:"required"`
		Properties map[string]map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(raw, &schema))

	assert.Equal(t, "object", schema.Type)
	assert.ElementsMatch(t, []string{"topic", "summary", "sources", "tools_used"}, schema.Required)
	assert.Equal(t, "string", schema.Properties["topic"]["type"])
	assert.Equal(t, "array", schema.Properties["sources"]["type"])
	assert.NotContains(t, string(raw), "$schema")
}

func TestFormatInstructionsDeterministic(t *testing.T) {
	first := FormatInstructions()
	second := FormatInstructions()

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "The output should be formatted as a JSON instance"))
	assert.Contains(t, first, `"tools_used"`)
}

func TestParseStrict(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantErr   bool
	}{
		{"complete", `{"topic":"t","summary":"s","sources":[],"tools_used":[]}`, "", false},
		{"null topic", `{"topic":null,"summary":"s","sources":[],"tools_used":[]}`, "topic", true},
		{"missing tools", `{"topic":"t","summary":"s","sources":[]}`, "tools_used", true},
		{"numeric summary", `{"topic":"t","summary":5,"sources":[],"tools_used":[]}`, "summary", true},
		{"mixed list", `{"topic":"t","summary":"s","sources":["a",1],"tools_used":[]}`, "sources", true},
		{"array", `[1,2]`, "", true},
		{"not json", `hello`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseStrict(tt.input)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.NotNil(t, r)
				return
			}
			require.Error(t, err)
			violation, ok := err.(*SchemaViolation)
			require.True(t, ok)
			assert.Equal(t, tt.wantField, violation.Field)
		})
	}
}

func TestParseStrictness(t *testing.T) {
	m, err := ParseStrictness("STRICT")
	require.NoError(t, err)
	assert.Equal(t, Strict, m)

	m, err = ParseStrictness("")
	require.NoError(t, err)
	assert.Equal(t, Lenient, m)

	_, err = ParseStrictness("loose")
	assert.ErrorIs(t, err, ErrConfiguration)
}
