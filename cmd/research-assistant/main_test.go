package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/research-assistant/pkg/config"
	"github.com/mikeboe/research-assistant/pkg/research"
)

func TestReadQuery(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "line", input: "quantum computing\n", want: "quantum computing"},
		{name: "no newline", input: "  black holes ", want: "black holes"},
		{name: "only first line", input: "first\nsecond\n", want: "first"},
		{name: "empty", input: "\n", wantErr: research.ErrEmptyQuery},
		{name: "eof", input: "", wantErr: research.ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := readQuery(strings.NewReader(tt.input), &out)
			assert.Equal(t, "What can i help you research? ", out.String())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewEngineOverrides(t *testing.T) {
	t.Cleanup(func() { strict, outputFile = false, "" })

	cfg := &config.Config{ParseMode: "lenient", HistoryTurns: 6, OutputFile: "default.txt"}
	engine, err := newEngine(cfg)
	require.NoError(t, err)
	assert.Equal(t, research.Lenient, engine.Mode)

	strict, outputFile = true, "notes.txt"
	engine, err = newEngine(cfg)
	require.NoError(t, err)
	assert.Equal(t, research.Strict, engine.Mode)
	assert.Equal(t, "notes.txt", cfg.OutputFile)

	_, err = newEngine(&config.Config{ParseMode: "sloppy"})
	assert.ErrorIs(t, err, research.ErrConfiguration)
}
