package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNewHandlerFormats(t *testing.T) {
	var text, js bytes.Buffer
	slog.New(NewHandler(&text, "text", "info")).Info("hello", "k", "v")
	slog.New(NewHandler(&js, "json", "info")).Info("hello", "k", "v")

	assert.Contains(t, text.String(), "msg=hello k=v")
	assert.Contains(t, js.String(), `"msg":"hello","k":"v"`)
}

func TestTee(t *testing.T) {
	var all, errs bytes.Buffer
	logger := slog.New(Tee(
		NewHandler(&all, "text", "debug"),
		NewHandler(&errs, "text", "error"),
	)).With("session", "abc")

	logger.Debug("detail")
	logger.Error("broken")

	assert.Contains(t, all.String(), "msg=detail session=abc")
	assert.Contains(t, all.String(), "msg=broken session=abc")
	assert.NotContains(t, errs.String(), "detail")
	assert.Contains(t, errs.String(), "msg=broken session=abc")
}
