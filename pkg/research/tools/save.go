package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// FileSaver appends research output to a text file.
type FileSaver struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
	open func(path string) (io.WriteCloser, error)
}

func openAppend(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func NewFileSaver(path string) *FileSaver {
	if path == "" {
		path = "research_output.txt"
	}
	return &FileSaver{path: path, now: time.Now, open: openAppend}
}

// Save appends a timestamped block containing text and returns a
// confirmation message.
func (f *FileSaver) Save(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := f.open(f.path)
	if err != nil {
		return "", fmt.Errorf("failed to open output file: %w", err)
	}

	block := fmt.Sprintf("--- Research Output ---\nTimestamp: %s\n\n%s\n\n", f.now().Format("2006-01-02 15:04:05"), text)
	if _, err := io.WriteString(file, block); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close output file: %w", err)
	}

	slog.Info("Saved research output", "file", f.path, "bytes", len(text))
	return fmt.Sprintf("Data successfully saved to %s", f.path), nil
}
