package splitter

import (
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

// TextSplitter wraps the langchaingo text splitter
type TextSplitter struct {
	splitter  textsplitter.TextSplitter
	chunkSize int
}

// NewRecursiveCharacterTextSplitter creates a new recursive character text splitter
func NewRecursiveCharacterTextSplitter(chunkSize, chunkOverlap int) *TextSplitter {
	ts := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	return &TextSplitter{splitter: ts, chunkSize: chunkSize}
}

// SplitText splits text into chunks
func (ts *TextSplitter) SplitText(text string) ([]string, error) {
	return ts.splitter.SplitText(text)
}

// Truncate keeps the first chunk of text, breaking on paragraph, line or
// word boundaries where possible. The bool reports whether anything was cut.
func (ts *TextSplitter) Truncate(text string) (string, bool, error) {
	if utf8.RuneCountInString(text) <= ts.chunkSize {
		return text, false, nil
	}
	chunks, err := ts.splitter.SplitText(text)
	if err != nil {
		return "", false, err
	}
	if len(chunks) == 0 {
		return "", len(text) > 0, nil
	}
	return chunks[0], true, nil
}
