package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikeboe/research-assistant/pkg/research"
)

var (
	wideRule   = strings.Repeat("=", 80)
	narrowRule = strings.Repeat("=", 40)
)

type Options struct {
	// Markdown renders the summary through glamour.
	Markdown bool
	// Width wraps markdown output; zero means 80.
	Width int
}

type styles struct {
	heading lipgloss.Style
	errorH  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		errorH:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// Report writes a structured result. Empty source and tool lists are left
// out.
func Report(w io.Writer, result research.ResearchResult, opts Options) error {
	st := newStyles(w)
	var b strings.Builder

	b.WriteString("\n" + wideRule + "\n")
	fmt.Fprintf(&b, "\n%s\n\n", st.heading.Render("📝 RESEARCH TOPIC: "+result.Topic))
	b.WriteString(st.heading.Render("📋 SUMMARY:") + "\n")
	b.WriteString(summary(result.Summary, opts) + "\n\n")

	writeList(&b, st.heading.Render("📚 SOURCES:"), result.Sources)
	writeList(&b, st.heading.Render("🔧 TOOLS USED:"), result.ToolsUsed)

	b.WriteString(wideRule + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(heading + "\n")
	for i, item := range items {
		fmt.Fprintf(b, "  %d. %s\n", i+1, item)
	}
	b.WriteString("\n")
}

func summary(text string, opts Options) string {
	if !opts.Markdown {
		return text
	}
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// FailureReport writes the parse error and the raw answer it came from,
// pretty-printed when it holds JSON.
func FailureReport(w io.Writer, failure *research.ParseFailure) error {
	st := newStyles(w)
	var b strings.Builder

	b.WriteString("\n" + st.errorH.Render("❌ Error parsing response:") + "\n\n")
	fmt.Fprintf(&b, "Error details: %v\n", failure.Err)
	b.WriteString("\nRaw output received:\n")
	view, _ := RawView(failure.Raw)
	b.WriteString(narrowRule + "\n")
	b.WriteString(view + "\n")
	b.WriteString(narrowRule + "\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// ErrorReport writes a configuration or invocation error.
func ErrorReport(w io.Writer, err error) error {
	st := newStyles(w)
	_, werr := fmt.Fprintf(w, "\n%s %v\n\n", st.errorH.Render("❌ Error:"), err)
	return werr
}

// Outcome writes either the report or the failure report.
func Outcome(w io.Writer, o research.Outcome, opts Options) error {
	if o.OK() {
		return Report(w, *o.Result, opts)
	}
	return FailureReport(w, o.Failure)
}

// Turn renders a conversation turn as plain text, for the terminal chat.
func Turn(t research.Turn) string {
	switch {
	case t.Role == research.RoleUser:
		return "> " + t.Text
	case t.Result != nil:
		var b strings.Builder
		_ = Report(&b, *t.Result, Options{})
		return strings.Trim(b.String(), "\n")
	case t.Failure != nil:
		var b strings.Builder
		fmt.Fprintf(&b, "❌ %s\n", t.Failure.Message)
		view, _ := RawView(t.Failure.Raw)
		b.WriteString(view)
		return b.String()
	}
	return ""
}

// RawView prepares a raw answer for display. When it holds JSON, either in
// a ```json block or as the whole text, the JSON is pretty-printed and the
// bool is true.
func RawView(raw string) (string, bool) {
	body, _ := research.ExtractJSONBlock(raw)
	for _, c := range []string{body, research.StripTrailingCommas(body)} {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(strings.TrimSpace(c)), "", "  "); err == nil {
			return buf.String(), true
		}
	}
	return raw, false
}
