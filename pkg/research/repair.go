package research

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	jsonFence     = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	trailingComma = regexp.MustCompile(`,\s*([\]}])`)
)

// CandidateText picks the text to parse out of a raw agent answer.
// For a list of parts only the first part is used: its "text" field when it
// has one, else the part itself.
func CandidateText(raw RawOutput) string {
	switch v := raw.(type) {
	case TextOutput:
		return v.Text
	case *TextOutput:
		return v.Text
	case PartsOutput:
		return partsText(v.Parts)
	case *PartsOutput:
		return partsText(v.Parts)
	case OpaqueOutput:
		return repr(v.Value)
	case *OpaqueOutput:
		return repr(v.Value)
	}
	return repr(raw)
}

func partsText(parts []any) string {
	if len(parts) == 0 {
		return repr(parts)
	}
	if first, ok := parts[0].(map[string]any); ok {
		if text, ok := first["text"]; ok && text != nil && text != "" {
			return repr(text)
		}
	}
	return repr(parts[0])
}

func repr(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ExtractJSONBlock returns the body of the first ```json fenced block, or
// text unchanged when there is none.
func ExtractJSONBlock(text string) (string, bool) {
	m := jsonFence.FindStringSubmatch(text)
	if m == nil {
		return text, false
	}
	return m[1], true
}

// StripTrailingCommas drops commas that directly precede a closing bracket
// or brace. It does not look inside string literals.
func StripTrailingCommas(text string) string {
	return trailingComma.ReplaceAllString(text, "$1")
}

// outerObject returns the span from the first '{' to the last '}'.
func outerObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// Repair turns a raw agent answer into a ResearchResult. It never returns an
// error: an answer that cannot be parsed yields an Outcome with Failure set,
// carrying the candidate text verbatim.
//
// Text that already parses is never rewritten; trailing commas are only
// stripped once the unchanged text has failed.
func Repair(raw RawOutput, mode Strictness) Outcome {
	text := CandidateText(raw)
	body, _ := ExtractJSONBlock(text)

	var err error
	for _, candidate := range repairCandidates(body) {
		result, parseErr := parse(candidate, mode)
		if parseErr == nil {
			return Outcome{Result: result}
		}
		err = parseErr
	}
	return Outcome{Failure: &ParseFailure{Err: err, Raw: text}}
}

// repairCandidates lists the texts to try, in order: the body, the body
// without trailing commas, then the outer object span of each.
func repairCandidates(body string) []string {
	trimmed := strings.TrimSpace(body)
	stripped := strings.TrimSpace(StripTrailingCommas(body))

	candidates := []string{trimmed}
	add := func(c string) {
		for _, seen := range candidates {
			if seen == c {
				return
			}
		}
		candidates = append(candidates, c)
	}
	add(stripped)
	for _, c := range []string{trimmed, stripped} {
		if span, ok := outerObject(c); ok {
			add(span)
		}
	}
	return candidates
}
