package research

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration   = errors.New("configuration error")
	ErrAgentInvocation = errors.New("agent invocation failed")
	ErrEmptyQuery      = errors.New("query is empty")
)

// SchemaViolation reports a candidate that is JSON but not a valid
// ResearchResult.
type SchemaViolation struct {
	Field  string
	Reason string
}

func (e *SchemaViolation) Error() string {
	if e.Field == "" {
		return "schema violation: " + e.Reason
	}
	return fmt.Sprintf("schema violation: field %q %s", e.Field, e.Reason)
}

// ParseFailure carries the candidate text that could not be turned into a
// ResearchResult.
type ParseFailure struct {
	Err error
	Raw string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("could not parse research result: %v", e.Err)
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}
