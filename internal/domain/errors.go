package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the session repository. Not-found and
// version-conflict are distinct conditions so callers can retry a conflicting
// update with fresh data.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrVersionConflict  = errors.New("event version conflict")
	ErrArtifactNotFound = errors.New("artifact not found")
)

// ParseError reports a recording-format failure. Line is 1-indexed as the
// offending line appears in the raw input, with the header counted as line 1;
// zero means the failure is not tied to a single line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

// NewParseError builds a ParseError for a specific input line.
func NewParseError(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Reason: fmt.Sprintf(format, args...)}
}
