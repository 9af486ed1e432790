package normalize

import "fmt"

// ParseError reports a payload that is not syntactically valid JSON, or whose top
// level is not the JSON object the entity requires.
type ParseError struct {
	Entity string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Entity, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShapeError reports a parsed payload that misses the structure its consumer needs.
type ShapeError struct {
	Entity string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected %s response format: %s", e.Entity, e.Reason)
}
