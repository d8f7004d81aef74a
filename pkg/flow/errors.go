package flow

import (
	"errors"
	"fmt"
)

// ParseErrorKind classifies parse failures.
type ParseErrorKind string

const (
	// ParseMalformed covers invalid JSON syntax and known keys holding the
	// wrong JSON type.
	ParseMalformed ParseErrorKind = "malformed"
	// ParseSchemaMissingField reports an absent `version` or `screens`.
	ParseSchemaMissingField ParseErrorKind = "schema_missing_field"
)

var (
	// ErrMalformed matches any ParseError of kind ParseMalformed.
	ErrMalformed = errors.New("flow: malformed document")
	// ErrMissingField matches any ParseError of kind ParseSchemaMissingField.
	ErrMissingField = errors.New("flow: missing required field")
)

// ParseError is returned by Parse. Input retains the offending text so the
// caller can hand it back to the user for editing.
type ParseError struct {
	Kind ParseErrorKind
	// Path locates the problem (`screens[1].layout.children`); empty for
	// syntax errors.
	Path string
	// Field names the missing key for ParseSchemaMissingField.
	Field string
	// Offset is the byte offset of a syntax error, when known.
	Offset int64
	Input  string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Kind == ParseSchemaMissingField:
		return fmt.Sprintf("flow: missing required field %q", e.Field)
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("flow: malformed document at %s: %v", e.Path, e.Err)
	case e.Offset > 0 && e.Err != nil:
		return fmt.Sprintf("flow: malformed document (offset %d): %v", e.Offset, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("flow: malformed document: %v", e.Err)
	default:
		return "flow: malformed document"
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrMalformed:
		return e.Kind == ParseMalformed
	case ErrMissingField:
		return e.Kind == ParseSchemaMissingField
	default:
		return false
	}
}
