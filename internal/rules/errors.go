package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShape indicates a record or field of the wrong type
	ErrInvalidShape = errors.New("invalid record shape")

	// ErrMissingURLFilter indicates a trigger without url-filter
	ErrMissingURLFilter = errors.New("missing trigger.url-filter")

	// ErrMissingActionType indicates an action without type
	ErrMissingActionType = errors.New("missing action.type")

	// ErrUnknownActionType indicates an action type outside block, block-cookies, css-display-none, make-https
	ErrUnknownActionType = errors.New("unknown action.type")

	// ErrMissingSelector indicates a css-display-none action without selector
	ErrMissingSelector = errors.New("missing action.selector for css-display-none")

	// ErrConflictingDomains indicates a trigger with both if-domain and unless-domain
	ErrConflictingDomains = errors.New("if-domain and unless-domain are mutually exclusive")
)

// ParseError reports a record that could not be turned into a rule
type ParseError struct {
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rule %d: %v", e.Index, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CompileError reports a rule whose url-filter failed to compile
type CompileError struct {
	Index   int
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("rule %d: url-filter %q: %v", e.Index, e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
