package urlfilter

import "errors"

var (
	// ErrEmptyPattern indicates an empty url-filter
	ErrEmptyPattern = errors.New("empty url-filter")

	// ErrUnsupportedSyntax indicates a construct outside the url-filter dialect
	ErrUnsupportedSyntax = errors.New("unsupported url-filter syntax")

	// ErrInvalidPattern indicates the translated pattern failed to compile
	ErrInvalidPattern = errors.New("invalid url-filter")
)
