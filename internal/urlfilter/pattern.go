package urlfilter

import (
	"fmt"
	"regexp"
)

// Pattern is a compiled url-filter. It is immutable and safe for concurrent use.
type Pattern struct {
	source        string
	caseSensitive bool
	re            *regexp.Regexp
}

// Compile translates and compiles a url-filter.
// Unless caseSensitive is set the pattern matches regardless of case.
func Compile(pattern string, caseSensitive bool) (*Pattern, error) {
	expr, err := Translate(pattern)
	if err != nil {
		return nil, err
	}

	if !caseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	return &Pattern{
		source:        pattern,
		caseSensitive: caseSensitive,
		re:            re,
	}, nil
}

// Match reports whether the pattern occurs anywhere in url
func (p *Pattern) Match(url string) bool {
	return p.re.MatchString(url)
}

// String returns the url-filter the pattern was compiled from
func (p *Pattern) String() string {
	return p.source
}

// CaseSensitive reports whether matching honors case
func (p *Pattern) CaseSensitive() bool {
	return p.caseSensitive
}

// Expr returns the Go regular expression backing the pattern
func (p *Pattern) Expr() string {
	return p.re.String()
}
