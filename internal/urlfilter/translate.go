// Package urlfilter compiles content blocker url-filter patterns and matches them against URLs.
//
// The url-filter dialect is the subset of regular expressions WebKit content
// blockers accept: literals, ".", "*", "+", "?", "[...]" and "[^...]" classes,
// and "^"/"$" anchors. Characters that carry meaning in Go's regexp syntax but
// not in the dialect ("(", ")", "{", "}", "|") are escaped so they match literally.
package urlfilter

import (
	"fmt"
	"strings"
)

// Shorthand classes are expanded, the dialect has no \w, \d or \s
var shorthandClasses = map[byte]string{
	'w': `[a-zA-Z0-9_]`,
	'W': `[^a-zA-Z0-9_]`,
	'd': `[0-9]`,
	'D': `[^0-9]`,
	's': `[ \t\n\r\f\v]`,
	'S': `[^ \t\n\r\f\v]`,
}

// literalOutsideClass are dialect literals that Go would treat as syntax
const literalOutsideClass = "(){}|"

// Translate rewrites a url-filter pattern into Go regexp syntax
func Translate(pattern string) (string, error) {
	if pattern == "" {
		return "", ErrEmptyPattern
	}

	var b strings.Builder
	b.Grow(len(pattern) + 8)

	inClass := false
	classStart := 0 // offset of the first member byte of the current class

	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]

		if ch == '\\' {
			if i+1 >= len(pattern) {
				// Let the regexp compiler report the trailing backslash
				b.WriteByte(ch)
				continue
			}
			next := pattern[i+1]
			i++

			switch {
			case next == 'b' || next == 'B':
				return "", fmt.Errorf("%w: word boundary \\%c at offset %d", ErrUnsupportedSyntax, next, i-1)
			case next == 'p' || next == 'P':
				return "", fmt.Errorf("%w: unicode property \\%c at offset %d", ErrUnsupportedSyntax, next, i-1)
			case next >= '1' && next <= '9':
				return "", fmt.Errorf("%w: back-reference \\%c at offset %d", ErrUnsupportedSyntax, next, i-1)
			}

			if expansion, ok := shorthandClasses[next]; ok && !inClass {
				b.WriteString(expansion)
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(next)
			continue
		}

		if inClass {
			// "]" right after "[" or "[^" is a member, not the end
			if ch == ']' && i > classStart {
				inClass = false
			}
			b.WriteByte(ch)
			continue
		}

		switch {
		case ch == '[':
			inClass = true
			classStart = i + 1
			if classStart < len(pattern) && pattern[classStart] == '^' {
				classStart++
			}
		case strings.IndexByte(literalOutsideClass, ch) >= 0:
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}

	return b.String(), nil
}
