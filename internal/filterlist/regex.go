package filterlist

import (
	"errors"
	"regexp"
	"strings"
)

// Pieces of uBlock's make-rulesets.js, rewritten without groups since the
// url-filter dialect has neither groups nor disjunctions.
const (
	// Separator matches any character that cannot be part of a hostname or path token
	restrSeparator = `[^%.0-9a-z_-]`
	// Scheme prefix for hostname anchored patterns ("||")
	restrScheme = `^[a-z-]+://`
	// Any leading subdomain labels, ending with a dot
	restrSubdomains = `[^/?#]*\.`
)

// Errors for regex filters (/.../) the dialect cannot express
var (
	ErrDisjunction       = errors.New("disjunction")
	ErrQuantifiedGroup   = errors.New("quantified group")
	ErrLookaround        = errors.New("lookaround or named group")
	ErrUnbalancedGroup   = errors.New("unbalanced group")
	ErrNumericQuantifier = errors.New("numeric quantifier")
	ErrNonASCII          = errors.New("non-ASCII characters")
)

var (
	// Characters to escape in regex (except * and ^)
	rePlainChars = regexp.MustCompile(`[.+?${}()|[\]\\]`)
	// Dangling asterisks at start/end
	reDanglingAsterisks = regexp.MustCompile(`^\*+|\*+$`)
	// Asterisks in pattern
	reAsterisks = regexp.MustCompile(`\*+`)
	// Separator placeholder
	reSeparators = regexp.MustCompile(`\^`)
	// Shorthand character classes
	reWordChar     = regexp.MustCompile(`\\w`)
	reNonWordChar  = regexp.MustCompile(`\\W`)
	reDigitChar    = regexp.MustCompile(`\\d`)
	reNonDigitChar = regexp.MustCompile(`\\D`)
	reSpaceChar    = regexp.MustCompile(`\\s`)
	reNonSpaceChar = regexp.MustCompile(`\\S`)
	// {n,} can be approximated with +
	reNumericQuantifierOpen = regexp.MustCompile(`\{[0-9]+,\}`)
	// {n} and {n,m} cannot
	reNumericQuantifier = regexp.MustCompile(`\{[0-9]+(,[0-9]+)?\}`)
	reNonASCII          = regexp.MustCompile(`[^\x00-\x7F]`)
)

// PatternToURLFilters converts an ABP/uBlock pattern to one or more url-filters.
// A rule matching any of them is equivalent to the original filter.
func PatternToURLFilters(pattern string) ([]string, error) {
	if pattern == "" || pattern == "*" {
		return []string{".*"}, nil
	}

	s := pattern
	hostAnchor, leftAnchor, rightAnchor := false, false, false

	if strings.HasPrefix(s, "||") {
		hostAnchor = true
		s = s[2:]
	} else if strings.HasPrefix(s, "|") {
		leftAnchor = true
		s = s[1:]
	}

	if strings.HasSuffix(s, "|") {
		rightAnchor = true
		s = s[:len(s)-1]
	}

	// Regex filters
	if strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") && len(s) > 2 {
		re, err := regexToURLFilter(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return []string{re}, nil
	}

	// "^" also matches the end of the URL, so a trailing separator needs an
	// end anchored variant
	bodies := []string{plainToRegex(s)}
	if strings.HasSuffix(s, "^") && !rightAnchor {
		bodies = append(bodies, plainToRegex(strings.TrimSuffix(s, "^"))+"$")
	}

	var filters []string
	for _, body := range bodies {
		if rightAnchor && !strings.HasSuffix(body, "$") {
			body += "$"
		}

		switch {
		case hostAnchor && strings.HasPrefix(body, `\.`):
			filters = append(filters, restrScheme+`[^/?#]*`+body)
		case hostAnchor:
			// The host either starts here or follows a dot
			filters = append(filters,
				restrScheme+body,
				restrScheme+restrSubdomains+body,
			)
		case leftAnchor:
			filters = append(filters, "^"+body)
		default:
			filters = append(filters, body)
		}
	}

	return filters, nil
}

// plainToRegex converts the body of a non-regex pattern
func plainToRegex(s string) string {
	// Escape special regex characters (except * and ^)
	reStr := rePlainChars.ReplaceAllString(s, `\$0`)

	reStr = reSeparators.ReplaceAllString(reStr, restrSeparator)
	reStr = reDanglingAsterisks.ReplaceAllString(reStr, "")
	reStr = reAsterisks.ReplaceAllString(reStr, `.*`)

	if reStr == "" {
		return ".*"
	}
	return reStr
}

// regexToURLFilter rewrites a /regex/ filter body into the url-filter dialect
func regexToURLFilter(re string) (string, error) {
	re = expandCharacterClasses(re)

	re, err := unwrapGroups(re)
	if err != nil {
		return "", err
	}

	if reNumericQuantifier.MatchString(re) {
		return "", ErrNumericQuantifier
	}
	if reNonASCII.MatchString(re) {
		return "", ErrNonASCII
	}
	return re, nil
}

// expandCharacterClasses replaces shorthand character classes with explicit equivalents
func expandCharacterClasses(pattern string) string {
	// Order matters: replace uppercase (negated) first to avoid partial replacements
	pattern = reNonWordChar.ReplaceAllString(pattern, `[^a-zA-Z0-9_]`)
	pattern = reWordChar.ReplaceAllString(pattern, `[a-zA-Z0-9_]`)
	pattern = reNonDigitChar.ReplaceAllString(pattern, `[^0-9]`)
	pattern = reDigitChar.ReplaceAllString(pattern, `[0-9]`)
	pattern = reNonSpaceChar.ReplaceAllString(pattern, `[^ \t\n\r\f\v]`)
	pattern = reSpaceChar.ReplaceAllString(pattern, `[ \t\n\r\f\v]`)

	pattern = reNumericQuantifierOpen.ReplaceAllString(pattern, `+`)

	return pattern
}

// unwrapGroups removes plain and non-capturing groups. Groups carrying a
// quantifier, lookarounds and disjunctions have no dialect equivalent.
func unwrapGroups(re string) (string, error) {
	var b strings.Builder
	b.Grow(len(re))

	depth := 0
	inClass := false

	for i := 0; i < len(re); i++ {
		ch := re[i]

		if ch == '\\' && i+1 < len(re) {
			b.WriteByte(ch)
			b.WriteByte(re[i+1])
			i++
			continue
		}

		if inClass {
			if ch == ']' {
				inClass = false
			}
			b.WriteByte(ch)
			continue
		}

		switch ch {
		case '[':
			inClass = true
			b.WriteByte(ch)
			// A leading "]" or "^]" is a class member
			if i+1 < len(re) && re[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			if i+1 < len(re) && re[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
		case '(':
			if strings.HasPrefix(re[i+1:], "?:") {
				i += 2
			} else if strings.HasPrefix(re[i+1:], "?") {
				return "", ErrLookaround
			}
			depth++
		case ')':
			if depth == 0 {
				return "", ErrUnbalancedGroup
			}
			depth--
			if i+1 < len(re) && strings.IndexByte("*+?{", re[i+1]) >= 0 {
				return "", ErrQuantifiedGroup
			}
		case '|':
			return "", ErrDisjunction
		default:
			b.WriteByte(ch)
		}
	}

	if depth != 0 {
		return "", ErrUnbalancedGroup
	}
	return b.String(), nil
}
