package urlfilter

// url-filter portability notes
//
// Rules are usually written for Safari/WebKit, whose engine compiles every
// url-filter into a finite state machine. This package accepts the same
// dialect but runs on Go's regexp, so a pattern can compile here and still
// behave differently from what its author expected in WebKit.
//
// DIALECT:
// - . * + ?           - Any char and greedy quantifiers
// - [a-z] [^a-z]      - Character classes
// - ^ $               - Anchors, meaningful only at the ends of the pattern
// - \. \/ \\ etc      - Escaped literal characters
//
// MATCHED LITERALLY (escaped during translation):
// - ( )               - Grouping
// - { }               - Numeric quantifiers
// - |                 - Disjunction
//
// EXPANDED:
// - \w \W \d \D \s \S - Replaced by explicit classes outside [...]
//
// REJECTED:
// - \b \B             - Word boundary
// - \p{..} \P{..}     - Unicode properties
// - \1 .. \9          - Back-references

import (
	"regexp"
	"strings"
)

var (
	// Numeric quantifiers: {n}, {n,} or {n,m}
	reNumericQuantifier = regexp.MustCompile(`\{[0-9]+(,[0-9]*)?\}`)
	// Non-ASCII characters never appear in serialized URLs
	reNonASCII = regexp.MustCompile(`[^\x00-\x7F]`)
	// Wildcard in the middle of a pattern
	reInnerWildcard = regexp.MustCompile(`.\.\*.`)
)

// Issue describes a portability problem found in a url-filter
type Issue struct {
	Pattern string
	Issue   string
}

// Check lists portability issues in a url-filter. Issues never prevent compilation.
func Check(pattern string) []Issue {
	var issues []Issue
	add := func(desc string) {
		issues = append(issues, Issue{Pattern: pattern, Issue: desc})
	}

	for _, sc := range []string{`\w`, `\W`, `\d`, `\D`, `\s`, `\S`} {
		if strings.Contains(pattern, sc) {
			add("shorthand character class expanded: " + sc)
		}
	}

	for _, m := range reNumericQuantifier.FindAllString(pattern, -1) {
		add("numeric quantifier matched literally: " + m)
	}

	if containsOutsideClass(pattern, '|') {
		add("disjunction (|) matched literally")
	}

	if containsOutsideClass(pattern, '(') {
		add("group parentheses matched literally")
	}

	if reNonASCII.MatchString(pattern) {
		add("non-ASCII characters")
	}

	if len(pattern) > 1 && pattern[0] != '[' && pattern[0] != '\\' && containsOutsideClass(pattern[1:], '^') {
		add("start anchor (^) not at the beginning")
	}

	if reInnerWildcard.MatchString(pattern) {
		add("wildcard (.*) in the middle of the pattern")
	}

	return issues
}

// DescribeIssues returns a human-readable description of all issues
func DescribeIssues(issues []Issue) string {
	if len(issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, issue.Issue)
	}
	return strings.Join(parts, ", ")
}

// containsOutsideClass checks if target occurs unescaped outside of character classes
func containsOutsideClass(pattern string, target byte) bool {
	inCharClass := false
	escaped := false

	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == target && !inCharClass {
			return true
		}
		if ch == '[' && !inCharClass {
			inCharClass = true
			continue
		}
		if ch == ']' && inCharClass {
			inCharClass = false
		}
	}
	return false
}
