package filterlist

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/bnema/webkit-content-blocker/internal/models"
)

// MaxRulesPerFile is Safari/WebKit's limit per content blocker
const MaxRulesPerFile = 50000

// Part is one output file of a split rule list
type Part struct {
	Name  string
	Rules []models.RawRule
}

// Splitter splits rules into chunks respecting the per-file limit
type Splitter struct {
	maxRules int
}

// NewSplitter creates a splitter with the given max rules per file
func NewSplitter(maxRules int) *Splitter {
	if maxRules <= 0 {
		maxRules = MaxRulesPerFile
	}
	return &Splitter{maxRules: maxRules}
}

// Split divides rules into parts, keeping rule order across parts.
// A list within the limit is a single part named baseName.
func (s *Splitter) Split(rules []models.RawRule, baseName string) []Part {
	if len(rules) <= s.maxRules {
		return []Part{{Name: baseName, Rules: rules}}
	}

	numParts := (len(rules) + s.maxRules - 1) / s.maxRules
	parts := make([]Part, 0, numParts)

	for i := 0; i < numParts; i++ {
		start := i * s.maxRules
		end := min(start+s.maxRules, len(rules))

		parts = append(parts, Part{
			Name:  fmt.Sprintf("%s-part%d", baseName, i+1),
			Rules: rules[start:end],
		})
	}

	return parts
}

// Deduplicate removes rules identical to an earlier rule, keeping first occurrences in order
func Deduplicate(rules []models.RawRule) []models.RawRule {
	seen := make(map[string]struct{}, len(rules))
	result := make([]models.RawRule, 0, len(rules))

	for _, r := range rules {
		key, err := json.Marshal(r)
		if err != nil {
			result = append(result, r)
			continue
		}

		if _, dup := seen[string(key)]; !dup {
			seen[string(key)] = struct{}{}
			result = append(result, r)
		}
	}

	return result
}
