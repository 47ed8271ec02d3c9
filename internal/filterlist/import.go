package filterlist

import (
	"io"

	"github.com/bnema/webkit-content-blocker/internal/models"
)

// Report combines parse and convert statistics of one import
type Report struct {
	Parse   Stats
	Convert ConvertStats
}

// Skipped returns the number of filter lines that produced no rule
func (r Report) Skipped() int {
	return r.Parse.Unsupported + r.Convert.Skipped
}

// SkipReasons merges parse and convert skip reasons
func (r Report) SkipReasons() map[string]int {
	merged := make(map[string]int, len(r.Parse.SkipReasons)+len(r.Convert.SkipReasons))
	for reason, count := range r.Parse.SkipReasons {
		merged[reason] += count
	}
	for reason, count := range r.Convert.SkipReasons {
		merged[reason] += count
	}
	return merged
}

// Import parses a filter list and converts it, using a fresh parser and
// converter so the report covers this list only
func Import(r io.Reader) ([]models.RawRule, Report, error) {
	p := NewParser()
	filters, err := p.Parse(r)
	if err != nil {
		return nil, Report{Parse: p.Stats()}, err
	}

	c := NewConverter()
	rules := c.Convert(filters)

	return rules, Report{Parse: p.Stats(), Convert: c.Stats()}, nil
}
