package rules

import (
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/urlfilter"
)

// Skip reason constants
const (
	SkipInvalidShape       = "invalid-shape"
	SkipMissingURLFilter   = "missing-url-filter"
	SkipMissingActionType  = "missing-action-type"
	SkipUnknownActionType  = "unknown-action-type"
	SkipMissingSelector    = "missing-selector"
	SkipConflictingDomains = "conflicting-domains"
	SkipInvalidURLFilter   = "invalid-url-filter"
	SkipDuplicate          = "duplicate"
)

// RuleList is the ordered, immutable set of rules of one configuration.
// First match wins, so order is configuration order.
type RuleList struct {
	rules       []Rule
	diagnostics Diagnostics
}

// Empty is a rule list without rules
var Empty = &RuleList{}

// Len returns the number of active rules
func (l *RuleList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.rules)
}

// Rules returns the active rules in order. The slice is shared and must not be modified.
func (l *RuleList) Rules() []Rule {
	if l == nil {
		return nil
	}
	return l.rules
}

// Diagnostics returns what happened while the list was compiled
func (l *RuleList) Diagnostics() Diagnostics {
	if l == nil {
		return Diagnostics{}
	}
	return l.diagnostics
}

// Diagnostics collects non-fatal compile results
type Diagnostics struct {
	Total       int
	Compiled    int
	Skipped     int
	Errors      []error // *ParseError or *CompileError, in record order
	Warnings    []Warning
	SkipReasons map[string]int
}

// OK reports whether every record became a rule
func (d Diagnostics) OK() bool {
	return d.Skipped == 0
}

func (d *Diagnostics) skip(reason string, err error) {
	d.Skipped++
	if d.SkipReasons == nil {
		d.SkipReasons = make(map[string]int)
	}
	d.SkipReasons[reason]++
	if err != nil {
		d.Errors = append(d.Errors, err)
	}
}

type compileOptions struct {
	dedupe        bool
	strictDomains bool
	logger        zerolog.Logger
}

// Option configures Compile
type Option func(*compileOptions)

// WithDedupe drops records identical to an earlier record
func WithDedupe(enabled bool) Option {
	return func(o *compileOptions) { o.dedupe = enabled }
}

// WithStrictDomains rejects triggers with both if-domain and unless-domain (default true)
func WithStrictDomains(enabled bool) Option {
	return func(o *compileOptions) { o.strictDomains = enabled }
}

// WithLogger reports dropped rules and totals to logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *compileOptions) { o.logger = logger }
}

// Compile parses and compiles records in order. A record that fails is
// skipped and reported in the diagnostics; the rest of the list still compiles.
func Compile(records []Record, opts ...Option) *RuleList {
	o := compileOptions{
		strictDomains: true,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	parser := NewParser(o.strictDomains)
	list := &RuleList{
		rules: make([]Rule, 0, len(records)),
	}
	diag := &list.diagnostics
	diag.Total = len(records)

	var seen map[string]struct{}
	if o.dedupe {
		seen = make(map[string]struct{}, len(records))
	}

	for i, rec := range records {
		if seen != nil && rec != nil {
			if key, err := json.Marshal(rec); err == nil {
				if _, dup := seen[string(key)]; dup {
					diag.skip(SkipDuplicate, nil)
					o.logger.Debug().Int("rule", i).Msg("duplicate rule dropped")
					continue
				}
				seen[string(key)] = struct{}{}
			}
		}

		rule, warnings, err := parser.Parse(i, rec)
		diag.Warnings = append(diag.Warnings, warnings...)
		if err != nil {
			diag.skip(skipReason(err), err)
			o.logger.Warn().Err(err).Int("rule", i).Msg("content blocker rule dropped")
			continue
		}

		list.rules = append(list.rules, rule)
		diag.Compiled++
	}

	o.logger.Info().
		Int("total", diag.Total).
		Int("compiled", diag.Compiled).
		Int("skipped", diag.Skipped).
		Int("warnings", len(diag.Warnings)).
		Msg("content blocker rules compiled")

	return list
}

// CompileRaw compiles typed records, such as those produced by a filter list import
func CompileRaw(raw []models.RawRule, opts ...Option) *RuleList {
	records := make([]Record, len(raw))
	for i, r := range raw {
		records[i] = r.Map()
	}
	return Compile(records, opts...)
}

func skipReason(err error) string {
	var compileErr *CompileError
	switch {
	case errors.As(err, &compileErr):
		return SkipInvalidURLFilter
	case errors.Is(err, ErrMissingURLFilter):
		return SkipMissingURLFilter
	case errors.Is(err, ErrMissingActionType):
		return SkipMissingActionType
	case errors.Is(err, ErrUnknownActionType):
		return SkipUnknownActionType
	case errors.Is(err, ErrMissingSelector):
		return SkipMissingSelector
	case errors.Is(err, ErrConflictingDomains):
		return SkipConflictingDomains
	case errors.Is(err, urlfilter.ErrInvalidPattern):
		return SkipInvalidURLFilter
	}
	return SkipInvalidShape
}
