package rules

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/urlfilter"
)

// Record is one loosely-typed {trigger, action} entry as delivered by the settings layer
type Record = map[string]any

// Warning is a non-fatal remark about a rule that was kept
type Warning struct {
	Index   int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("rule %d: %s", w.Index, w.Message)
}

// Parser converts records into typed rules
type Parser struct {
	strictDomains bool
}

// NewParser creates a parser. With strictDomains a trigger carrying both
// if-domain and unless-domain is rejected, otherwise if-domain wins.
func NewParser(strictDomains bool) *Parser {
	return &Parser{strictDomains: strictDomains}
}

// Parse converts the record at index into a compiled rule.
// The returned error is a *ParseError or a *CompileError.
func (p *Parser) Parse(index int, rec Record) (Rule, []Warning, error) {
	var warnings []Warning
	warn := func(format string, args ...any) {
		warnings = append(warnings, Warning{Index: index, Message: fmt.Sprintf(format, args...)})
	}
	fail := func(err error) (Rule, []Warning, error) {
		return Rule{}, warnings, &ParseError{Index: index, Err: err}
	}

	if rec == nil {
		return fail(fmt.Errorf("%w: record is not an object", ErrInvalidShape))
	}

	raw, err := decodeRecord(rec)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrInvalidShape, err))
	}

	if raw.Trigger.URLFilter == nil {
		return fail(ErrMissingURLFilter)
	}

	action, err := parseAction(raw.Action, warn)
	if err != nil {
		return fail(err)
	}

	trigger := Trigger{
		ResourceTypes: parseResourceTypes(raw.Trigger.ResourceType, warn),
		LoadTypes:     parseLoadTypes(raw.Trigger.LoadType, warn),
		LoadContexts:  parseLoadContexts(raw.Trigger.LoadContext, warn),
		IfDomain:      parseDomains(raw.Trigger.IfDomain, models.KeyIfDomain, warn),
		UnlessDomain:  parseDomains(raw.Trigger.UnlessDomain, models.KeyUnlessDomain, warn),
		IfTopURL:      parseTopURLs(raw.Trigger.IfTopURL),
		UnlessTopURL:  parseTopURLs(raw.Trigger.UnlessTopURL),
	}

	if len(trigger.IfDomain) > 0 && len(trigger.UnlessDomain) > 0 {
		if p.strictDomains {
			return fail(ErrConflictingDomains)
		}
		warn("unless-domain ignored, if-domain takes precedence")
		trigger.UnlessDomain = nil
	}

	pattern := *raw.Trigger.URLFilter
	caseSensitive := raw.Trigger.URLFilterIsCaseSensitive != nil && *raw.Trigger.URLFilterIsCaseSensitive

	compiled, err := urlfilter.Compile(pattern, caseSensitive)
	if err != nil {
		return Rule{}, warnings, &CompileError{Index: index, Pattern: pattern, Err: err}
	}
	trigger.URLFilter = compiled

	if issues := urlfilter.Check(pattern); len(issues) > 0 {
		warn("url-filter: %s", urlfilter.DescribeIssues(issues))
	}

	return Rule{Index: index, Trigger: trigger, Action: action}, warnings, nil
}

// decodeRecord maps the loose record onto the WebKit field names, ignoring unknown keys
func decodeRecord(rec Record) (models.RawRule, error) {
	var raw models.RawRule
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &raw,
		TagName: "mapstructure",
	})
	if err != nil {
		return raw, err
	}
	if err := dec.Decode(rec); err != nil {
		return raw, err
	}
	return raw, nil
}

func parseAction(raw models.RawAction, warn func(string, ...any)) (Action, error) {
	if raw.Type == nil || strings.TrimSpace(*raw.Type) == "" {
		return Action{}, ErrMissingActionType
	}

	at, ok := models.ParseActionType(strings.TrimSpace(*raw.Type))
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownActionType, *raw.Type)
	}

	action := Action{Type: at}
	switch at {
	case models.ActionCSSDisplayNone:
		if raw.Selector == nil || strings.TrimSpace(*raw.Selector) == "" {
			return Action{}, ErrMissingSelector
		}
		action.Selector = *raw.Selector
	default:
		if raw.Selector != nil {
			warn("selector ignored for action %s", at)
		}
	}
	return action, nil
}

// Unrecognized enum names are dropped so newer configurations keep loading
func parseResourceTypes(names []string, warn func(string, ...any)) ResourceTypeSet {
	var set ResourceTypeSet
	for _, name := range names {
		rt, ok := models.ParseResourceType(normalizeName(name))
		if !ok {
			warn("unknown resource-type %q dropped", name)
			continue
		}
		set = set.Add(rt)
	}
	// Images include SVG documents
	if set.Has(models.ResourceImage) {
		set = set.Add(models.ResourceSVGDocument)
	}
	return set
}

func parseLoadTypes(names []string, warn func(string, ...any)) LoadTypeSet {
	var set LoadTypeSet
	for _, name := range names {
		lt, ok := models.ParseLoadType(normalizeName(name))
		if !ok {
			warn("unknown load-type %q dropped", name)
			continue
		}
		set = set.Add(lt)
	}
	return set
}

func parseLoadContexts(names []string, warn func(string, ...any)) LoadContextSet {
	var set LoadContextSet
	for _, name := range names {
		lc, ok := models.ParseLoadContext(normalizeName(name))
		if !ok {
			warn("unknown load-context %q dropped", name)
			continue
		}
		set = set.Add(lc)
	}
	return set
}

func parseDomains(entries []string, key string, warn func(string, ...any)) []DomainPattern {
	if len(entries) == 0 {
		return nil
	}
	patterns := make([]DomainPattern, 0, len(entries))
	for _, e := range entries {
		dp := ParseDomainPattern(e)
		if !dp.Valid() {
			warn("%s entry %q is malformed and never matches", key, e)
		}
		patterns = append(patterns, dp)
	}
	return patterns
}

func parseTopURLs(entries []string) []string {
	var out []string
	for _, e := range entries {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
