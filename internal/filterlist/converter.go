package filterlist

import (
	"errors"
	"strings"

	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/urlfilter"
)

// Converter converts parsed filters to content blocker records
type Converter struct {
	stats ConvertStats
}

// ConvertStats tracks conversion statistics
type ConvertStats struct {
	Converted   int            // filters that produced rules
	Rules       int            // rules produced, a filter may need several
	Skipped     int
	SkipReasons map[string]int
	Adjusted    map[string]int // kept, but matching differs from the filter
}

// Convert skip reasons
const (
	SkipInvalidRegex      = "invalid-regex"
	SkipUnsupportedRegex  = "unsupported-regex (groups, disjunction, etc)"
	SkipException         = "exception (@@)"
	SkipCosmeticException = "cosmetic-exception (#@#)"
	SkipEmptySelector     = "empty-selector"
	SkipEntityDomain      = "entity-domain (example.*)"
	SkipNoResourceType    = "no-resource-type"
)

// AdjustUnlessDomainDropped counts filters with both include and exclude domains
const AdjustUnlessDomainDropped = "unless-domain dropped (if-domain present)"

// NewConverter creates a new converter
func NewConverter() *Converter {
	return &Converter{
		stats: ConvertStats{
			SkipReasons: make(map[string]int),
			Adjusted:    make(map[string]int),
		},
	}
}

// skip records a skipped filter with reason
func (c *Converter) skip(reason string) {
	c.stats.Skipped++
	c.stats.SkipReasons[reason]++
}

// Stats returns conversion statistics
func (c *Converter) Stats() ConvertStats {
	return c.stats
}

// Convert transforms parsed filters into content blocker records, in list order
func (c *Converter) Convert(filters []Filter) []models.RawRule {
	var rules []models.RawRule

	for _, f := range filters {
		switch f.Type {
		case FilterTypeNetwork:
			converted, reason := c.convertNetwork(f)
			if reason != "" {
				c.skip(reason)
				continue
			}
			c.stats.Converted++
			c.stats.Rules += len(converted)
			rules = append(rules, converted...)
		case FilterTypeCosmetic:
			rule, reason := c.convertCosmetic(f)
			if reason != "" {
				c.skip(reason)
				continue
			}
			c.stats.Converted++
			c.stats.Rules++
			rules = append(rules, rule)
		case FilterTypeException:
			c.skip(SkipException)
		case FilterTypeCosmeticException:
			c.skip(SkipCosmeticException)
		}
	}

	return rules
}

// convertNetwork converts a network filter to one block rule per url-filter variant
func (c *Converter) convertNetwork(f Filter) ([]models.RawRule, string) {
	filters, err := PatternToURLFilters(f.Pattern)
	if err != nil {
		if errors.Is(err, ErrNonASCII) {
			return nil, SkipInvalidRegex
		}
		return nil, SkipUnsupportedRegex
	}

	for _, uf := range filters {
		if _, err := urlfilter.Compile(uf, f.Options.MatchCase); err != nil {
			return nil, SkipInvalidRegex
		}
	}

	resourceTypes, ok := resolveResourceTypes(f.Options)
	if !ok {
		return nil, SkipNoResourceType
	}

	ifDomain, okIf := normalizeDomains(f.Options.Domains)
	unlessDomain, okUnless := normalizeDomains(f.Options.ExcludeDomains)
	if !okIf || !okUnless {
		return nil, SkipEntityDomain
	}
	if len(ifDomain) > 0 && len(unlessDomain) > 0 {
		// A rule carries one of the two lists
		unlessDomain = nil
		c.stats.Adjusted[AdjustUnlessDomainDropped]++
	}

	rules := make([]models.RawRule, 0, len(filters))
	for _, uf := range filters {
		rule := models.NewRawRule(uf, models.ActionBlock)

		if f.Options.MatchCase {
			t := true
			rule.Trigger.URLFilterIsCaseSensitive = &t
		}

		rule.Trigger.ResourceType = resourceTypes

		if f.Options.ThirdParty != nil {
			if *f.Options.ThirdParty {
				rule.Trigger.LoadType = []string{models.LoadThirdParty.String()}
			} else {
				rule.Trigger.LoadType = []string{models.LoadFirstParty.String()}
			}
		}

		rule.Trigger.IfDomain = ifDomain
		rule.Trigger.UnlessDomain = unlessDomain

		rules = append(rules, rule)
	}

	return rules, ""
}

// convertCosmetic converts an element hiding filter to a css-display-none rule
func (c *Converter) convertCosmetic(f Filter) (models.RawRule, string) {
	if f.Selector == "" {
		return models.RawRule{}, SkipEmptySelector
	}

	rule := models.NewRawRule(".*", models.ActionCSSDisplayNone)
	selector := f.Selector
	rule.Action.Selector = &selector

	var include, exclude []string
	for _, d := range f.Domains {
		if strings.HasPrefix(d, "~") {
			exclude = append(exclude, d[1:])
		} else {
			include = append(include, d)
		}
	}

	ifDomain, okIf := normalizeDomains(include)
	unlessDomain, okUnless := normalizeDomains(exclude)
	if !okIf || !okUnless {
		return models.RawRule{}, SkipEntityDomain
	}
	if len(ifDomain) > 0 && len(unlessDomain) > 0 {
		unlessDomain = nil
		c.stats.Adjusted[AdjustUnlessDomainDropped]++
	}

	rule.Trigger.IfDomain = ifDomain
	rule.Trigger.UnlessDomain = unlessDomain

	return rule, ""
}

// resolveResourceTypes turns include and "~" exclude options into one list.
// An empty result with ok means all types.
func resolveResourceTypes(opts FilterOptions) ([]string, bool) {
	if len(opts.ExcludedResourceTypes) == 0 {
		return opts.ResourceTypes, true
	}

	base := opts.ResourceTypes
	if len(base) == 0 {
		for rt := models.ResourceDocument; rt <= models.ResourcePopup; rt++ {
			base = append(base, rt.String())
		}
	}

	var result []string
	for _, rt := range base {
		if !contains(opts.ExcludedResourceTypes, rt) {
			result = append(result, rt)
		}
	}
	return result, len(result) > 0
}

// normalizeDomains adds the "*" prefix so subdomains match too.
// Entity domains ("example.*") cannot be expressed and fail the whole list.
func normalizeDomains(domains []string) ([]string, bool) {
	if len(domains) == 0 {
		return nil, true
	}
	result := make([]string, 0, len(domains))
	for _, d := range domains {
		d = normalizeDomain(d)
		if strings.HasSuffix(d, ".*") {
			return nil, false
		}
		result = append(result, d)
	}
	return result, true
}

// normalizeDomain ensures domain has proper format for WebKit
func normalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if !strings.HasPrefix(d, "*") {
		return "*" + strings.TrimPrefix(d, ".")
	}
	return d
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
