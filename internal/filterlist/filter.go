// Package filterlist imports uBlock Origin / Adblock Plus filter lists as
// content blocker records.
//
// Network filters become block rules and element hiding filters become
// css-display-none rules. Exceptions have no equivalent in a first-match-wins
// rule list and are skipped.
package filterlist

// FilterType identifies the type of filter
type FilterType int

const (
	FilterTypeNetwork FilterType = iota
	FilterTypeException
	FilterTypeCosmetic
	FilterTypeCosmeticException
	FilterTypeComment
	FilterTypeUnsupported
)

// Filter represents a parsed ABP/uBlock filter
type Filter struct {
	Type     FilterType
	Raw      string
	Pattern  string        // URL pattern for network filters
	Selector string        // CSS selector for cosmetic filters
	Domains  []string      // Domain restrictions (cosmetic, "~" marks exclusions)
	Options  FilterOptions // Network filter options
}

// FilterOptions contains network filter options
type FilterOptions struct {
	ThirdParty            *bool    // nil = any, true = third-party only, false = first-party only
	ResourceTypes         []string // WebKit resource-type names
	ExcludedResourceTypes []string // from "~type" options
	Domains               []string // domain= include
	ExcludeDomains        []string // domain= exclude (~)
	MatchCase             bool
	Important             bool
}
