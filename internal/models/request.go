package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// MatchRequest describes one intercepted resource load.
// All fields are classified by the caller from the platform request.
type MatchRequest struct {
	URL            string
	ResourceType   ResourceType
	IsThirdParty   bool
	IsForMainFrame bool
	// FrameUnknown is set when the caller cannot tell main frame from child frame.
	// Such requests match every load-context.
	FrameUnknown bool
	// TopURL is the URL of the top-level page, empty when unknown
	TopURL string
}

// Outcome is the disposition the caller applies to a request
type Outcome int

const (
	OutcomeProceed Outcome = iota
	OutcomeBlock
	OutcomeBlockCookies
	OutcomeInjectCSSHideSelector
	OutcomeUpgradeToHTTPS
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProceed:
		return "proceed"
	case OutcomeBlock:
		return "block"
	case OutcomeBlockCookies:
		return "block-cookies"
	case OutcomeInjectCSSHideSelector:
		return "inject-css-hide-selector"
	case OutcomeUpgradeToHTTPS:
		return "upgrade-to-https"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalJSON encodes the outcome by name
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// NoRule is the RuleIndex of a decision no rule produced
const NoRule = -1

// Decision is the result of evaluating a request against a rule list
type Decision struct {
	Outcome Outcome `json:"outcome"`
	// Selector is only set for OutcomeInjectCSSHideSelector
	Selector string `json:"selector,omitempty"`
	// RuleIndex is the configuration index of the matching rule, NoRule otherwise
	RuleIndex int `json:"rule_index"`
}

// Proceed is the decision returned when no rule matched
var Proceed = Decision{Outcome: OutcomeProceed, RuleIndex: NoRule}
