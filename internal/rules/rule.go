// Package rules turns declarative content blocker records into compiled, immutable rules.
package rules

import (
	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/urlfilter"
)

// Rule is one compiled content blocking directive
type Rule struct {
	// Index is the position of the record in the configuration
	Index   int
	Trigger Trigger
	Action  Action
}

// Trigger is the compiled matching predicate of a rule
type Trigger struct {
	URLFilter     *urlfilter.Pattern
	ResourceTypes ResourceTypeSet
	LoadTypes     LoadTypeSet
	LoadContexts  LoadContextSet
	IfDomain      []DomainPattern
	UnlessDomain  []DomainPattern
	IfTopURL      []string
	UnlessTopURL  []string
}

// Action is the disposition of a rule. Selector is set only for css-display-none.
type Action struct {
	Type     models.ActionType
	Selector string
}
