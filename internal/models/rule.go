package models

// RawRule is one content blocker record as it appears in configuration
type RawRule struct {
	Trigger RawTrigger `json:"trigger" yaml:"trigger" mapstructure:"trigger"`
	Action  RawAction  `json:"action" yaml:"action" mapstructure:"action"`
}

// RawTrigger is the untyped trigger half of a record, using WebKit key names
type RawTrigger struct {
	URLFilter                *string  `json:"url-filter" yaml:"url-filter" mapstructure:"url-filter"`
	URLFilterIsCaseSensitive *bool    `json:"url-filter-is-case-sensitive,omitempty" yaml:"url-filter-is-case-sensitive,omitempty" mapstructure:"url-filter-is-case-sensitive"`
	ResourceType             []string `json:"resource-type,omitempty" yaml:"resource-type,omitempty" mapstructure:"resource-type"`
	LoadType                 []string `json:"load-type,omitempty" yaml:"load-type,omitempty" mapstructure:"load-type"`
	LoadContext              []string `json:"load-context,omitempty" yaml:"load-context,omitempty" mapstructure:"load-context"`
	IfDomain                 []string `json:"if-domain,omitempty" yaml:"if-domain,omitempty" mapstructure:"if-domain"`
	UnlessDomain             []string `json:"unless-domain,omitempty" yaml:"unless-domain,omitempty" mapstructure:"unless-domain"`
	IfTopURL                 []string `json:"if-top-url,omitempty" yaml:"if-top-url,omitempty" mapstructure:"if-top-url"`
	UnlessTopURL             []string `json:"unless-top-url,omitempty" yaml:"unless-top-url,omitempty" mapstructure:"unless-top-url"`
}

// RawAction is the untyped action half of a record
type RawAction struct {
	Type     *string `json:"type" yaml:"type" mapstructure:"type"`
	Selector *string `json:"selector,omitempty" yaml:"selector,omitempty" mapstructure:"selector"`
}

// NewRawRule builds a record with the given url-filter and action type
func NewRawRule(urlFilter string, actionType ActionType) RawRule {
	t := actionType.String()
	return RawRule{
		Trigger: RawTrigger{URLFilter: &urlFilter},
		Action:  RawAction{Type: &t},
	}
}

// Map converts the record to the loosely-typed form the parser consumes
func (r RawRule) Map() map[string]any {
	trigger := map[string]any{}
	if r.Trigger.URLFilter != nil {
		trigger[KeyURLFilter] = *r.Trigger.URLFilter
	}
	if r.Trigger.URLFilterIsCaseSensitive != nil {
		trigger[KeyURLFilterIsCaseSensitive] = *r.Trigger.URLFilterIsCaseSensitive
	}
	putList(trigger, KeyResourceType, r.Trigger.ResourceType)
	putList(trigger, KeyLoadType, r.Trigger.LoadType)
	putList(trigger, KeyLoadContext, r.Trigger.LoadContext)
	putList(trigger, KeyIfDomain, r.Trigger.IfDomain)
	putList(trigger, KeyUnlessDomain, r.Trigger.UnlessDomain)
	putList(trigger, KeyIfTopURL, r.Trigger.IfTopURL)
	putList(trigger, KeyUnlessTopURL, r.Trigger.UnlessTopURL)

	action := map[string]any{}
	if r.Action.Type != nil {
		action[KeyType] = *r.Action.Type
	}
	if r.Action.Selector != nil {
		action[KeySelector] = *r.Action.Selector
	}

	return map[string]any{
		KeyTrigger: trigger,
		KeyAction:  action,
	}
}

func putList(m map[string]any, key string, values []string) {
	if len(values) == 0 {
		return
	}
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	m[key] = list
}

// Record keys (WebKit content blocker JSON names)
const (
	KeyTrigger                  = "trigger"
	KeyAction                   = "action"
	KeyURLFilter                = "url-filter"
	KeyURLFilterIsCaseSensitive = "url-filter-is-case-sensitive"
	KeyResourceType             = "resource-type"
	KeyLoadType                 = "load-type"
	KeyLoadContext              = "load-context"
	KeyIfDomain                 = "if-domain"
	KeyUnlessDomain             = "unless-domain"
	KeyIfTopURL                 = "if-top-url"
	KeyUnlessTopURL             = "unless-top-url"
	KeyType                     = "type"
	KeySelector                 = "selector"
)
