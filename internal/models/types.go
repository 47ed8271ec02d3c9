package models

// ResourceType is the kind of resource a request loads
type ResourceType int

// Resource types (WebKit names in String)
const (
	ResourceDocument ResourceType = iota
	ResourceImage
	ResourceStyleSheet
	ResourceScript
	ResourceFont
	ResourceRaw
	ResourceSVGDocument
	ResourceMedia
	ResourcePopup
)

var resourceTypeNames = [...]string{
	ResourceDocument:    "document",
	ResourceImage:       "image",
	ResourceStyleSheet:  "style-sheet",
	ResourceScript:      "script",
	ResourceFont:        "font",
	ResourceRaw:         "raw",
	ResourceSVGDocument: "svg-document",
	ResourceMedia:       "media",
	ResourcePopup:       "popup",
}

func (r ResourceType) String() string {
	if r < 0 || int(r) >= len(resourceTypeNames) {
		return "unknown"
	}
	return resourceTypeNames[r]
}

// ParseResourceType maps a WebKit resource-type name to its value
func ParseResourceType(s string) (ResourceType, bool) {
	for i, name := range resourceTypeNames {
		if name == s {
			return ResourceType(i), true
		}
	}
	return 0, false
}

// LoadType classifies a request relative to the top-level page
type LoadType int

const (
	LoadFirstParty LoadType = iota
	LoadThirdParty
)

func (l LoadType) String() string {
	switch l {
	case LoadFirstParty:
		return "first-party"
	case LoadThirdParty:
		return "third-party"
	}
	return "unknown"
}

// ParseLoadType maps a load-type name to its value
func ParseLoadType(s string) (LoadType, bool) {
	switch s {
	case "first-party":
		return LoadFirstParty, true
	case "third-party":
		return LoadThirdParty, true
	}
	return 0, false
}

// LoadContext tells whether the request belongs to the top frame or a child frame
type LoadContext int

const (
	LoadTopFrame LoadContext = iota
	LoadChildFrame
)

func (l LoadContext) String() string {
	switch l {
	case LoadTopFrame:
		return "top-frame"
	case LoadChildFrame:
		return "child-frame"
	}
	return "unknown"
}

// ParseLoadContext maps a load-context name to its value
func ParseLoadContext(s string) (LoadContext, bool) {
	switch s {
	case "top-frame":
		return LoadTopFrame, true
	case "child-frame":
		return LoadChildFrame, true
	}
	return 0, false
}

// ActionType is the disposition of a rule
type ActionType int

const (
	ActionBlock ActionType = iota
	ActionBlockCookies
	ActionCSSDisplayNone
	ActionMakeHTTPS
)

func (a ActionType) String() string {
	switch a {
	case ActionBlock:
		return "block"
	case ActionBlockCookies:
		return "block-cookies"
	case ActionCSSDisplayNone:
		return "css-display-none"
	case ActionMakeHTTPS:
		return "make-https"
	}
	return "unknown"
}

// ParseActionType maps an action type name to its value
func ParseActionType(s string) (ActionType, bool) {
	switch s {
	case "block":
		return ActionBlock, true
	case "block-cookies":
		return ActionBlockCookies, true
	case "css-display-none":
		return ActionCSSDisplayNone, true
	case "make-https":
		return ActionMakeHTTPS, true
	}
	return 0, false
}
