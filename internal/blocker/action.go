package blocker

import (
	"net/url"
	"strings"

	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/rules"
)

// Resolve maps a matched rule to the decision the caller applies
func Resolve(rule *rules.Rule) models.Decision {
	d := models.Decision{RuleIndex: rule.Index}

	switch rule.Action.Type {
	case models.ActionBlock:
		d.Outcome = models.OutcomeBlock
	case models.ActionBlockCookies:
		d.Outcome = models.OutcomeBlockCookies
	case models.ActionCSSDisplayNone:
		d.Outcome = models.OutcomeInjectCSSHideSelector
		d.Selector = rule.Action.Selector
	case models.ActionMakeHTTPS:
		d.Outcome = models.OutcomeUpgradeToHTTPS
	default:
		return models.Proceed
	}

	return d
}

// UpgradeURL rewrites an http URL on the default port to https, leaving the
// rest of the URL untouched. Only URLs without a port or with port 80 are
// upgraded, and an explicit ":80" is dropped; http on any other port is
// returned unchanged since nothing says https listens there. Applying it twice
// gives the same result as applying it once.
func UpgradeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Scheme, "http") || u.Opaque != "" {
		return raw
	}
	if port := u.Port(); port != "" && port != "80" {
		return raw
	}

	rest := raw[len(u.Scheme):] // "://host[:80]/path?query#fragment"
	if !strings.HasPrefix(rest, "://") {
		return raw
	}

	if u.Port() == "80" {
		authEnd := len(rest)
		if i := strings.IndexAny(rest[3:], "/?#"); i >= 0 {
			authEnd = 3 + i
		}
		authority := strings.TrimSuffix(rest[3:authEnd], ":80")
		rest = "://" + authority + rest[authEnd:]
	}

	return "https" + rest
}

// ApplyDecision returns the URL the caller should fetch under d
func ApplyDecision(d models.Decision, raw string) string {
	if d.Outcome == models.OutcomeUpgradeToHTTPS {
		return UpgradeURL(raw)
	}
	return raw
}

// HideStylesheet returns the CSS that hides every element matching selector
func HideStylesheet(selector string) string {
	return selector + " { display: none !important; }"
}
