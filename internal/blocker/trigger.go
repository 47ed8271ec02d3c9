package blocker

import (
	"net/url"
	"strings"

	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/rules"
)

// target is the request URL as evaluated, computed once per request
type target struct {
	url  string
	host string
}

// parseTarget accepts any URL with a scheme. The url-filter always runs on the
// raw string; host is empty when no host can be recovered, so domain
// constraints then fail to match.
func parseTarget(raw string) (target, bool) {
	if !hasScheme(raw) {
		return target{}, false
	}
	host, _ := requestHost(raw)
	return target{url: raw, host: host}, true
}

// hasScheme reports whether raw starts with "scheme:"
func hasScheme(raw string) bool {
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			return true
		default:
			return false
		}
	}
	return false
}

// requestHost returns the normalized host of raw. When net/url rejects the URL
// (bad percent-escapes, control bytes) the host is taken from the authority
// between "://" and the first '/', '?' or '#'.
func requestHost(raw string) (string, bool) {
	var host string
	if u, err := url.Parse(raw); err == nil {
		host = u.Hostname()
	} else {
		host = authorityHost(raw)
	}
	return rules.NormalizeHost(host)
}

func authorityHost(raw string) string {
	i := strings.Index(raw, "://")
	if i < 0 {
		return ""
	}
	authority := raw[i+3:]
	if end := strings.IndexAny(authority, "/?#"); end >= 0 {
		authority = authority[:end]
	}
	if at := strings.LastIndexByte(authority, '@'); at >= 0 {
		authority = authority[at+1:]
	}

	if strings.HasPrefix(authority, "[") {
		end := strings.IndexByte(authority, ']')
		if end < 0 {
			return ""
		}
		return authority[1:end]
	}
	if colon := strings.LastIndexByte(authority, ':'); colon >= 0 {
		authority = authority[:colon]
	}
	return authority
}

// MatchTrigger reports whether req satisfies every condition of t.
// The url-filter runs first since it rejects the most requests.
func MatchTrigger(t *rules.Trigger, req models.MatchRequest) bool {
	tg, ok := parseTarget(req.URL)
	if !ok {
		return false
	}
	return matchTrigger(t, req, tg)
}

func matchTrigger(t *rules.Trigger, req models.MatchRequest, tg target) bool {
	if !t.URLFilter.Match(tg.url) {
		return false
	}

	if !t.ResourceTypes.Allows(req.ResourceType) {
		return false
	}

	if !t.LoadTypes.Allows(req.IsThirdParty) {
		return false
	}

	// Unclassifiable frames match every load-context
	if !req.FrameUnknown && !t.LoadContexts.Allows(req.IsForMainFrame) {
		return false
	}

	if len(t.IfDomain) > 0 {
		if !anyDomainMatches(t.IfDomain, tg.host) {
			return false
		}
	} else if len(t.UnlessDomain) > 0 {
		if anyDomainMatches(t.UnlessDomain, tg.host) {
			return false
		}
	}

	// Top URL constraints only apply when the page URL is known
	if req.TopURL != "" {
		if len(t.IfTopURL) > 0 && !anyPrefix(t.IfTopURL, req.TopURL) {
			return false
		}
		if len(t.UnlessTopURL) > 0 && anyPrefix(t.UnlessTopURL, req.TopURL) {
			return false
		}
	}

	return true
}

func anyDomainMatches(patterns []rules.DomainPattern, host string) bool {
	for _, p := range patterns {
		if p.Match(host) {
			return true
		}
	}
	return false
}

func anyPrefix(prefixes []string, s string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
