package blocker

import (
	"mime"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/bnema/webkit-content-blocker/internal/models"
)

// ResourceTypeFromContentType infers the resource type from a response
// Content-Type. Unknown types are raw.
func ResourceTypeFromContentType(contentType string) models.ResourceType {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}

	// https://developer.mozilla.org/en-US/docs/Web/HTTP/Basics_of_HTTP/MIME_types
	switch {
	case mt == "text/css":
		return models.ResourceStyleSheet
	case mt == "image/svg+xml":
		return models.ResourceSVGDocument
	case strings.HasPrefix(mt, "image/"):
		return models.ResourceImage
	case strings.HasPrefix(mt, "font/"):
		return models.ResourceFont
	case strings.HasPrefix(mt, "audio/"), strings.HasPrefix(mt, "video/"), mt == "application/ogg":
		return models.ResourceMedia
	case strings.HasSuffix(mt, "javascript"):
		return models.ResourceScript
	case strings.HasPrefix(mt, "text/"):
		return models.ResourceDocument
	}
	return models.ResourceRaw
}

// IsThirdParty classifies reqURL relative to the top-level page topURL by
// comparing registrable domains. known is false when either URL has no host.
func IsThirdParty(topURL, reqURL string) (thirdParty, known bool) {
	top, ok := siteOf(topURL)
	if !ok {
		return false, false
	}
	req, ok := siteOf(reqURL)
	if !ok {
		return false, false
	}
	return top != req, true
}

// siteOf returns the registrable domain of a URL, or its host when it has none
func siteOf(raw string) (string, bool) {
	host, ok := requestHost(raw)
	if !ok {
		return "", false
	}
	if site, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return site, true
	}
	// IP addresses, localhost and bare public suffixes
	return host, true
}
