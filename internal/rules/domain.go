package rules

import (
	"strings"

	"golang.org/x/net/idna"
)

// DomainPattern is one if-domain/unless-domain entry.
// A leading "*" matches the domain itself and any subdomain.
type DomainPattern struct {
	raw      string
	domain   string
	wildcard bool
	valid    bool
}

// ParseDomainPattern normalizes an entry. Malformed entries are kept but never match.
func ParseDomainPattern(s string) DomainPattern {
	p := DomainPattern{raw: s}

	d := strings.TrimSpace(s)
	if strings.HasPrefix(d, "*") {
		p.wildcard = true
		d = strings.TrimPrefix(d[1:], ".")
	}

	d, ok := NormalizeHost(d)
	if !ok || strings.ContainsAny(d, "*/:") {
		return p
	}

	p.domain = d
	p.valid = true
	return p
}

// Match reports whether host (already normalized) matches the pattern
func (p DomainPattern) Match(host string) bool {
	if !p.valid || host == "" {
		return false
	}
	if host == p.domain {
		return true
	}
	return p.wildcard &&
		len(host) > len(p.domain) &&
		strings.HasSuffix(host, p.domain) &&
		host[len(host)-len(p.domain)-1] == '.'
}

// Valid reports whether the entry was well-formed
func (p DomainPattern) Valid() bool {
	return p.valid
}

// String returns the entry as configured
func (p DomainPattern) String() string {
	return p.raw
}

// NormalizeHost lower-cases a host name, drops a trailing dot and converts
// internationalized names to their ASCII form
func NormalizeHost(host string) (string, bool) {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return "", false
	}

	for i := 0; i < len(host); i++ {
		if host[i] >= 0x80 {
			ascii, err := idna.ToASCII(host)
			if err != nil {
				return "", false
			}
			return ascii, true
		}
	}
	return host, true
}
