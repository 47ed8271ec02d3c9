package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainPatternMatch(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		host     string
		expected bool
	}{
		{name: "wildcard matches apex", pattern: "*.example.com", host: "example.com", expected: true},
		{name: "wildcard matches subdomain", pattern: "*.example.com", host: "sub.example.com", expected: true},
		{name: "wildcard matches deep subdomain", pattern: "*example.com", host: "a.b.example.com", expected: true},
		{name: "wildcard rejects suffix without dot", pattern: "*example.com", host: "badexample.com", expected: false},
		{name: "wildcard rejects other domain", pattern: "*.example.com", host: "other.org", expected: false},
		{name: "exact match", pattern: "example.com", host: "example.com", expected: true},
		{name: "exact rejects subdomain", pattern: "example.com", host: "www.example.com", expected: false},
		{name: "pattern is case-insensitive", pattern: "*.Example.COM", host: "www.example.com", expected: true},
		{name: "trailing dot ignored", pattern: "example.com.", host: "example.com", expected: true},
		{name: "idn pattern", pattern: "*.bücher.example", host: "shop.xn--bcher-kva.example", expected: true},
		{name: "empty host never matches", pattern: "*.example.com", host: "", expected: false},
		{name: "malformed never matches", pattern: "exa*mple.com", host: "exa*mple.com", expected: false},
		{name: "empty entry never matches", pattern: "", host: "example.com", expected: false},
		{name: "bare wildcard never matches", pattern: "*", host: "example.com", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseDomainPattern(tt.pattern)
			assert.Equal(t, tt.expected, p.Match(tt.host))
			assert.Equal(t, tt.pattern, p.String())
		})
	}
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Example.COM", "example.com", true},
		{"example.com.", "example.com", true},
		{"bücher.example", "xn--bcher-kva.example", true},
		{"", "", false},
		{".", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeHost(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
