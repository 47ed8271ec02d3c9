package filterlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineTypes(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected FilterType
	}{
		{"comment", "! Title: EasyList", FilterTypeComment},
		{"header", "[Adblock Plus 2.0]", FilterTypeComment},
		{"hash comment", "# hosts style comment", FilterTypeComment},
		{"network", "||ads.example.com^", FilterTypeNetwork},
		{"exception", "@@||example.com/ads.js", FilterTypeException},
		{"generic cosmetic", "##.ad-banner", FilterTypeCosmetic},
		{"domain cosmetic", "example.com,~shop.example.com##.sidebar-ad", FilterTypeCosmetic},
		{"cosmetic exception", "example.com#@#.ad-banner", FilterTypeCosmeticException},
		{"scriptlet", "example.com##+js(set-constant, ads, false)", FilterTypeUnsupported},
		{"html filter", "example.com##^script:has-text(ads)", FilterTypeUnsupported},
		{"procedural", "example.com##div:has(> .ad)", FilterTypeUnsupported},
		{"redirect", "||example.com/ads.js$script,redirect=noopjs", FilterTypeUnsupported},
		{"hosts entry", "0.0.0.0 ads.example.com", FilterTypeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser()
			f := p.parseLine(tt.line)
			assert.Equal(t, tt.expected, f.Type)
		})
	}
}

func TestParseNetworkOptions(t *testing.T) {
	p := NewParser()
	f := p.parseLine("||tracker.example^$script,image,third-party,match-case,domain=a.com|~b.a.com")

	assert.Equal(t, "||tracker.example^", f.Pattern)
	assert.Equal(t, []string{"script", "image"}, f.Options.ResourceTypes)
	require.NotNil(t, f.Options.ThirdParty)
	assert.True(t, *f.Options.ThirdParty)
	assert.True(t, f.Options.MatchCase)
	assert.Equal(t, []string{"a.com"}, f.Options.Domains)
	assert.Equal(t, []string{"b.a.com"}, f.Options.ExcludeDomains)
}

func TestParseNetworkOptionsNegatedType(t *testing.T) {
	p := NewParser()
	f := p.parseLine("/ads/*$~image,1p")

	assert.Equal(t, "/ads/*", f.Pattern)
	assert.Empty(t, f.Options.ResourceTypes)
	assert.Equal(t, []string{"image"}, f.Options.ExcludedResourceTypes)
	require.NotNil(t, f.Options.ThirdParty)
	assert.False(t, *f.Options.ThirdParty)
}

func TestParseRegexDollarIsNotOptions(t *testing.T) {
	p := NewParser()
	f := p.parseLine(`/ads\.js$/`)

	assert.Equal(t, FilterTypeNetwork, f.Type)
	assert.Equal(t, `/ads\.js$/`, f.Pattern)
}

func TestParseStats(t *testing.T) {
	list := strings.Join([]string{
		"[Adblock Plus 2.0]",
		"! comment",
		"",
		"||ads.example.com^",
		"@@||example.com/allowed.js",
		"##.ad",
		"example.com#@#.ad",
		"example.com##+js(nobab)",
		"||x.com^$csp=script-src 'none'",
	}, "\n")

	p := NewParser()
	filters, err := p.Parse(strings.NewReader(list))
	require.NoError(t, err)

	assert.Len(t, filters, 4)

	stats := p.Stats()
	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 2, stats.Comments)
	assert.Equal(t, 1, stats.Network)
	assert.Equal(t, 1, stats.Exception)
	assert.Equal(t, 2, stats.Cosmetic)
	assert.Equal(t, 2, stats.Unsupported)
	assert.Equal(t, 1, stats.SkipReasons[SkipScriptlet])
	assert.Equal(t, 1, stats.SkipReasons[SkipUnsupportedOpt])
}
