package blocker

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/rules"
)

func compile(t *testing.T, js string) *rules.RuleList {
	t.Helper()
	records, err := rules.DecodeJSON([]byte(js))
	require.NoError(t, err)
	return rules.Compile(records)
}

func request(url string, rt models.ResourceType) models.MatchRequest {
	return models.MatchRequest{URL: url, ResourceType: rt, IsForMainFrame: true}
}

func TestCheckRequestScenarios(t *testing.T) {
	tests := []struct {
		name     string
		rules    string
		req      models.MatchRequest
		expected models.Decision
	}{
		{
			name:     "block doubleclick",
			rules:    `[{"trigger":{"url-filter":".*doubleclick\\.net.*"},"action":{"type":"block"}}]`,
			req:      request("http://ad.doubleclick.net/pixel", models.ResourceImage),
			expected: models.Decision{Outcome: models.OutcomeBlock, RuleIndex: 0},
		},
		{
			name:     "make-https",
			rules:    `[{"trigger":{"url-filter":".*"},"action":{"type":"make-https"}}]`,
			req:      request("http://example.com/a", models.ResourceDocument),
			expected: models.Decision{Outcome: models.OutcomeUpgradeToHTTPS, RuleIndex: 0},
		},
		{
			name:     "css hide for script",
			rules:    `[{"trigger":{"url-filter":".*tracker\\.js","resource-type":["script"]},"action":{"type":"css-display-none","selector":".ad"}}]`,
			req:      request("http://x.com/tracker.js", models.ResourceScript),
			expected: models.Decision{Outcome: models.OutcomeInjectCSSHideSelector, Selector: ".ad", RuleIndex: 0},
		},
		{
			name:     "css hide skipped for image",
			rules:    `[{"trigger":{"url-filter":".*tracker\\.js","resource-type":["script"]},"action":{"type":"css-display-none","selector":".ad"}}]`,
			req:      request("http://x.com/tracker.js", models.ResourceImage),
			expected: models.Proceed,
		},
		{
			name:     "if-domain apex",
			rules:    `[{"trigger":{"url-filter":".*","if-domain":["*.good.com"]},"action":{"type":"block"}}]`,
			req:      request("http://good.com/x", models.ResourceDocument),
			expected: models.Decision{Outcome: models.OutcomeBlock, RuleIndex: 0},
		},
		{
			name:     "if-domain other host",
			rules:    `[{"trigger":{"url-filter":".*","if-domain":["*.good.com"]},"action":{"type":"block"}}]`,
			req:      request("http://evil.com/x", models.ResourceDocument),
			expected: models.Proceed,
		},
		{
			name:     "block-cookies",
			rules:    `[{"trigger":{"url-filter":"analytics"},"action":{"type":"block-cookies"}}]`,
			req:      request("https://analytics.example/collect", models.ResourceRaw),
			expected: models.Decision{Outcome: models.OutcomeBlockCookies, RuleIndex: 0},
		},
		{
			name:     "index survives dropped rules",
			rules:    `[{"trigger":{"url-filter":"["},"action":{"type":"block"}},{"trigger":{"url-filter":"ads"},"action":{"type":"block"}}]`,
			req:      request("https://ads.example/", models.ResourceImage),
			expected: models.Decision{Outcome: models.OutcomeBlock, RuleIndex: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := compile(t, tt.rules)
			assert.Equal(t, tt.expected, CheckRequest(list, tt.req))
		})
	}
}

func TestCheckRequestFirstMatchWins(t *testing.T) {
	list := compile(t, `[
		{"trigger":{"url-filter":"example"},"action":{"type":"block-cookies"}},
		{"trigger":{"url-filter":"example"},"action":{"type":"block"}},
		{"trigger":{"url-filter":".*"},"action":{"type":"make-https"}}
	]`)

	d := CheckRequest(list, request("http://example.com/", models.ResourceDocument))
	assert.Equal(t, models.OutcomeBlockCookies, d.Outcome)
	assert.Equal(t, 0, d.RuleIndex)

	d = CheckRequest(list, request("http://other.org/", models.ResourceDocument))
	assert.Equal(t, models.OutcomeUpgradeToHTTPS, d.Outcome)
	assert.Equal(t, 2, d.RuleIndex)
}

func TestCheckRequestEmptyList(t *testing.T) {
	for _, url := range []string{"http://example.com/", "", "not a url", "https://x.org/?q=1"} {
		assert.Equal(t, models.Proceed, CheckRequest(rules.Empty, request(url, models.ResourceDocument)))
		assert.Equal(t, models.Proceed, CheckRequest(nil, request(url, models.ResourceDocument)))
	}
}

func TestCheckRequestMalformedURL(t *testing.T) {
	list := compile(t, `[{"trigger":{"url-filter":".*"},"action":{"type":"block"}}]`)

	for _, url := range []string{"", "/relative/path", "example.com/ads", "%zz", "://no-scheme.com/"} {
		t.Run(url, func(t *testing.T) {
			assert.Equal(t, models.Proceed, CheckRequest(list, request(url, models.ResourceImage)))
		})
	}
}

func TestCheckRequestURLRejectedByNetURL(t *testing.T) {
	list := compile(t, `[
		{"trigger":{"url-filter":"^https://","if-domain":["*tracker.org"]},"action":{"type":"block-cookies"}},
		{"trigger":{"url-filter":".*doubleclick\\.net.*"},"action":{"type":"block"}}
	]`)

	tests := []struct {
		name     string
		url      string
		expected models.Decision
	}{
		{name: "clean path", url: "http://ad.doubleclick.net/pixel", expected: models.Decision{Outcome: models.OutcomeBlock, RuleIndex: 1}},
		{name: "bad escape in path", url: "http://ad.doubleclick.net/%zz/pixel", expected: models.Decision{Outcome: models.OutcomeBlock, RuleIndex: 1}},
		{name: "lone percent", url: "http://ad.doubleclick.net/a%/pixel", expected: models.Decision{Outcome: models.OutcomeBlock, RuleIndex: 1}},
		{name: "control byte", url: "http://ad.doubleclick.net/\x7f", expected: models.Decision{Outcome: models.OutcomeBlock, RuleIndex: 1}},
		{name: "bad escape in query", url: "http://ad.doubleclick.net/?q=%zz", expected: models.Decision{Outcome: models.OutcomeBlock, RuleIndex: 1}},
		{name: "domain rule with bad escape", url: "https://cdn.tracker.org:8443/%zz", expected: models.Decision{Outcome: models.OutcomeBlockCookies, RuleIndex: 0}},
		{name: "unterminated ipv6 host has no domain", url: "https://[::1/%zz", expected: models.Proceed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CheckRequest(list, request(tt.url, models.ResourceImage)))
		})
	}
}

func TestCheckRequestCaseInsensitiveDefault(t *testing.T) {
	list := compile(t, `[{"trigger":{"url-filter":"example\\.com"},"action":{"type":"block"}}]`)

	assert.Equal(t, models.OutcomeBlock, CheckRequest(list, request("http://EXAMPLE.com/x", models.ResourceImage)).Outcome)
	assert.Equal(t, models.OutcomeBlock, CheckRequest(list, request("http://example.com/x", models.ResourceImage)).Outcome)
}

func TestCheckRequestAllRulesBroken(t *testing.T) {
	list := compile(t, `[{"trigger":{"url-filter":"["},"action":{"type":"block"}},{"trigger":{},"action":{"type":"block"}}]`)

	assert.Equal(t, 0, list.Len())
	assert.Equal(t, models.Proceed, CheckRequest(list, request("http://example.com/", models.ResourceDocument)))
}

func TestHandlerSwap(t *testing.T) {
	h := NewHandler(nil, zerolog.Nop())
	assert.False(t, h.Enabled())
	assert.Equal(t, models.Proceed, h.Check(request("http://ads.example/", models.ResourceImage)))

	diag := h.Load([]rules.Record{
		{"trigger": map[string]any{"url-filter": "ads"}, "action": map[string]any{"type": "block"}},
		{"trigger": map[string]any{"url-filter": "("}, "action": map[string]any{"type": "nope"}},
	})
	assert.True(t, h.Enabled())
	assert.Equal(t, 1, diag.Compiled)
	assert.Equal(t, 1, diag.Skipped)
	assert.Equal(t, models.OutcomeBlock, h.Check(request("http://ads.example/", models.ResourceImage)).Outcome)

	prev := h.Swap(nil)
	assert.Equal(t, 1, prev.Len())
	assert.False(t, h.Enabled())
	assert.Same(t, rules.Empty, h.Rules())
}

func TestHandlerConcurrentCheck(t *testing.T) {
	first := compile(t, `[{"trigger":{"url-filter":"ads"},"action":{"type":"block"}}]`)
	second := compile(t, `[{"trigger":{"url-filter":"ads"},"action":{"type":"block-cookies"}}]`)
	h := NewHandler(first, zerolog.Nop())

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				d := h.Check(request(fmt.Sprintf("http://ads.example/%d/%d", w, i), models.ResourceImage))
				if d.Outcome != models.OutcomeBlock && d.Outcome != models.OutcomeBlockCookies {
					errs <- fmt.Errorf("worker %d: unexpected outcome %s", w, d.Outcome)
					return
				}
				// The same snapshot always gives the same answer
				if got := CheckRequest(first, request("http://ads.example/", models.ResourceImage)); got.Outcome != models.OutcomeBlock {
					errs <- fmt.Errorf("worker %d: snapshot changed", w)
					return
				}
			}
		}(w)
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			h.Swap(second)
		} else {
			h.Swap(first)
		}
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
