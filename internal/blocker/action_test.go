package blocker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/rules"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		action   rules.Action
		expected models.Decision
	}{
		{
			name:     "block",
			action:   rules.Action{Type: models.ActionBlock},
			expected: models.Decision{Outcome: models.OutcomeBlock, RuleIndex: 7},
		},
		{
			name:     "block-cookies",
			action:   rules.Action{Type: models.ActionBlockCookies},
			expected: models.Decision{Outcome: models.OutcomeBlockCookies, RuleIndex: 7},
		},
		{
			name:     "css-display-none keeps selector unescaped",
			action:   rules.Action{Type: models.ActionCSSDisplayNone, Selector: `a[href*="ads"] > .x`},
			expected: models.Decision{Outcome: models.OutcomeInjectCSSHideSelector, Selector: `a[href*="ads"] > .x`, RuleIndex: 7},
		},
		{
			name:     "make-https",
			action:   rules.Action{Type: models.ActionMakeHTTPS},
			expected: models.Decision{Outcome: models.OutcomeUpgradeToHTTPS, RuleIndex: 7},
		},
		{
			name:     "unknown action proceeds",
			action:   rules.Action{Type: models.ActionType(99)},
			expected: models.Proceed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := rules.Rule{Index: 7, Action: tt.action}
			assert.Equal(t, tt.expected, Resolve(&rule))
		})
	}
}

func TestUpgradeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain http", input: "http://example.com/a", expected: "https://example.com/a"},
		{name: "keeps query and fragment", input: "http://example.com/a?b=c&d=%20#frag", expected: "https://example.com/a?b=c&d=%20#frag"},
		{name: "uppercase scheme", input: "HTTP://example.com/", expected: "https://example.com/"},
		{name: "drops default port", input: "http://example.com:80/a", expected: "https://example.com/a"},
		{name: "drops default port without path", input: "http://user@example.com:80", expected: "https://user@example.com"},
		{name: "custom port untouched", input: "http://example.com:8080/a", expected: "http://example.com:8080/a"},
		{name: "already https", input: "https://example.com/a", expected: "https://example.com/a"},
		{name: "other scheme", input: "ftp://example.com/a", expected: "ftp://example.com/a"},
		{name: "opaque http", input: "http:example.com", expected: "http:example.com"},
		{name: "malformed", input: "http://[::1", expected: "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := UpgradeURL(tt.input)
			assert.Equal(t, tt.expected, once)
			assert.Equal(t, once, UpgradeURL(once), "upgrade is idempotent")
		})
	}
}

func TestApplyDecision(t *testing.T) {
	upgrade := models.Decision{Outcome: models.OutcomeUpgradeToHTTPS}
	assert.Equal(t, "https://example.com/a", ApplyDecision(upgrade, "http://example.com/a"))
	assert.Equal(t, "https://example.com/a", ApplyDecision(upgrade, "https://example.com/a"))
	assert.Equal(t, "http://example.com/a", ApplyDecision(models.Proceed, "http://example.com/a"))
}

func TestHideStylesheet(t *testing.T) {
	assert.Equal(t, ".ad, #banner { display: none !important; }", HideStylesheet(".ad, #banner"))
}
