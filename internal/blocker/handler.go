// Package blocker decides, for each resource load, whether to proceed, block or rewrite it.
package blocker

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/rules"
)

// CheckRequest evaluates req against list in order and returns the decision
// of the first matching rule. It never fails: empty lists and URLs without a
// scheme yield models.Proceed. URLs that net/url rejects are still matched.
func CheckRequest(list *rules.RuleList, req models.MatchRequest) models.Decision {
	if list.Len() == 0 {
		return models.Proceed
	}

	tg, ok := parseTarget(req.URL)
	if !ok {
		return models.Proceed
	}

	rs := list.Rules()
	for i := range rs {
		if matchTrigger(&rs[i].Trigger, req, tg) {
			return Resolve(&rs[i])
		}
	}
	return models.Proceed
}

// Handler owns the active rule list of one WebView. Check may be called from
// any number of goroutines while Swap replaces the list.
type Handler struct {
	rules  atomic.Pointer[rules.RuleList]
	logger zerolog.Logger
}

// NewHandler creates a handler serving list (nil means no rules)
func NewHandler(list *rules.RuleList, logger zerolog.Logger) *Handler {
	h := &Handler{logger: logger.With().Str("component", "content-blocker").Logger()}
	if list == nil {
		list = rules.Empty
	}
	h.rules.Store(list)
	return h
}

// Rules returns the current snapshot
func (h *Handler) Rules() *rules.RuleList {
	return h.rules.Load()
}

// Enabled reports whether any rule is active. Callers may skip Check when it is not.
func (h *Handler) Enabled() bool {
	return h.rules.Load().Len() > 0
}

// Swap atomically replaces the rule list and returns the previous one
func (h *Handler) Swap(list *rules.RuleList) *rules.RuleList {
	if list == nil {
		list = rules.Empty
	}
	prev := h.rules.Swap(list)
	h.logger.Info().
		Int("previous", prev.Len()).
		Int("current", list.Len()).
		Msg("content blocker rules replaced")
	return prev
}

// Load compiles records and swaps them in, returning the compile diagnostics
func (h *Handler) Load(records []rules.Record, opts ...rules.Option) rules.Diagnostics {
	opts = append([]rules.Option{rules.WithLogger(h.logger)}, opts...)
	list := rules.Compile(records, opts...)
	h.Swap(list)
	return list.Diagnostics()
}

// Check evaluates req against the current snapshot
func (h *Handler) Check(req models.MatchRequest) models.Decision {
	return CheckRequest(h.rules.Load(), req)
}
