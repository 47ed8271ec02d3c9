package rules

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webkit-content-blocker/internal/models"
)

func blockRecord(filter string) Record {
	return record(map[string]any{"url-filter": filter}, map[string]any{"type": "block"})
}

func TestCompilePreservesOrder(t *testing.T) {
	list := Compile([]Record{
		blockRecord("one"),
		record(map[string]any{"url-filter": "two"}, map[string]any{"type": "make-https"}),
		blockRecord("three"),
	})

	require.Equal(t, 3, list.Len())
	for i, r := range list.Rules() {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, "two", list.Rules()[1].Trigger.URLFilter.String())
	assert.True(t, list.Diagnostics().OK())
}

func TestCompileSkipsBrokenRules(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	list := Compile([]Record{
		blockRecord(`good\.com`),
		blockRecord(`[unbalanced`),
		record(map[string]any{"url-filter": ".*"}, map[string]any{"type": "explode"}),
		blockRecord(`other\.org`),
	}, WithLogger(logger))

	require.Equal(t, 2, list.Len())
	assert.Equal(t, 0, list.Rules()[0].Index)
	assert.Equal(t, 3, list.Rules()[1].Index)

	diag := list.Diagnostics()
	assert.False(t, diag.OK())
	assert.Equal(t, 4, diag.Total)
	assert.Equal(t, 2, diag.Compiled)
	assert.Equal(t, 2, diag.Skipped)
	assert.Equal(t, map[string]int{
		SkipInvalidURLFilter:  1,
		SkipUnknownActionType: 1,
	}, diag.SkipReasons)

	require.Len(t, diag.Errors, 2)
	var compileErr *CompileError
	require.ErrorAs(t, diag.Errors[0], &compileErr)
	assert.Equal(t, 1, compileErr.Index)
	var parseErr *ParseError
	require.ErrorAs(t, diag.Errors[1], &parseErr)
	assert.Equal(t, 2, parseErr.Index)

	assert.Contains(t, logs.String(), "content blocker rule dropped")
	assert.Contains(t, logs.String(), `"compiled":2`)
}

func TestCompileAllBroken(t *testing.T) {
	list := Compile([]Record{blockRecord("["), nil, blockRecord("a**")})
	assert.Equal(t, 0, list.Len())
	assert.Equal(t, 3, list.Diagnostics().Skipped)
	assert.Equal(t, 1, list.Diagnostics().SkipReasons[SkipInvalidShape])
}

func TestCompileEmpty(t *testing.T) {
	list := Compile(nil)
	assert.Equal(t, 0, list.Len())
	assert.True(t, list.Diagnostics().OK())

	var nilList *RuleList
	assert.Equal(t, 0, nilList.Len())
	assert.Nil(t, nilList.Rules())
	assert.Equal(t, 0, Empty.Len())
}

func TestCompileDedupe(t *testing.T) {
	records := []Record{
		blockRecord("ads"),
		record(map[string]any{"url-filter": "ads"}, map[string]any{"type": "block-cookies"}),
		blockRecord("ads"),
	}

	list := Compile(records)
	assert.Equal(t, 3, list.Len())

	list = Compile(records, WithDedupe(true))
	require.Equal(t, 2, list.Len())
	assert.Equal(t, models.ActionBlock, list.Rules()[0].Action.Type)
	assert.Equal(t, models.ActionBlockCookies, list.Rules()[1].Action.Type)
	assert.Equal(t, 1, list.Diagnostics().SkipReasons[SkipDuplicate])
	assert.Empty(t, list.Diagnostics().Errors)
}

func TestCompileStrictDomainsOption(t *testing.T) {
	rec := record(
		map[string]any{"url-filter": ".*", "if-domain": []any{"a.com"}, "unless-domain": []any{"b.com"}},
		map[string]any{"type": "block"},
	)

	assert.Equal(t, 0, Compile([]Record{rec}).Len())
	assert.Equal(t, 1, Compile([]Record{rec}, WithStrictDomains(false)).Len())
}

func TestCompileRaw(t *testing.T) {
	hide := models.NewRawRule(".*", models.ActionCSSDisplayNone)
	selector := ".banner"
	hide.Action.Selector = &selector
	hide.Trigger.IfDomain = []string{"*.example.com"}

	list := CompileRaw([]models.RawRule{
		models.NewRawRule(`tracker\.js`, models.ActionBlock),
		hide,
	})

	require.Equal(t, 2, list.Len())
	assert.Equal(t, ".banner", list.Rules()[1].Action.Selector)
	assert.Len(t, list.Rules()[1].Trigger.IfDomain, 1)
}
