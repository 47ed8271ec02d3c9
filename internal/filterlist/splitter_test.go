package filterlist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webkit-content-blocker/internal/models"
)

func makeRules(n int) []models.RawRule {
	out := make([]models.RawRule, n)
	for i := range out {
		out[i] = models.NewRawRule(fmt.Sprintf("ad%d", i), models.ActionBlock)
	}
	return out
}

func TestSplit(t *testing.T) {
	s := NewSplitter(2)

	parts := s.Split(makeRules(5), "easylist")
	require.Len(t, parts, 3)
	assert.Equal(t, "easylist-part1", parts[0].Name)
	assert.Equal(t, "easylist-part3", parts[2].Name)
	assert.Len(t, parts[2].Rules, 1)
	assert.Equal(t, "ad4", *parts[2].Rules[0].Trigger.URLFilter)

	single := s.Split(makeRules(2), "small")
	require.Len(t, single, 1)
	assert.Equal(t, "small", single[0].Name)
}

func TestNewSplitterDefault(t *testing.T) {
	assert.Equal(t, MaxRulesPerFile, NewSplitter(0).maxRules)
}

func TestDeduplicate(t *testing.T) {
	a := models.NewRawRule("ads", models.ActionBlock)
	b := models.NewRawRule("ads", models.ActionBlock)
	b.Trigger.ResourceType = []string{"image"}
	c := models.NewRawRule("ads", models.ActionBlock)

	out := Deduplicate([]models.RawRule{a, b, c})
	require.Len(t, out, 2)
	assert.Empty(t, out[0].Trigger.ResourceType)
	assert.Equal(t, []string{"image"}, out[1].Trigger.ResourceType)
}
