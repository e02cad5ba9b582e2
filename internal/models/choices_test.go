package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shirtOptions = []ProductOption{
	{Name: "Size", Choices: []string{"S", "M", "L"}},
	{Name: "Color", Choices: []string{"Red", "Blue"}},
}

func TestUnmarshalPairList(t *testing.T) {
	raw := `[{"option":"Size","choice":"M"},{"option":"Color","choice":"Blue"}]`

	var c VariantChoices
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, ChoiceKindPairList, c.Kind())

	pairs := c.Normalize(shirtOptions)
	assert.Equal(t, []ChoicePair{{"Size", "M"}, {"Color", "Blue"}}, pairs)
}

func TestUnmarshalNameValueMap(t *testing.T) {
	raw := `{"Size":"M","Color":"Blue"}`

	var c VariantChoices
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, ChoiceKindNameValueMap, c.Kind())

	pairs := c.Normalize(shirtOptions)
	assert.Equal(t, []ChoicePair{{"Size", "M"}, {"Color", "Blue"}}, pairs)
}

func TestUnmarshalObjectList(t *testing.T) {
	raw := `[{"optionName":"Size","value":"M"},{"name":"Color","selection":"Blue"}]`

	var c VariantChoices
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, ChoiceKindObjectList, c.Kind())

	pairs := c.Normalize(shirtOptions)
	assert.Equal(t, []ChoicePair{{"Size", "M"}, {"Color", "Blue"}}, pairs)
}

func TestNormalizeBackfillsMissingChoice(t *testing.T) {
	// Size selected, Color missing: Color falls back to its first choice.
	c := NewChoicePairs([]ChoicePair{{Option: "Size", Choice: "L"}})

	pairs := c.Normalize(shirtOptions)
	require.Len(t, pairs, 2)
	assert.Equal(t, ChoicePair{"Size", "L"}, pairs[0])
	assert.Equal(t, ChoicePair{"Color", "Red"}, pairs[1])
}

func TestNormalizeEmptyChoicesBackfillsAll(t *testing.T) {
	var c VariantChoices

	pairs := c.Normalize(shirtOptions)
	assert.Equal(t, []ChoicePair{{"Size", "S"}, {"Color", "Red"}}, pairs)
}

func TestNormalizeMatchesOptionNameCaseInsensitive(t *testing.T) {
	c := NewChoiceValues(map[string]string{"  size ": "M"})

	pairs := c.Normalize(shirtOptions)
	assert.Equal(t, ChoicePair{"Size", "M"}, pairs[0])
}

func TestNormalizeDropsOptionWithoutChoices(t *testing.T) {
	options := []ProductOption{{Name: "Engraving"}}
	var c VariantChoices

	assert.Empty(t, c.Normalize(options))
}

func TestMarshalCanonicalShape(t *testing.T) {
	c := NewChoiceValues(map[string]string{"Size": "M"})

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"option":"Size","choice":"M"}]`, string(data))
}

func TestNormalizeOrderFollowsDeclaredOptions(t *testing.T) {
	c := NewChoicePairs([]ChoicePair{
		{Option: "Color", Choice: "Blue"},
		{Option: "Size", Choice: "S"},
	})

	pairs := c.Normalize(shirtOptions)
	assert.Equal(t, []ChoicePair{{"Size", "S"}, {"Color", "Blue"}}, pairs)
}
