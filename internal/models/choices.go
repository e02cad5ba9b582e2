package models

import (
	"encoding/json"
	"sort"
	"strings"
)

// ChoicePair is the canonical encoding of one selected option value.
type ChoicePair struct {
	Option string `json:"option"`
	Choice string `json:"choice"`
}

type ChoiceKind int

const (
	ChoiceKindNone ChoiceKind = iota
	ChoiceKindPairList
	ChoiceKindNameValueMap
	ChoiceKindObjectList
)

// VariantChoices is the source-side encoding of which option values a variant
// selects. The platform emits three shapes for the same data depending on
// schema version and endpoint: an ordered list of {option, choice} pairs, a
// name->value map, or a list of loosely-keyed objects. All three converge to
// []ChoicePair through Normalize.
type VariantChoices struct {
	kind    ChoiceKind
	pairs   []ChoicePair
	values  map[string]string
	objects []map[string]string
}

func NewChoicePairs(pairs []ChoicePair) VariantChoices {
	return VariantChoices{kind: ChoiceKindPairList, pairs: pairs}
}

func NewChoiceValues(values map[string]string) VariantChoices {
	return VariantChoices{kind: ChoiceKindNameValueMap, values: values}
}

func NewChoiceObjects(objects []map[string]string) VariantChoices {
	return VariantChoices{kind: ChoiceKindObjectList, objects: objects}
}

func (c VariantChoices) Kind() ChoiceKind { return c.kind }

func (c *VariantChoices) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*c = VariantChoices{}
		return nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var values map[string]string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*c = NewChoiceValues(values)
		return nil
	}

	var objects []map[string]string
	if err := json.Unmarshal(data, &objects); err != nil {
		return err
	}

	// A pair list is an object list whose every element carries the canonical
	// option/choice keys.
	pairs := make([]ChoicePair, 0, len(objects))
	for _, obj := range objects {
		option, hasOption := obj["option"]
		choice, hasChoice := obj["choice"]
		if !hasOption || !hasChoice {
			*c = NewChoiceObjects(objects)
			return nil
		}
		pairs = append(pairs, ChoicePair{Option: option, Choice: choice})
	}
	*c = NewChoicePairs(pairs)
	return nil
}

// MarshalJSON always writes the canonical pair-list shape so exported
// documents are uniform regardless of what the source store sent.
func (c VariantChoices) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.rawPairs())
}

// rawPairs converts any representation to pairs without consulting declared
// options: no ordering or backfill guarantees.
func (c VariantChoices) rawPairs() []ChoicePair {
	switch c.kind {
	case ChoiceKindPairList:
		return c.pairs
	case ChoiceKindNameValueMap:
		pairs := make([]ChoicePair, 0, len(c.values))
		for option, choice := range c.values {
			pairs = append(pairs, ChoicePair{Option: option, Choice: choice})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Option < pairs[j].Option })
		return pairs
	case ChoiceKindObjectList:
		pairs := make([]ChoicePair, 0, len(c.objects))
		for _, obj := range c.objects {
			option := firstNonEmpty(obj, "option", "optionName", "option_name", "name")
			choice := firstNonEmpty(obj, "choice", "choiceName", "choice_name", "value", "selection")
			if option == "" {
				continue
			}
			pairs = append(pairs, ChoicePair{Option: option, Choice: choice})
		}
		return pairs
	default:
		return []ChoicePair{}
	}
}

// Lookup returns the selected choice for an option, matching the option name
// case-insensitively and trimmed.
func (c VariantChoices) Lookup(option string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(option))
	for _, pair := range c.rawPairs() {
		if strings.ToLower(strings.TrimSpace(pair.Option)) == want && pair.Choice != "" {
			return pair.Choice, true
		}
	}
	return "", false
}

// Normalize converges any representation to exactly one pair per declared
// option, in declaration order. A missing selection is backfilled with the
// option's first defined choice; options with no defined choices are dropped.
func (c VariantChoices) Normalize(options []ProductOption) []ChoicePair {
	pairs := make([]ChoicePair, 0, len(options))
	for _, option := range options {
		if choice, ok := c.Lookup(option.Name); ok {
			pairs = append(pairs, ChoicePair{Option: option.Name, Choice: choice})
			continue
		}
		if len(option.Choices) == 0 {
			continue
		}
		pairs = append(pairs, ChoicePair{Option: option.Name, Choice: option.Choices[0]})
	}
	return pairs
}

func firstNonEmpty(obj map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := obj[key]; v != "" {
			return v
		}
	}
	return ""
}
