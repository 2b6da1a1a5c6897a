package source

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyhub/internal/model"
)

func TestDecodeFirst(t *testing.T) {
	entries, err := DecodeFirst([]byte(`{"data":[{"id":"r1","contact_id":7,"survey_data":{}}, "junk"]}`))
	require.NoError(t, err)

	require.Len(t, entries, 1, "non-object elements are dropped")
	assert.Equal(t, "r1", entries[0]["id"])
	assert.Equal(t, json.Number("7"), entries[0]["contact_id"], "numbers keep their text")
}

func TestDecodeFirst_KeepsQuestionOrder(t *testing.T) {
	entries, err := DecodeFirst([]byte(`{"data":[{"id":"r1","survey_data":{
		"q2":  {"question":"Color","answer":"Blue"},
		"q10": {"question":"Color","answer":"Red"},
		"q1":  {"question":"Size","answer":{"nested":true}}
	}}]}`))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, ok := entries[0]["survey_data"].(model.OrderedMap)
	require.True(t, ok, "got %T", entries[0]["survey_data"])
	assert.Equal(t, []string{"q2", "q10", "q1"}, data.Keys)
	assert.Equal(t, "Red", data.Values["q10"].(map[string]any)["answer"])
}

func TestDecodeJSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"missing data", `{"items":[]}`},
		{"data is not a list", `{"data":{"id":"r1"}}`},
		{"null data", `{"data":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSecond([]byte(tt.body))
			assert.True(t, errors.Is(err, ErrMalformedPayload), "got %v", err)
		})
	}
}

func TestDecodeSecond_EmptyDataIsValid(t *testing.T) {
	entries, err := DecodeSecond([]byte(`{"data":[]}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecodeThird(t *testing.T) {
	body := []byte(`<survey_answer><data>
		<item>
			<id>r1</id>
			<status>Complete</status>
			<survey_data>
				<item><id>q1</id><question>Pick</question><answer><item>A</item><item>B</item></answer><comments></comments></item>
				<item><id>q2</id><question>Color</question><answer>Blue</answer></item>
			</survey_data>
		</item>
		<item>
			<id>r2</id>
			<survey_data><item><id>q3</id><question>Solo</question><answer><item>Only</item></answer></item></survey_data>
		</item>
	</data></survey_answer>`)

	entries, err := DecodeThird(body)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	r1 := entries[0]
	assert.Equal(t, "r1", r1["id"])
	items, ok := r1["survey_data"].(map[string]any)["item"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)

	pick := items[0].(map[string]any)
	assert.Equal(t, map[string]any{"item": []any{"A", "B"}}, pick["answer"])
	assert.Nil(t, pick["comments"], "empty elements become null")
	assert.Equal(t, "Blue", items[1].(map[string]any)["answer"])

	solo := entries[1]["survey_data"].(map[string]any)["item"].(map[string]any)
	assert.Equal(t, map[string]any{"item": "Only"}, solo["answer"], "a lone element is not a list")
}

func TestDecodeThird_SingleRespondent(t *testing.T) {
	entries, err := DecodeThird([]byte(`<survey_answer><data><item><id>r1</id></item></data></survey_answer>`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "r1", entries[0]["id"])
}

func TestDecodeThird_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not xml", `{"data":[]}`},
		{"wrong root", `<answers><data><item><id>r1</id></item></data></answers>`},
		{"no items", `<survey_answer><data></data></survey_answer>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeThird([]byte(tt.body))
			assert.True(t, errors.Is(err, ErrMalformedPayload), "got %v", err)
		})
	}
}

func TestLoadDir(t *testing.T) {
	p, err := LoadDir("testdata")
	require.NoError(t, err)

	assert.Len(t, p.First, 1)
	assert.Len(t, p.Second, 2)
	assert.Len(t, p.Third, 2)
}

func TestLoadDir_MissingFile(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.Error(t, err)
}
