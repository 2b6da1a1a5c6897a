package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAnswer_JSON(t *testing.T) {
	tests := []struct {
		name   string
		answer Answer
		want   string
	}{
		{"text", TextAnswer("Blue"), `"Blue"`},
		{"empty text", TextAnswer(""), `""`},
		{"null", NullAnswer(), `null`},
		{"empty list", ChoiceAnswer(nil), `[]`},
		{"choices", ChoiceAnswer([]Choice{{ID: "1", Option: "Fast", Rank: "2"}}), `[{"id":"1","option":"Fast","rank":"2"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.answer)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))

			var back Answer
			require.NoError(t, json.Unmarshal(b, &back))
			assert.True(t, tt.answer.Equal(back), "got %v", back)
		})
	}
}

func TestAnswer_UnmarshalJSONRejectsObjects(t *testing.T) {
	var a Answer
	err := json.Unmarshal([]byte(`{"option":"x"}`), &a)
	assert.Error(t, err)
}

func TestAnswer_Equal(t *testing.T) {
	assert.False(t, NullAnswer().Equal(TextAnswer("")), "null is not the empty string")
	assert.False(t, NullAnswer().Equal(ChoiceAnswer(nil)), "null is not the empty list")
	assert.False(t, TextAnswer("a").Equal(TextAnswer("b")))
	assert.False(t, ChoiceAnswer([]Choice{{Option: "A"}}).Equal(ChoiceAnswer([]Choice{{Option: "B"}})))
	assert.True(t, ChoiceAnswer(nil).Equal(ChoiceAnswer([]Choice{})))
}

func TestDocument_BSON(t *testing.T) {
	oid := primitive.NewObjectID()
	label := "Top 3"
	country := "BR"
	doc := Document{
		RecordID:     oid,
		RespondentID: "r1",
		CommonFields: CommonFields{Country: &country},
		SurveyData: map[string]AnswerEntry{
			"q1": {Question: &label, Answer: ChoiceAnswer([]Choice{{ID: "a", Option: "Price", Rank: "1"}})},
			"q2": {Question: &label, Answer: ChoiceAnswer(nil)},
			"q3": {Question: &label, Answer: NullAnswer()},
			"q4": {Question: &label, Answer: TextAnswer("Blue")},
		},
	}

	b, err := bson.Marshal(doc)
	require.NoError(t, err)

	raw := bson.Raw(b)
	assert.Equal(t, "BR", raw.Lookup("country").StringValue(), "common fields are stored at the top level")
	assert.Equal(t, "r1", raw.Lookup("id").StringValue())
	assert.Equal(t, bson.TypeNull, raw.Lookup("status").Type)
	assert.Equal(t, bson.TypeArray, raw.Lookup("survey_data", "q2", "answer").Type, "empty list stays a list")
	assert.Equal(t, bson.TypeNull, raw.Lookup("survey_data", "q3", "answer").Type)

	var back Document
	require.NoError(t, bson.Unmarshal(b, &back))
	assert.Equal(t, oid, back.RecordID)
	assert.Equal(t, "BR", *back.Country)
	for qid, entry := range doc.SurveyData {
		assert.True(t, entry.Answer.Equal(back.SurveyData[qid].Answer), "question %s", qid)
	}
	assert.Nil(t, back.SurveyData["q1"].Comments)
}
