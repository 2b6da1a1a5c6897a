package reconcile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"surveyhub/internal/model"
)

// sequentialIDs returns a generator of predictable ObjectIDs
func sequentialIDs() IDGenerator {
	var n byte
	return func() primitive.ObjectID {
		n++
		var oid primitive.ObjectID
		oid[11] = n
		return oid
	}
}

func newTestEngine() *Engine {
	e := NewEngine(nil)
	e.SetIDGenerator(sequentialIDs())
	return e
}

func documentFor(t *testing.T, docs []model.Document, respondentID string) model.Document {
	t.Helper()
	for _, d := range docs {
		if d.RespondentID == respondentID {
			return d
		}
	}
	t.Fatalf("no document for respondent %q", respondentID)
	return model.Document{}
}

func TestEngine_SourceTwoOverridesSourceOne(t *testing.T) {
	payloads := &model.Payloads{
		First: []map[string]any{
			firstEntry("r1", map[string]any{"q1": map[string]any{"question": "Color", "answer": "Blue"}}),
		},
		Second: []map[string]any{{"id": "r1", "Color": `"Red"`}},
		Third:  []map[string]any{thirdEntry("r9")},
	}

	res, err := newTestEngine().Reconcile(payloads)
	require.NoError(t, err)

	doc := documentFor(t, res.Documents, "r1")
	require.Contains(t, doc.SurveyData, "q1", "label resolves to the source 1 native id")
	assert.NotContains(t, doc.SurveyData, "Color")
	assert.True(t, model.TextAnswer("Red").Equal(doc.SurveyData["q1"].Answer))
}

func TestEngine_SourceThreeOverridesSourceTwo(t *testing.T) {
	payloads := &model.Payloads{
		First: []map[string]any{firstEntry("r0", map[string]any{})},
		Second: []map[string]any{
			{"id": "r1", "Size": "Small", "Size_comments": "from source 2"},
		},
		Third: []map[string]any{
			thirdEntry("r1", map[string]any{"id": "s1", "question": "Size", "answer": "Large"}),
		},
	}

	res, err := newTestEngine().Reconcile(payloads)
	require.NoError(t, err)

	doc := documentFor(t, res.Documents, "r1")
	// Source 3 defines "Size" as s1 and Source 2 resolves to it, so the later writer wins
	require.Contains(t, doc.SurveyData, "s1")
	entry := doc.SurveyData["s1"]
	assert.True(t, model.TextAnswer("Large").Equal(entry.Answer))
	assert.Nil(t, entry.Comments, "the whole entry is replaced")
}

func TestEngine_CommonFieldsFromFirstMention(t *testing.T) {
	payloads := &model.Payloads{
		First: []map[string]any{
			{"id": "r1", "status": "Complete", "country": "BR", "survey_data": map[string]any{}},
		},
		Second: []map[string]any{
			{"id": "r1", "status": "Partial", "country": "US"},
			{"id": "r2", "status": "Disqualified"},
		},
		Third: []map[string]any{
			{"id": "r2", "status": "Complete", "language": "en"},
		},
	}

	res, err := newTestEngine().Reconcile(payloads)
	require.NoError(t, err)

	r1 := documentFor(t, res.Documents, "r1")
	assert.Equal(t, "Complete", *r1.Status)
	assert.Equal(t, "BR", *r1.Country)

	r2 := documentFor(t, res.Documents, "r2")
	assert.Equal(t, "Disqualified", *r2.Status)
	assert.Nil(t, r2.Language, "later sources never fill common fields")
}

func TestEngine_UnparsableIdentityAppearsOnce(t *testing.T) {
	payloads := &model.Payloads{
		First:  []map[string]any{firstEntry("r1", map[string]any{})},
		Second: []map[string]any{{"id": "not-a-valid-id-format", "Color": "Blue"}},
		Third:  []map[string]any{thirdEntry("r1")},
	}

	res, err := newTestEngine().Reconcile(payloads)
	require.NoError(t, err)

	count := 0
	for _, d := range res.Documents {
		if d.RespondentID == "not-a-valid-id-format" {
			count++
			assert.False(t, d.RecordID.IsZero())
			assert.NotEqual(t, "not-a-valid-id-format", d.RecordID.Hex())
		}
	}
	assert.Equal(t, 1, count)
}

func TestEngine_ThirdSourceWrappedList(t *testing.T) {
	payloads := &model.Payloads{
		First:  []map[string]any{firstEntry("r1", map[string]any{})},
		Second: []map[string]any{{"id": "r1"}},
		Third: []map[string]any{
			thirdEntry("r1", map[string]any{"id": "t1", "question": "Letters", "answer": map[string]any{"item": []any{"A", "B"}}}),
		},
	}

	res, err := newTestEngine().Reconcile(payloads)
	require.NoError(t, err)

	doc := documentFor(t, res.Documents, "r1")
	want := model.ChoiceAnswer([]model.Choice{
		{ID: "", Option: "A", Rank: ""},
		{ID: "", Option: "B", Rank: ""},
	})
	assert.True(t, want.Equal(doc.SurveyData["t1"].Answer))
}

func TestEngine_EmptySourceAborts(t *testing.T) {
	full := []map[string]any{{"id": "r1"}}

	tests := []struct {
		name     string
		payloads *model.Payloads
	}{
		{"nil payloads", nil},
		{"empty source 1", &model.Payloads{Second: full, Third: full}},
		{"empty source 2", &model.Payloads{First: full, Third: full}},
		{"empty source 3", &model.Payloads{First: full, Second: full, Third: []map[string]any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestEngine().Reconcile(tt.payloads)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrEmptySource), "got %v", err)
		})
	}
}

func TestEngine_FullPass(t *testing.T) {
	payloads := &model.Payloads{
		First: []map[string]any{
			{
				"id":         "r1",
				"contact_id": "100",
				"status":     "Complete",
				"survey_data": map[string]any{
					"q1": map[string]any{"question": "Color", "answer": "Blue", "type": "TEXT"},
					"q2": map[string]any{"question": "Top 3", "answer": []any{}, "type": "RANK"},
				},
			},
		},
		Second: []map[string]any{
			{
				"id":     "r1",
				"status": "ignored",
				"Top 3":  `[{"id":"a","option":"Price","rank":"1"},{"id":"b","option":"Brand","rank":"2"},{"id":"c","option":"Design","rank":"3"}]`,
			},
			{"id": "r2", "contact_id": "200", "Color": "", "Color_comments": "no idea"},
		},
		Third: []map[string]any{
			thirdEntry("r2", map[string]any{"id": "x1", "question": "Extra", "answer": "Yes"}),
		},
	}

	res, err := newTestEngine().Reconcile(payloads)
	require.NoError(t, err)

	want := []model.Document{
		{
			RecordID:     primitive.ObjectID{11: 1},
			RespondentID: "r1",
			CommonFields: model.CommonFields{ContactID: strp("100"), Status: strp("Complete")},
			SurveyData: map[string]model.AnswerEntry{
				"q1": {Question: strp("Color"), Answer: model.TextAnswer("Blue"), Type: strp("TEXT")},
				"q2": {
					Question: strp("Top 3"),
					Answer: model.ChoiceAnswer([]model.Choice{
						{ID: "a", Option: "Price", Rank: "1"},
						{ID: "b", Option: "Brand", Rank: "2"},
						{ID: "c", Option: "Design", Rank: "3"},
					}),
					Type: strp("RANK"),
				},
			},
		},
		{
			RecordID:     primitive.ObjectID{11: 2},
			RespondentID: "r2",
			CommonFields: model.CommonFields{ContactID: strp("200")},
			SurveyData: map[string]model.AnswerEntry{
				"q1":             {Question: strp("Color"), Answer: model.NullAnswer(), Comments: strp("no idea"), Type: strp("TEXT")},
				"Color_comments": {Question: strp("Color_comments"), Answer: model.TextAnswer("no idea")},
				"x1":             {Question: strp("Extra"), Answer: model.TextAnswer("Yes")},
			},
		},
	}

	if diff := cmp.Diff(want, res.Documents); diff != "" {
		t.Errorf("documents mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, model.SourceCounts{First: 1, Second: 2, Third: 1}, res.Fetched)
	assert.Equal(t, 3, res.Questions)
	assert.Zero(t, res.Skipped)
}
