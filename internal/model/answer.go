package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// QuestionTypeRank is the question type tag carried by ranked-option questions
const QuestionTypeRank = "RANK"

// Choice is one option of a multi-option or ranked answer
type Choice struct {
	ID     string `json:"id" bson:"id"`
	Option string `json:"option" bson:"option"`
	Rank   string `json:"rank" bson:"rank"`
}

// Answer is either a scalar (string or null) or an ordered ChoiceList.
// Choices is non-nil exactly when the answer is a list; an empty list stays a list.
type Answer struct {
	Text    *string
	Choices []Choice
}

// TextAnswer returns a scalar string answer
func TextAnswer(s string) Answer {
	return Answer{Text: &s}
}

// NullAnswer returns the null scalar answer
func NullAnswer() Answer {
	return Answer{}
}

// ChoiceAnswer returns a list answer; a nil slice becomes an empty list
func ChoiceAnswer(choices []Choice) Answer {
	if choices == nil {
		choices = []Choice{}
	}
	return Answer{Choices: choices}
}

// IsList reports whether the answer is a ChoiceList
func (a Answer) IsList() bool {
	return a.Choices != nil
}

// IsNull reports whether the answer is the null scalar
func (a Answer) IsNull() bool {
	return a.Choices == nil && a.Text == nil
}

// Equal compares two answers by shape and content
func (a Answer) Equal(b Answer) bool {
	if a.IsList() != b.IsList() {
		return false
	}
	if a.IsList() {
		if len(a.Choices) != len(b.Choices) {
			return false
		}
		for i := range a.Choices {
			if a.Choices[i] != b.Choices[i] {
				return false
			}
		}
		return true
	}
	if a.Text == nil || b.Text == nil {
		return a.Text == nil && b.Text == nil
	}
	return *a.Text == *b.Text
}

func (a Answer) String() string {
	switch {
	case a.IsList():
		return fmt.Sprintf("%v", a.Choices)
	case a.Text == nil:
		return "null"
	default:
		return *a.Text
	}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsList() {
		return json.Marshal(a.Choices)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*a = NullAnswer()
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var choices []Choice
		if err := json.Unmarshal(trimmed, &choices); err != nil {
			return fmt.Errorf("failed to decode choice list: %w", err)
		}
		*a = ChoiceAnswer(choices)
		return nil
	default:
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("answer must be a string, null or a choice list: %w", err)
		}
		*a = TextAnswer(s)
		return nil
	}
}

func (a Answer) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if a.IsList() {
		return bson.MarshalValue(a.Choices)
	}
	if a.Text == nil {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(*a.Text)
}

func (a *Answer) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*a = NullAnswer()
	case bsontype.String:
		*a = TextAnswer(raw.StringValue())
	case bsontype.Array:
		var choices []Choice
		if err := raw.Unmarshal(&choices); err != nil {
			return fmt.Errorf("failed to decode choice list: %w", err)
		}
		*a = ChoiceAnswer(choices)
	default:
		return fmt.Errorf("unsupported answer bson type %s", t)
	}
	return nil
}

// AnswerEntry is one question's normalized answer inside a respondent record
type AnswerEntry struct {
	Question *string `json:"question" bson:"question"`
	Answer   Answer  `json:"answer" bson:"answer"`
	Comments *string `json:"comments,omitempty" bson:"comments,omitempty"` // never the empty string
	Type     *string `json:"type,omitempty" bson:"type,omitempty"`
}
