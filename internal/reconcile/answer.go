package reconcile

import (
	"encoding/json"
	"strings"

	"surveyhub/internal/model"
)

// wrapperKey is the single key of the XML list wrapper ({"item": [...]})
const wrapperKey = "item"

// EncodingKind tags which shape an answer arrived in
type EncodingKind int

const (
	// EncodingScalar is a decoded string or null
	EncodingScalar EncodingKind = iota
	// EncodingList is a decoded list of bare scalars or structured choices
	EncodingList
	// EncodingRaw is a string that carried no structured encoding
	EncodingRaw
)

// Encoding is an answer after the per-source decoding step and before normalization
type Encoding struct {
	Kind  EncodingKind
	Text  *string
	Items []any
	Raw   string
}

func Scalar(s *string) Encoding {
	return Encoding{Kind: EncodingScalar, Text: s}
}

func List(items []any) Encoding {
	if items == nil {
		items = []any{}
	}
	return Encoding{Kind: EncodingList, Items: items}
}

func RawString(s string) Encoding {
	return Encoding{Kind: EncodingRaw, Raw: s}
}

// DecodeValue classifies a value that is already decoded (JSON or XML).
// An {"item": ...} wrapper is unwrapped to its list; a lone wrapped element
// becomes a one-element list.
func DecodeValue(v any) Encoding {
	switch val := v.(type) {
	case nil:
		return Scalar(nil)
	case []any:
		return List(val)
	case []model.Choice:
		items := make([]any, len(val))
		for i, c := range val {
			items[i] = c
		}
		return List(items)
	case model.Answer:
		if val.IsList() {
			return DecodeValue(val.Choices)
		}
		return Scalar(val.Text)
	case map[string]any:
		if inner, ok := val[wrapperKey]; ok {
			return List(asList(inner))
		}
		if isChoice(val) {
			return List([]any{val})
		}
		return Scalar(stringValue(val))
	default:
		return Scalar(stringValue(val))
	}
}

// DecodeEmbedded decodes a Source 2 value that may be a string carrying a JSON
// encoding. Anything that is not a complete JSON list or scalar stays a raw string.
func DecodeEmbedded(v any) Encoding {
	s, ok := v.(string)
	if !ok {
		return DecodeValue(v)
	}

	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return RawString(s)
	}
	if dec.More() {
		return RawString(s)
	}
	if _, isObject := decoded.(map[string]any); isObject {
		return RawString(s)
	}
	return DecodeValue(decoded)
}

// NormalizeAnswer is the single rule turning any decoded encoding into a canonical answer
func NormalizeAnswer(e Encoding) model.Answer {
	switch e.Kind {
	case EncodingList:
		choices := make([]model.Choice, 0, len(e.Items))
		for _, item := range e.Items {
			choices = append(choices, toChoice(item))
		}
		return model.ChoiceAnswer(choices)
	case EncodingRaw:
		if e.Raw == "" {
			return model.NullAnswer()
		}
		return model.TextAnswer(e.Raw)
	default:
		return model.Answer{Text: e.Text}
	}
}

func toChoice(item any) model.Choice {
	switch v := item.(type) {
	case model.Choice:
		return v
	case map[string]any:
		if isChoice(v) {
			return model.Choice{
				ID:     fieldString(v, "id"),
				Option: fieldString(v, "option"),
				Rank:   fieldString(v, "rank"),
			}
		}
	}

	option := ""
	if s := stringValue(item); s != nil {
		option = *s
	}
	return model.Choice{Option: option}
}

// isChoice reports whether an object carries any structured choice field.
// Other objects are kept whole as their JSON text.
func isChoice(m map[string]any) bool {
	for _, key := range []string{"id", "option", "rank"} {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

func fieldString(m map[string]any, key string) string {
	if s := stringValue(m[key]); s != nil {
		return *s
	}
	return ""
}
