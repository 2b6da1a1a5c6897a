package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clbanning/mxj/v2"

	"surveyhub/internal/model"
)

// ErrMalformedPayload is returned when a feed lacks its top-level container
var ErrMalformedPayload = errors.New("malformed source payload")

// DecodeFirst decodes the Source 1 envelope {"data": [...]}.
// Each survey_data object becomes a model.OrderedMap so question order survives.
func DecodeFirst(body []byte) ([]map[string]any, error) {
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("%w: missing data array", ErrMalformedPayload)
	}

	list := make([]any, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		item, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if entry, ok := item.(map[string]any); ok {
			if err := orderSurveyData(entry, raw); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
			}
		}
		list = append(list, item)
	}
	return entries(list), nil
}

func orderSurveyData(entry map[string]any, raw json.RawMessage) error {
	values, ok := entry["survey_data"].(map[string]any)
	if !ok {
		return nil
	}
	var fields struct {
		SurveyData json.RawMessage `json:"survey_data"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	keys, err := objectKeys(fields.SurveyData)
	if err != nil {
		return err
	}
	entry["survey_data"] = model.OrderedMap{Keys: keys, Values: values}
	return nil
}

// objectKeys lists the keys of a JSON object in document order, once each
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeSecond decodes the Source 2 envelope {"data": [...]}.
// Answer strings that embed JSON are left for the normalizer.
func DecodeSecond(body []byte) ([]map[string]any, error) {
	return decodeJSONData(body)
}

func decodeJSONData(body []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var envelope struct {
		Data []any `json:"data"`
	}
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("%w: missing data array", ErrMalformedPayload)
	}
	return entries(envelope.Data), nil
}

// DecodeThird decodes the Source 3 XML document
// <survey_answer><data><item>...</item></data></survey_answer>.
// Repeated elements become lists, a lone element stays a single value,
// and empty elements become null.
func DecodeThird(body []byte) ([]map[string]any, error) {
	doc, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var items any = map[string]any(doc)
	for _, key := range []string{"survey_answer", "data", "item"} {
		m, ok := items.(map[string]any)
		if !ok {
			items = nil
			break
		}
		items = m[key]
	}
	if items == nil {
		return nil, fmt.Errorf("%w: missing survey_answer.data.item", ErrMalformedPayload)
	}

	var list []any
	switch v := items.(type) {
	case []any:
		list = v
	default:
		list = []any{v}
	}
	for i := range list {
		list[i] = nullEmpty(list[i])
	}
	return entries(list), nil
}

// nullEmpty turns empty XML elements into nil, the way they read in JSON feeds
func nullEmpty(v any) any {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return val
	case map[string]any:
		for k, child := range val {
			val[k] = nullEmpty(child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = nullEmpty(child)
		}
		return val
	default:
		return v
	}
}

// entries keeps the elements that are objects; anything else cannot carry a respondent
func entries(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
