package reconcile

import (
	"encoding/json"
	"sort"
	"strconv"

	"surveyhub/internal/model"
)

// xmlTextKey is where the XML decoder keeps character data of an element that also has attributes
const xmlTextKey = "#text"

// stringValue renders a decoded scalar as a string; nil stays nil.
// Numbers and booleans keep their JSON text so every field is string-or-null.
func stringValue(v any) *string {
	var s string
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		s = val
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case bool:
		s = strconv.FormatBool(val)
	case map[string]any:
		if text, ok := val[xmlTextKey]; ok {
			return stringValue(text)
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		s = string(b)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		s = string(b)
	}
	return &s
}

// nonEmpty drops empty strings so comments are either text or absent
func nonEmpty(v any) *string {
	s := stringValue(v)
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// asList accepts both a repeated element (list) and a lone element
func asList(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		return val
	default:
		return []any{val}
	}
}

// asMap returns v as a mapping, or nil
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// dig walks nested mappings by key
func dig(v any, keys ...string) any {
	for _, k := range keys {
		m := asMap(v)
		if m == nil {
			return nil
		}
		v = m[k]
	}
	return v
}

// orderedMap returns a mapping and its keys, in document order when the
// decoder kept it and sorted otherwise
func orderedMap(v any) ([]string, map[string]any) {
	switch m := v.(type) {
	case model.OrderedMap:
		return m.Keys, m.Values
	case *model.OrderedMap:
		if m != nil {
			return m.Keys, m.Values
		}
	case map[string]any:
		return sortedKeys(m), m
	}
	return nil, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
