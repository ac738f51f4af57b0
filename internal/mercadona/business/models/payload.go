package models

import (
	"encoding/json"
	"strconv"
)

// Payload is a decoded storefront API response. The upstream schema is
// loose, so values are accessed through typed getters instead of fixed
// DTO structs; missing keys yield zero values.
type Payload map[string]interface{}

func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p Payload) IsEmpty() bool {
	return len(p) == 0
}

func (p Payload) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p[key]
	return ok
}

func (p Payload) String(key string) string {
	if p == nil {
		return ""
	}
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// Identifier reads an id field as a string. The storefront is
// inconsistent here: product ids arrive as strings, category and season
// ids as JSON numbers.
func (p Payload) Identifier(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// Float reads a numeric field. The storefront serializes most prices as
// strings ("1.25"), so both representations are accepted.
func (p Payload) Float(key string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	switch v := p[key].(type) {
	case float64:
		return v, true
	case string:
		var f float64
		if err := json.Unmarshal([]byte(v), &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

func (p Payload) Int(key string) (int, bool) {
	f, ok := p.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func (p Payload) Bool(key string) bool {
	if p == nil {
		return false
	}
	b, _ := p[key].(bool)
	return b
}

// Section returns a nested object, or nil when the key is absent or not
// an object.
func (p Payload) Section(key string) Payload {
	if p == nil {
		return nil
	}
	if m, ok := p[key].(map[string]interface{}); ok {
		return Payload(m)
	}
	return nil
}

// List returns a nested array of objects. Non-object elements are
// skipped rather than failing the whole read.
func (p Payload) List(key string) []Payload {
	if p == nil {
		return nil
	}
	raw, ok := p[key].([]interface{})
	if !ok {
		return nil
	}
	items := make([]Payload, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]interface{}); ok {
			items = append(items, Payload(m))
		}
	}
	return items
}
