// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.yaml.in/yaml/v3"
)

// PropertyValue is either a plain string or a nested property mapping.
// Nested takes precedence when it is non-nil.
type PropertyValue struct {
	Text   string
	Nested *Properties
}

// IsNested reports whether the value holds a nested mapping.
func (v PropertyValue) IsNested() bool {
	return v.Nested != nil
}

// MarshalJSON encodes the value as a JSON string or object.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	if v.Nested != nil {
		return v.Nested.MarshalJSON()
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON decodes a JSON string or object.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		nested := NewProperties()
		if err := nested.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		*v = PropertyValue{Nested: nested}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*v = PropertyValue{Text: text}
	return nil
}

// MarshalYAML encodes the value as a YAML scalar or mapping.
func (v PropertyValue) MarshalYAML() (any, error) {
	if v.Nested != nil {
		return v.Nested.MarshalYAML()
	}
	return v.Text, nil
}

// Properties is an insertion-ordered mapping from block key to value, as
// written inline in passage text with {{key}}...{{/key}} blocks. Setting an
// existing key replaces its value and keeps its original position.
type Properties struct {
	pairs *orderedmap.OrderedMap[string, PropertyValue]
}

// NewProperties returns an empty mapping.
func NewProperties() *Properties {
	return &Properties{pairs: orderedmap.New[string, PropertyValue]()}
}

// Set stores a string value under key.
func (p *Properties) Set(key, value string) {
	p.pairs.Set(key, PropertyValue{Text: value})
}

// SetNested stores a nested mapping under key.
func (p *Properties) SetNested(key string, nested *Properties) {
	p.pairs.Set(key, PropertyValue{Nested: nested})
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (PropertyValue, bool) {
	if p == nil {
		return PropertyValue{}, false
	}
	return p.pairs.Get(key)
}

// Has reports whether key is present.
func (p *Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Len returns the number of keys.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return p.pairs.Len()
}

// Keys returns the keys in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, p.pairs.Len())
	for pair := p.pairs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// ToMap converts the mapping into plain maps, with nested mappings as
// map[string]any and leaf values as strings.
func (p *Properties) ToMap() map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, p.pairs.Len())
	for pair := p.pairs.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Nested != nil {
			out[pair.Key] = pair.Value.Nested.ToMap()
			continue
		}
		out[pair.Key] = pair.Value.Text
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	if p == nil || p.pairs == nil {
		return []byte("null"), nil
	}
	return p.pairs.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, keeping its key order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	pairs := orderedmap.New[string, PropertyValue]()
	if err := pairs.UnmarshalJSON(data); err != nil {
		return err
	}
	p.pairs = pairs
	return nil
}

// MarshalYAML encodes the mapping as a YAML mapping in insertion order.
func (p *Properties) MarshalYAML() (any, error) {
	if p == nil || p.pairs == nil {
		return nil, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for pair := p.pairs.Oldest(); pair != nil; pair = pair.Next() {
		var value yaml.Node
		if err := value.Encode(pair.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key},
			&value,
		)
	}
	return node, nil
}
