package domain

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Args is a key/value map that preserves insertion order. Task arguments are
// rendered in the order the translation rule set them, both in JSON responses
// and in generated role YAML.
type Args struct {
	keys   []string
	values map[string]any
}

// NewArgs builds an Args from alternating key/value pairs.
func NewArgs(pairs ...any) *Args {
	a := &Args{values: map[string]any{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		a.Set(key, pairs[i+1])
	}
	return a
}

// Set stores a value, keeping the position of an already-present key.
func (a *Args) Set(key string, value any) {
	if a.values == nil {
		a.values = map[string]any{}
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value for key.
func (a *Args) Get(key string) (any, bool) {
	if a == nil || a.values == nil {
		return nil, false
	}
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (a *Args) Keys() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of stored keys.
func (a *Args) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// MarshalJSON renders the map with keys in insertion order.
func (a *Args) MarshalJSON() ([]byte, error) {
	if a == nil || len(a.keys) == 0 {
		return []byte("{}"), nil
	}
	buf := []byte{'{'}
	for i, key := range a.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(a.values[key])
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON accepts a plain JSON object. Key order of the incoming
// document is not recoverable from encoding/json, so keys are appended in
// decode order of the map; callers that need a stable order should Set keys
// explicitly.
func (a *Args) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.keys = a.keys[:0]
	a.values = map[string]any{}
	for k, v := range raw {
		a.Set(k, v)
	}
	return nil
}

// MarshalYAML renders an ordered mapping node for role generation.
func (a *Args) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	if a == nil {
		return node, nil
	}
	for _, key := range a.keys {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(key); err != nil {
			return nil, err
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(a.values[key]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}
