package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ScalarMap is a mapping from canonical parameter names to scalar values.
// Key order is first-insertion order and is significant on the wire:
// overwriting an existing key keeps its original position. The zero value
// is an empty map ready for use; it encodes as {}.
//
// Like a plain Go map, assigning a ScalarMap aliases the underlying
// storage. Use Clone where an independent copy is required.
type ScalarMap struct {
	keys   []string
	values map[string]Value
}

// Set inserts or overwrites a key. New keys append to the iteration order;
// existing keys keep their position.
func (m *ScalarMap) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value for key and whether it is present.
func (m ScalarMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m ScalarMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes a key. Remaining keys keep their relative order.
func (m *ScalarMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (m ScalarMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in iteration order. The slice is a copy.
func (m ScalarMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Clone returns an independent copy. Values are immutable scalars, so only
// the key order and the map storage need copying.
func (m ScalarMap) Clone() ScalarMap {
	out := ScalarMap{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]Value, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// MarshalJSON encodes the map as a JSON object in iteration order.
// An empty map encodes as {}.
func (m ScalarMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := EncodeValue(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, recording keys in document order.
// Non-scalar values are rejected.
func (m *ScalarMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("scalar map must be a JSON object, got %v", tok)
	}

	out := ScalarMap{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("scalar map key must be a string, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("scalar map key %q: %w", key, err)
		}
		val, err := DecodeValue(raw)
		if err != nil {
			return fmt.Errorf("scalar map key %q: %w", key, err)
		}
		out.Set(key, val)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// SpecMap is a mapping from parameter names to opaque JSON values, used for
// uncertainty specifications. The values are carried verbatim (compacted)
// and never interpreted; a sampling layer downstream owns their meaning.
// Key order is first-insertion order, same as ScalarMap.
type SpecMap struct {
	keys   []string
	values map[string]json.RawMessage
}

// Set inserts or overwrites a key with a raw JSON value.
func (m *SpecMap) Set(key string, raw json.RawMessage) {
	if m.values == nil {
		m.values = make(map[string]json.RawMessage)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = raw
}

// Get returns the raw JSON for key and whether it is present.
func (m SpecMap) Get(key string) (json.RawMessage, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys.
func (m SpecMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in iteration order. The slice is a copy.
func (m SpecMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Clone returns an independent copy, including the raw value bytes.
func (m SpecMap) Clone() SpecMap {
	out := SpecMap{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]json.RawMessage, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// MarshalJSON encodes the map as a JSON object in iteration order, writing
// the stored raw values verbatim.
func (m SpecMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		buf.Write(m.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, recording keys in document order and
// compacting each value so re-encoding is byte-stable.
func (m *SpecMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("spec map must be a JSON object, got %v", tok)
	}

	out := SpecMap{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("spec map key must be a string, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("spec map key %q: %w", key, err)
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return fmt.Errorf("spec map key %q: %w", key, err)
		}
		out.Set(key, append(json.RawMessage(nil), compact.Bytes()...))
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}
