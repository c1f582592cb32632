package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Unit is one unit operation in the flowsheet.
type Unit struct {
	Template  string    `json:"template"`
	ID        string    `json:"id"`
	Overrides ScalarMap `json:"overrides"`
}

// Stream is a directed link between two unit ids. Endpoints are not
// required to resolve to units in the same document; dangling links are
// tolerated and surfaced via DanglingStreams.
type Stream struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Scenario is the root document: a named flowsheet with its unit list,
// stream links, global assumptions, and opaque uncertainty specs.
//
// Units and Streams are ordered lists. Duplicate stream links are legal at
// the model level; connect-style edits deduplicate at compile time instead.
type Scenario struct {
	Name          string    `json:"name"`
	Version       string    `json:"version"`
	ThermoPackage string    `json:"thermo_package,omitempty"`
	Units         []Unit    `json:"units"`
	Streams       []Stream  `json:"streams"`
	Assumptions   ScalarMap `json:"assumptions"`
	Uncertainty   SpecMap   `json:"uncertainty"`
}

// MarshalJSON writes the wire form with a fixed field order and [] / {}
// for empty collections, never null.
func (s Scenario) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(name string, v any) error {
		keyBytes, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		buf.Write(valBytes)
		return nil
	}

	if err := writeField("name", s.Name); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeField("version", s.Version); err != nil {
		return nil, err
	}
	if s.ThermoPackage != "" {
		buf.WriteByte(',')
		if err := writeField("thermo_package", s.ThermoPackage); err != nil {
			return nil, err
		}
	}

	buf.WriteString(`,"units":`)
	if len(s.Units) == 0 {
		buf.WriteString("[]")
	} else {
		b, err := json.Marshal(s.Units)
		if err != nil {
			return nil, fmt.Errorf("marshal units: %w", err)
		}
		buf.Write(b)
	}

	buf.WriteString(`,"streams":`)
	if len(s.Streams) == 0 {
		buf.WriteString("[]")
	} else {
		b, err := json.Marshal(s.Streams)
		if err != nil {
			return nil, fmt.Errorf("marshal streams: %w", err)
		}
		buf.Write(b)
	}

	buf.WriteByte(',')
	if err := writeField("assumptions", s.Assumptions); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeField("uncertainty", s.Uncertainty); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the wire form, normalizing absent collections to
// empty ones so a decoded scenario always re-encodes with [] and {}.
func (s *Scenario) UnmarshalJSON(data []byte) error {
	type alias Scenario
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Scenario(a)
	if s.Units == nil {
		s.Units = []Unit{}
	}
	if s.Streams == nil {
		s.Streams = []Stream{}
	}
	return nil
}

// Decode parses and validates a scenario document.
func Decode(data []byte) (*Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks document well-formedness: every unit has a non-empty id
// and template, and ids are unique. Stream endpoints are deliberately not
// checked; dangling links are a tolerated intermediate state.
func (s *Scenario) Validate() error {
	seen := make(map[string]int, len(s.Units))
	for i, u := range s.Units {
		if u.ID == "" {
			return fmt.Errorf("unit %d: empty id", i)
		}
		if u.Template == "" {
			return fmt.Errorf("unit %q: empty template", u.ID)
		}
		if j, dup := seen[u.ID]; dup {
			return fmt.Errorf("duplicate unit id %q (units %d and %d)", u.ID, j, i)
		}
		seen[u.ID] = i
	}
	return nil
}

// UnitIndex returns the index of the unit with the exact id, or -1.
func (s *Scenario) UnitIndex(id string) int {
	for i, u := range s.Units {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// ResolveRef resolves a free-form unit reference. Exact id matches win;
// otherwise the first unit whose template equals ref case-insensitively is
// taken. Reports false when neither step matches.
func (s *Scenario) ResolveRef(ref string) (int, bool) {
	if i := s.UnitIndex(ref); i >= 0 {
		return i, true
	}
	for i, u := range s.Units {
		if strings.EqualFold(u.Template, ref) {
			return i, true
		}
	}
	return 0, false
}

// StreamsFrom returns the indices of streams originating at id, ascending.
func (s *Scenario) StreamsFrom(id string) []int {
	var out []int
	for i, st := range s.Streams {
		if st.From == id {
			out = append(out, i)
		}
	}
	return out
}

// StreamsTo returns the indices of streams terminating at id, ascending.
func (s *Scenario) StreamsTo(id string) []int {
	var out []int
	for i, st := range s.Streams {
		if st.To == id {
			out = append(out, i)
		}
	}
	return out
}

// StreamsTouching returns the indices of streams with id at either
// endpoint, ascending.
func (s *Scenario) StreamsTouching(id string) []int {
	var out []int
	for i, st := range s.Streams {
		if st.From == id || st.To == id {
			out = append(out, i)
		}
	}
	return out
}

// HasStream reports whether an identical from→to link already exists.
func (s *Scenario) HasStream(from, to string) bool {
	return s.LastStreamIndex(from, to) >= 0
}

// LastStreamIndex returns the index of the last stream matching from→to,
// or -1. Duplicate links are legal, so "last match" is the defined pick.
func (s *Scenario) LastStreamIndex(from, to string) int {
	for i := len(s.Streams) - 1; i >= 0; i-- {
		if s.Streams[i].From == from && s.Streams[i].To == to {
			return i
		}
	}
	return -1
}

// DanglingStreams returns the streams with at least one endpoint that does
// not name a unit in the document.
func (s *Scenario) DanglingStreams() []Stream {
	ids := make(map[string]struct{}, len(s.Units))
	for _, u := range s.Units {
		ids[u.ID] = struct{}{}
	}
	var out []Stream
	for _, st := range s.Streams {
		if _, ok := ids[st.From]; !ok {
			out = append(out, st)
			continue
		}
		if _, ok := ids[st.To]; !ok {
			out = append(out, st)
		}
	}
	return out
}

// Clone returns a deep copy sharing no mutable state with the original.
func (s *Scenario) Clone() *Scenario {
	out := &Scenario{
		Name:          s.Name,
		Version:       s.Version,
		ThermoPackage: s.ThermoPackage,
		Units:         make([]Unit, len(s.Units)),
		Streams:       make([]Stream, len(s.Streams)),
		Assumptions:   s.Assumptions.Clone(),
		Uncertainty:   s.Uncertainty.Clone(),
	}
	for i, u := range s.Units {
		out.Units[i] = Unit{
			Template:  u.Template,
			ID:        u.ID,
			Overrides: u.Overrides.Clone(),
		}
	}
	copy(out.Streams, s.Streams)
	return out
}
