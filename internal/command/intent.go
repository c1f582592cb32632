// Package command parses the controlled natural-language edit grammar into
// typed intents. Parsing never fails: text that matches no verb pattern
// becomes an Unknown intent and is rejected downstream, so the parser
// itself stays total and trivially fuzzable.
package command

import "github.com/flowscribe/flowscribe/internal/model"

// Intent is a sealed interface over the parsed command forms. Only the
// types in this file implement it; a type switch over intents is
// exhaustive by construction.
type Intent interface {
	intent() // Sealed - only these types implement it

	// Kind returns the stable wire tag for this intent form.
	Kind() string
}

// Replace swaps the template of an existing unit. Source and Dest carry
// canonical template names when the ontology recognized the surface form,
// otherwise the raw text.
type Replace struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

func (Replace) intent()      {}
func (Replace) Kind() string { return "replace" }

// Add inserts a new unit. At most one of After, Before, or At is set.
// After and Before name an existing unit id to splice around; At is an
// uninterpreted position hint.
type Add struct {
	Unit   string `json:"unit"`
	After  string `json:"after,omitempty"`
	Before string `json:"before,omitempty"`
	At     string `json:"at,omitempty"`
}

func (Add) intent()      {}
func (Add) Kind() string { return "add" }

// Remove deletes a unit and every stream touching it.
type Remove struct {
	Target string `json:"target"`
}

func (Remove) intent()      {}
func (Remove) Kind() string { return "remove" }

// Connect adds a stream link between two unit ids.
type Connect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (Connect) intent()      {}
func (Connect) Kind() string { return "connect" }

// Disconnect removes the last stream link matching from→to.
type Disconnect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (Disconnect) intent()      {}
func (Disconnect) Kind() string { return "disconnect" }

// Duplicate copies an existing unit under a new id.
type Duplicate struct {
	Target string `json:"target"`
	NewID  string `json:"new_id"`
}

func (Duplicate) intent()      {}
func (Duplicate) Kind() string { return "duplicate" }

// Set writes parameter overrides. Params keys are canonical parameter
// names in command order. An empty Scope targets the first unit.
type Set struct {
	Params model.ScalarMap `json:"params"`
	Scope  string          `json:"scope,omitempty"`
}

func (Set) intent()      {}
func (Set) Kind() string { return "set" }

// Run requests a simulation pass. It compiles to no edits; the execution
// layer owns its meaning. Mode is "deterministic" or "sobol"; N is the
// sample count, zero when unspecified.
type Run struct {
	Mode string `json:"mode"`
	N    int    `json:"n"`
}

func (Run) intent()      {}
func (Run) Kind() string { return "run" }

// Unknown carries text that matched no verb pattern.
type Unknown struct {
	Raw string `json:"raw"`
}

func (Unknown) intent()      {}
func (Unknown) Kind() string { return "unknown" }
