// Package ontology maps free-form equipment and parameter names onto the
// canonical vocabulary used by scenario documents. Lookup tables are built
// once from declarative definitions and are immutable afterwards.
package ontology

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ParamDef declares one canonical parameter key and the surface forms that
// resolve to it.
type ParamDef struct {
	Key      string
	Synonyms []string
}

// UnitDef declares one canonical unit template, its synonyms, and the
// parameters it accepts.
type UnitDef struct {
	Template string
	Synonyms []string
	Params   []ParamDef
}

// Ontology resolves surface forms to canonical names. Unit lookups are
// case-insensitive; parameter lookups are case-sensitive so that surface
// forms like "pH" keep their meaning. Both sides are trimmed and NFC
// normalized before comparison.
type Ontology struct {
	templates []string
	units     map[string]string // normalized synonym -> canonical template
	params    map[string]string // normalized synonym -> canonical key
}

// Collision records one synonym claimed by two different canonical names.
type Collision struct {
	Kind     string // "unit" or "parameter"
	Surface  string // normalized surface form
	Existing string
	New      string
}

// CollisionError reports every synonym collision found while building an
// ontology. A build with collisions produces no usable ontology: silently
// preferring one mapping would misread commands.
type CollisionError struct {
	Collisions []Collision
}

func (e *CollisionError) Error() string {
	if len(e.Collisions) == 1 {
		c := e.Collisions[0]
		return fmt.Sprintf("ontology: %s synonym %q maps to both %q and %q", c.Kind, c.Surface, c.Existing, c.New)
	}
	parts := make([]string, len(e.Collisions))
	for i, c := range e.Collisions {
		parts[i] = fmt.Sprintf("%s %q -> %q and %q", c.Kind, c.Surface, c.Existing, c.New)
	}
	return fmt.Sprintf("ontology: %d synonym collisions: %s", len(e.Collisions), strings.Join(parts, "; "))
}

// New builds an ontology from unit definitions. Every template and
// parameter key registers as a synonym of itself, so canonical names
// always resolve. Duplicate synonyms pointing at the same canonical name
// are merged; synonyms pointing at different names fail with a
// *CollisionError listing all conflicts.
func New(defs []UnitDef) (*Ontology, error) {
	o := &Ontology{
		units:  make(map[string]string),
		params: make(map[string]string),
	}
	seen := make(map[string]bool, len(defs))
	var collisions []Collision

	for _, def := range defs {
		template := strings.TrimSpace(def.Template)
		if template == "" {
			return nil, fmt.Errorf("ontology: unit definition with empty template")
		}
		if !seen[template] {
			seen[template] = true
			o.templates = append(o.templates, template)
		}

		register(o.units, "unit", normalizeUnitKey(template), template, &collisions)
		for _, syn := range def.Synonyms {
			register(o.units, "unit", normalizeUnitKey(syn), template, &collisions)
		}

		for _, p := range def.Params {
			key := strings.TrimSpace(p.Key)
			if key == "" {
				return nil, fmt.Errorf("ontology: unit %q has a parameter with an empty key", template)
			}
			register(o.params, "parameter", normalizeParamKey(key), key, &collisions)
			for _, syn := range p.Synonyms {
				register(o.params, "parameter", normalizeParamKey(syn), key, &collisions)
			}
		}
	}

	if len(collisions) > 0 {
		return nil, &CollisionError{Collisions: collisions}
	}
	return o, nil
}

func register(table map[string]string, kind, surface, canonical string, collisions *[]Collision) {
	if surface == "" {
		return
	}
	if existing, ok := table[surface]; ok {
		if existing != canonical {
			*collisions = append(*collisions, Collision{Kind: kind, Surface: surface, Existing: existing, New: canonical})
		}
		return
	}
	table[surface] = canonical
}

// normalizeUnitKey lowercases unit surface forms; equipment names are
// matched without case.
func normalizeUnitKey(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}

// normalizeParamKey keeps case; "pH" and "ph" are distinct surface forms
// that definitions list separately when both should match.
func normalizeParamKey(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ResolveUnit maps a surface form to its canonical template name. Unknown
// text is returned unchanged so callers can fall back to id resolution.
func (o *Ontology) ResolveUnit(text string) string {
	if t, ok := o.units[normalizeUnitKey(text)]; ok {
		return t
	}
	return text
}

// ResolveParam maps a surface form to its canonical parameter key.
// Unknown text is returned unchanged.
func (o *Ontology) ResolveParam(text string) string {
	if k, ok := o.params[normalizeParamKey(text)]; ok {
		return k
	}
	return text
}

// Templates returns the canonical template names in definition order.
func (o *Ontology) Templates() []string {
	out := make([]string, len(o.templates))
	copy(out, o.templates)
	return out
}

// UnitSynonyms returns the normalized unit synonym table.
func (o *Ontology) UnitSynonyms() map[string]string {
	out := make(map[string]string, len(o.units))
	for k, v := range o.units {
		out[k] = v
	}
	return out
}

// ParamSynonyms returns the normalized parameter synonym table.
func (o *Ontology) ParamSynonyms() map[string]string {
	out := make(map[string]string, len(o.params))
	for k, v := range o.params {
		out[k] = v
	}
	return out
}
