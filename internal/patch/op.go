// Package patch compiles parsed intents into JSON-Patch edit lists and
// replays them against scenario documents. Compilation is pure: ops are
// computed against a snapshot and applied elsewhere, so a preview is
// exactly the list a later apply will run.
package patch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Op kinds. The compiler emits only these three.
const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpReplace = "replace"
)

// Op is a single edit in JSON-Patch form (RFC 6902 add/remove/replace
// subset). Paths use / separators with ~0 and ~1 escaping; the terminal
// "-" appends to an array. Value is raw JSON so that false and 0 survive
// encoding, and is empty for remove ops.
type Op struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// EscapeToken escapes one path segment: ~ becomes ~0, / becomes ~1.
func EscapeToken(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// UnescapeToken reverses EscapeToken. ~1 is decoded before ~0 so that the
// sequence ~01 round-trips to a literal "~1".
func UnescapeToken(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

const (
	unitsAppendPath   = "/units/-"
	streamsAppendPath = "/streams/-"
)

func unitPath(i int) string {
	return fmt.Sprintf("/units/%d", i)
}

func unitTemplatePath(i int) string {
	return fmt.Sprintf("/units/%d/template", i)
}

func overridePath(i int, key string) string {
	return fmt.Sprintf("/units/%d/overrides/%s", i, EscapeToken(key))
}

func streamPath(i int) string {
	return fmt.Sprintf("/streams/%d", i)
}

// valueOp builds an op carrying a marshaled value.
func valueOp(kind, path string, v any) (Op, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Op{}, fmt.Errorf("marshal value for %s: %w", path, err)
	}
	return Op{Op: kind, Path: path, Value: raw}, nil
}

// removeOp builds a remove op. Remove carries no value.
func removeOp(path string) Op {
	return Op{Op: OpRemove, Path: path}
}

// splitPath splits an op path into unescaped segments.
func splitPath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path must start with /: %q", path)
	}
	parts := strings.Split(path[1:], "/")
	for i := range parts {
		parts[i] = UnescapeToken(parts[i])
	}
	return parts, nil
}
