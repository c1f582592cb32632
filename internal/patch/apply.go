package patch

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/flowscribe/flowscribe/internal/model"
)

// Apply replays ops onto a copy of sc, then re-encodes and revalidates the
// result. The input scenario is never mutated: on failure the caller's
// document is untouched and the error names the failing path or the
// validation problem.
func Apply(sc *model.Scenario, ops []Op) (*model.Scenario, error) {
	next := sc.Clone()
	for i := range ops {
		if err := applyOp(next, ops[i]); err != nil {
			return nil, err
		}
	}

	// Round-trip through the wire form so the result is exactly what a
	// reader of the stored document would see, then validate it.
	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode patched scenario: %w", err)
	}
	var out model.Scenario
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, NewInvalidScenarioError(err)
	}
	if err := out.Validate(); err != nil {
		return nil, NewInvalidScenarioError(err)
	}
	return &out, nil
}

func applyOp(sc *model.Scenario, op Op) error {
	segs, err := splitPath(op.Path)
	if err != nil {
		return NewPatchConflictError(op.Path, err.Error())
	}
	switch segs[0] {
	case "units":
		return applyUnitsOp(sc, op, segs[1:])
	case "streams":
		return applyStreamsOp(sc, op, segs[1:])
	default:
		return NewPatchConflictError(op.Path, "unsupported path")
	}
}

func applyUnitsOp(sc *model.Scenario, op Op, rest []string) error {
	if len(rest) == 0 {
		return NewPatchConflictError(op.Path, "unsupported path")
	}

	if rest[0] == "-" {
		if len(rest) != 1 || op.Op != OpAdd {
			return NewPatchConflictError(op.Path, "append path only accepts add")
		}
		var u model.Unit
		if err := json.Unmarshal(op.Value, &u); err != nil {
			return NewPatchConflictError(op.Path, "invalid unit value: "+err.Error())
		}
		sc.Units = append(sc.Units, u)
		return nil
	}

	idx, err := strconv.Atoi(rest[0])
	if err != nil || idx < 0 {
		return NewPatchConflictError(op.Path, "invalid unit index")
	}

	if len(rest) == 1 {
		switch op.Op {
		case OpAdd:
			if idx > len(sc.Units) {
				return NewPatchConflictError(op.Path, "path not found")
			}
			var u model.Unit
			if err := json.Unmarshal(op.Value, &u); err != nil {
				return NewPatchConflictError(op.Path, "invalid unit value: "+err.Error())
			}
			sc.Units = append(sc.Units, model.Unit{})
			copy(sc.Units[idx+1:], sc.Units[idx:])
			sc.Units[idx] = u
			return nil
		case OpRemove:
			if idx >= len(sc.Units) {
				return NewPatchConflictError(op.Path, "path not found")
			}
			sc.Units = append(sc.Units[:idx], sc.Units[idx+1:]...)
			return nil
		case OpReplace:
			if idx >= len(sc.Units) {
				return NewPatchConflictError(op.Path, "path not found")
			}
			var u model.Unit
			if err := json.Unmarshal(op.Value, &u); err != nil {
				return NewPatchConflictError(op.Path, "invalid unit value: "+err.Error())
			}
			sc.Units[idx] = u
			return nil
		default:
			return NewPatchConflictError(op.Path, fmt.Sprintf("unsupported op %q", op.Op))
		}
	}

	if idx >= len(sc.Units) {
		return NewPatchConflictError(op.Path, "path not found")
	}
	unit := &sc.Units[idx]

	switch rest[1] {
	case "template", "id":
		if len(rest) != 2 {
			return NewPatchConflictError(op.Path, "unsupported path")
		}
		if op.Op != OpAdd && op.Op != OpReplace {
			return NewPatchConflictError(op.Path, "field only accepts add or replace")
		}
		var s string
		if err := json.Unmarshal(op.Value, &s); err != nil {
			return NewPatchConflictError(op.Path, "invalid string value: "+err.Error())
		}
		if rest[1] == "template" {
			unit.Template = s
		} else {
			unit.ID = s
		}
		return nil

	case "overrides":
		if len(rest) == 2 {
			if op.Op != OpAdd && op.Op != OpReplace {
				return NewPatchConflictError(op.Path, "field only accepts add or replace")
			}
			var m model.ScalarMap
			if err := json.Unmarshal(op.Value, &m); err != nil {
				return NewPatchConflictError(op.Path, "invalid overrides value: "+err.Error())
			}
			unit.Overrides = m
			return nil
		}
		if len(rest) != 3 {
			return NewPatchConflictError(op.Path, "unsupported path")
		}
		key := rest[2]
		switch op.Op {
		case OpAdd:
			v, err := model.DecodeValue(op.Value)
			if err != nil {
				return NewPatchConflictError(op.Path, "invalid scalar value: "+err.Error())
			}
			unit.Overrides.Set(key, v)
			return nil
		case OpReplace:
			if !unit.Overrides.Has(key) {
				return NewPatchConflictError(op.Path, "path not found")
			}
			v, err := model.DecodeValue(op.Value)
			if err != nil {
				return NewPatchConflictError(op.Path, "invalid scalar value: "+err.Error())
			}
			unit.Overrides.Set(key, v)
			return nil
		case OpRemove:
			if !unit.Overrides.Has(key) {
				return NewPatchConflictError(op.Path, "path not found")
			}
			unit.Overrides.Delete(key)
			return nil
		default:
			return NewPatchConflictError(op.Path, fmt.Sprintf("unsupported op %q", op.Op))
		}

	default:
		return NewPatchConflictError(op.Path, "unsupported path")
	}
}

func applyStreamsOp(sc *model.Scenario, op Op, rest []string) error {
	if len(rest) == 0 {
		return NewPatchConflictError(op.Path, "unsupported path")
	}

	if rest[0] == "-" {
		if len(rest) != 1 || op.Op != OpAdd {
			return NewPatchConflictError(op.Path, "append path only accepts add")
		}
		var st model.Stream
		if err := json.Unmarshal(op.Value, &st); err != nil {
			return NewPatchConflictError(op.Path, "invalid stream value: "+err.Error())
		}
		sc.Streams = append(sc.Streams, st)
		return nil
	}

	idx, err := strconv.Atoi(rest[0])
	if err != nil || idx < 0 {
		return NewPatchConflictError(op.Path, "invalid stream index")
	}

	if len(rest) == 1 {
		switch op.Op {
		case OpAdd:
			if idx > len(sc.Streams) {
				return NewPatchConflictError(op.Path, "path not found")
			}
			var st model.Stream
			if err := json.Unmarshal(op.Value, &st); err != nil {
				return NewPatchConflictError(op.Path, "invalid stream value: "+err.Error())
			}
			sc.Streams = append(sc.Streams, model.Stream{})
			copy(sc.Streams[idx+1:], sc.Streams[idx:])
			sc.Streams[idx] = st
			return nil
		case OpRemove:
			if idx >= len(sc.Streams) {
				return NewPatchConflictError(op.Path, "path not found")
			}
			sc.Streams = append(sc.Streams[:idx], sc.Streams[idx+1:]...)
			return nil
		case OpReplace:
			if idx >= len(sc.Streams) {
				return NewPatchConflictError(op.Path, "path not found")
			}
			var st model.Stream
			if err := json.Unmarshal(op.Value, &st); err != nil {
				return NewPatchConflictError(op.Path, "invalid stream value: "+err.Error())
			}
			sc.Streams[idx] = st
			return nil
		default:
			return NewPatchConflictError(op.Path, fmt.Sprintf("unsupported op %q", op.Op))
		}
	}

	if idx >= len(sc.Streams) || len(rest) != 2 {
		return NewPatchConflictError(op.Path, "path not found")
	}
	if op.Op != OpAdd && op.Op != OpReplace {
		return NewPatchConflictError(op.Path, "field only accepts add or replace")
	}
	var s string
	if err := json.Unmarshal(op.Value, &s); err != nil {
		return NewPatchConflictError(op.Path, "invalid string value: "+err.Error())
	}
	switch rest[1] {
	case "from":
		sc.Streams[idx].From = s
	case "to":
		sc.Streams[idx].To = s
	default:
		return NewPatchConflictError(op.Path, "unsupported path")
	}
	return nil
}
