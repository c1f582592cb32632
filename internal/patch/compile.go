package patch

import (
	"fmt"
	"strings"

	"github.com/flowscribe/flowscribe/internal/command"
	"github.com/flowscribe/flowscribe/internal/model"
)

// Compile translates one intent into the ordered edit list that realizes
// it against sc. The scenario is read, never written; op indices refer to
// its current state, and removals within a group are emitted in descending
// index order so earlier ops never shift the paths of later ones.
func Compile(sc *model.Scenario, in command.Intent) ([]Op, error) {
	switch it := in.(type) {
	case command.Replace:
		return compileReplace(sc, it)
	case command.Add:
		return compileAdd(sc, it)
	case command.Remove:
		return compileRemove(sc, it)
	case command.Connect:
		return compileConnect(sc, it)
	case command.Disconnect:
		return compileDisconnect(sc, it)
	case command.Duplicate:
		return compileDuplicate(sc, it)
	case command.Set:
		return compileSet(sc, it)
	case command.Run:
		// Run is a signal for the execution layer, not an edit.
		return []Op{}, nil
	case command.Unknown:
		return nil, NewUnrecognizedCommandError(it.Raw)
	default:
		return nil, fmt.Errorf("unhandled intent type %T", in)
	}
}

func compileReplace(sc *model.Scenario, in command.Replace) ([]Op, error) {
	idx, ok := sc.ResolveRef(in.Source)
	if !ok {
		return nil, NewReferenceError(in.Source, "unit not found: "+in.Source)
	}
	op, err := valueOp(OpReplace, unitTemplatePath(idx), in.Dest)
	if err != nil {
		return nil, err
	}
	return []Op{op}, nil
}

func compileAdd(sc *model.Scenario, in command.Add) ([]Op, error) {
	newID := allocateID(sc, in.Unit)
	unitOp, err := valueOp(OpAdd, unitsAppendPath, model.Unit{Template: in.Unit, ID: newID})
	if err != nil {
		return nil, err
	}
	ops := []Op{unitOp}

	// The new unit appends at the tail; rewiring only touches stream
	// indices, which removals shift. Walking each edge group in
	// descending stream order keeps every emitted index valid.
	switch {
	case in.After != "":
		if sc.UnitIndex(in.After) < 0 {
			return nil, NewReferenceError(in.After, "unit not found: "+in.After)
		}
		outgoing := sc.StreamsFrom(in.After)
		for i := len(outgoing) - 1; i >= 0; i-- {
			si := outgoing[i]
			target := sc.Streams[si].To
			ops, err = appendRewire(ops, si,
				model.Stream{From: in.After, To: newID},
				model.Stream{From: newID, To: target})
			if err != nil {
				return nil, err
			}
		}
	case in.Before != "":
		if sc.UnitIndex(in.Before) < 0 {
			return nil, NewReferenceError(in.Before, "unit not found: "+in.Before)
		}
		incoming := sc.StreamsTo(in.Before)
		for i := len(incoming) - 1; i >= 0; i-- {
			si := incoming[i]
			source := sc.Streams[si].From
			ops, err = appendRewire(ops, si,
				model.Stream{From: source, To: newID},
				model.Stream{From: newID, To: in.Before})
			if err != nil {
				return nil, err
			}
		}
	}
	// An "at" hint places no wiring; the unit is added unconnected.

	return ops, nil
}

// appendRewire emits the remove-and-replace trio for one spliced edge.
func appendRewire(ops []Op, streamIndex int, first, second model.Stream) ([]Op, error) {
	ops = append(ops, removeOp(streamPath(streamIndex)))
	firstOp, err := valueOp(OpAdd, streamsAppendPath, first)
	if err != nil {
		return nil, err
	}
	secondOp, err := valueOp(OpAdd, streamsAppendPath, second)
	if err != nil {
		return nil, err
	}
	return append(ops, firstOp, secondOp), nil
}

func compileRemove(sc *model.Scenario, in command.Remove) ([]Op, error) {
	idx, ok := sc.ResolveRef(in.Target)
	if !ok {
		return nil, NewReferenceError(in.Target, "unit not found: "+in.Target)
	}
	id := sc.Units[idx].ID

	ops := []Op{}
	touching := sc.StreamsTouching(id)
	for i := len(touching) - 1; i >= 0; i-- {
		ops = append(ops, removeOp(streamPath(touching[i])))
	}
	return append(ops, removeOp(unitPath(idx))), nil
}

func compileConnect(sc *model.Scenario, in command.Connect) ([]Op, error) {
	// Connecting an existing link is a no-op, not a conflict. Endpoints
	// are not checked: links may reference units added later in a batch.
	if sc.HasStream(in.From, in.To) {
		return []Op{}, nil
	}
	op, err := valueOp(OpAdd, streamsAppendPath, model.Stream{From: in.From, To: in.To})
	if err != nil {
		return nil, err
	}
	return []Op{op}, nil
}

func compileDisconnect(sc *model.Scenario, in command.Disconnect) ([]Op, error) {
	idx := sc.LastStreamIndex(in.From, in.To)
	if idx < 0 {
		return []Op{}, nil
	}
	return []Op{removeOp(streamPath(idx))}, nil
}

func compileDuplicate(sc *model.Scenario, in command.Duplicate) ([]Op, error) {
	idx, ok := sc.ResolveRef(in.Target)
	if !ok {
		return nil, NewReferenceError(in.Target, "unit not found: "+in.Target)
	}
	src := sc.Units[idx]

	// Overrides are deep-copied; id collisions surface as validation
	// failures when the ops are applied.
	clone := model.Unit{
		Template:  src.Template,
		ID:        in.NewID,
		Overrides: src.Overrides.Clone(),
	}
	op, err := valueOp(OpAdd, unitsAppendPath, clone)
	if err != nil {
		return nil, err
	}
	return []Op{op}, nil
}

func compileSet(sc *model.Scenario, in command.Set) ([]Op, error) {
	idx := 0
	if in.Scope != "" {
		i, ok := sc.ResolveRef(in.Scope)
		if !ok {
			return nil, NewReferenceError(in.Scope, "unit not found: "+in.Scope)
		}
		idx = i
	} else if len(sc.Units) == 0 {
		return []Op{}, nil
	}

	ops := []Op{}
	for _, key := range in.Params.Keys() {
		v, _ := in.Params.Get(key)
		// Add both inserts new keys and overwrites existing ones.
		op, err := valueOp(OpAdd, overridePath(idx, key), v)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// allocateID derives a unique unit id from a template name: the leading
// underscore-delimited token, lowercased, with _2, _3, ... suffixes until
// free.
func allocateID(sc *model.Scenario, template string) string {
	base := strings.ToLower(strings.SplitN(template, "_", 2)[0])
	if base == "" {
		base = "unit"
	}

	used := make(map[string]bool, len(sc.Units))
	for _, u := range sc.Units {
		used[u.ID] = true
	}

	if !used[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if !used[candidate] {
			return candidate
		}
	}
}
