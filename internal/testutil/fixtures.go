package testutil

import (
	"fmt"

	"github.com/flowscribe/flowscribe/internal/model"
)

// Chain builds a linear flowsheet: one unit per id, in order, with a
// stream from each unit to the next.
//
// Every unit gets the placeholder template Stage_v1, so chain fixtures are
// referenced by id. Tests where template identity matters should build the
// scenario from a literal with MustScenario instead.
func Chain(ids ...string) *model.Scenario {
	sc := &model.Scenario{
		Name:    "chain",
		Version: "1.0.0",
		Units:   []model.Unit{},
		Streams: []model.Stream{},
	}
	for i, id := range ids {
		sc.Units = append(sc.Units, model.Unit{Template: "Stage_v1", ID: id})
		if i > 0 {
			sc.Streams = append(sc.Streams, model.Stream{From: ids[i-1], To: id})
		}
	}
	return sc
}

// Override is one parameter assignment for WithOverrides.
type Override struct {
	Key   string
	Value model.Value
}

// WithOverrides sets parameter overrides on the unit with the given id and
// returns the same scenario for chaining. Overrides apply in argument
// order, so the resulting key order is deterministic.
//
// Panics if no unit has the id. Fixtures are built from literals in the
// test source, so a miss is a broken test, not a condition to assert on.
func WithOverrides(sc *model.Scenario, id string, overrides ...Override) *model.Scenario {
	idx := sc.UnitIndex(id)
	if idx < 0 {
		panic(fmt.Sprintf("testutil: no unit %q in scenario %q", id, sc.Name))
	}
	for _, o := range overrides {
		sc.Units[idx].Overrides.Set(o.Key, o.Value)
	}
	return sc
}

// MustScenario decodes and validates a scenario document, panicking on any
// error. For constant fixtures only.
func MustScenario(src string) *model.Scenario {
	sc, err := model.Decode([]byte(src))
	if err != nil {
		panic(fmt.Sprintf("testutil: bad scenario fixture: %v", err))
	}
	return sc
}
