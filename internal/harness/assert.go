package harness

import (
	"fmt"

	"github.com/flowscribe/flowscribe/internal/model"
)

// AssertionError is returned when an assertion fails. It carries the
// expected and actual outcomes in human-readable form.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s\n  expected: %s\n  actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against the final scenario
// and returns one message per failure. An empty slice means all held.
func EvaluateAssertions(sc *model.Scenario, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(sc, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(sc *model.Scenario, a Assertion) error {
	switch a.Type {
	case AssertUnitCount:
		if len(sc.Units) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d units", a.Count),
				Actual:   fmt.Sprintf("%d units", len(sc.Units)),
			}
		}
	case AssertStreamCount:
		if len(sc.Streams) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d streams", a.Count),
				Actual:   fmt.Sprintf("%d streams", len(sc.Streams)),
			}
		}
	case AssertUnitTemplate:
		idx := sc.UnitIndex(a.Unit)
		if idx < 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("unit %q present", a.Unit),
				Actual:   "unit not found",
			}
		}
		if got := sc.Units[idx].Template; got != a.Template {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("unit %q has template %q", a.Unit, a.Template),
				Actual:   fmt.Sprintf("template %q", got),
			}
		}
	case AssertOverride:
		idx := sc.UnitIndex(a.Unit)
		if idx < 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("unit %q present", a.Unit),
				Actual:   "unit not found",
			}
		}
		got, ok := sc.Units[idx].Overrides.Get(a.Key)
		if !ok {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("unit %q override %q = %v", a.Unit, a.Key, a.Value),
				Actual:   "key not set",
			}
		}
		if !scalarMatches(got, a.Value) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("unit %q override %q = %v", a.Unit, a.Key, a.Value),
				Actual:   fmt.Sprintf("%v", got),
			}
		}
	case AssertStreamExists:
		if !sc.HasStream(a.From, a.To) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("stream %s -> %s present", a.From, a.To),
				Actual:   "not found",
			}
		}
	case AssertStreamAbsent:
		if sc.HasStream(a.From, a.To) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("no stream %s -> %s", a.From, a.To),
				Actual:   "present",
			}
		}
	default:
		return &AssertionError{
			Type:     a.Type,
			Expected: "known assertion type",
			Actual:   fmt.Sprintf("unknown type %q", a.Type),
		}
	}
	return nil
}

// scalarMatches compares a scenario scalar with a YAML-typed expectation.
// YAML decodes numerals as int or float64; both compare against Number.
func scalarMatches(got model.Value, want any) bool {
	switch w := want.(type) {
	case bool:
		return got == model.Bool(w)
	case int:
		return got == model.Number(float64(w))
	case float64:
		return got == model.Number(w)
	case string:
		return got == model.String(w)
	default:
		return false
	}
}
