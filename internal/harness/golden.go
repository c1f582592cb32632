package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/flowscribe/flowscribe/internal/model"
	"github.com/flowscribe/flowscribe/internal/patch"
)

// goldenSnapshot pins the combined op list and the final scenario of one
// script run. Both serialize deterministically, so snapshots are stable
// across runs.
type goldenSnapshot struct {
	Script string          `json:"script"`
	Ops    []patch.Op      `json:"ops"`
	Final  *model.Scenario `json:"final"`
}

// RunWithGolden executes a script and compares {script, ops, final}
// against a golden file stored at testdata/golden/{script.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the run itself fails; golden mismatch fails the
// test via goldie.
func RunWithGolden(t *testing.T, script *Script) error {
	t.Helper()

	result, err := Run(script)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("script %q failed: %v", script.Name, result.Errors)
	}

	data, err := json.Marshal(goldenSnapshot{
		Script: script.Name,
		Ops:    result.Ops,
		Final:  result.Final,
	})
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, script.Name, data)

	return nil
}
