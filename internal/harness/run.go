package harness

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/flowscribe/flowscribe/internal/editor"
	"github.com/flowscribe/flowscribe/internal/model"
	"github.com/flowscribe/flowscribe/internal/patch"
)

// Result is the outcome of a script execution.
type Result struct {
	// Pass indicates overall success: every command stepped as
	// declared and every assertion held.
	Pass bool `json:"pass"`

	// Errors contains step and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Ops is the combined op list of every applied command, in step
	// order. Expected-failure steps contribute nothing.
	Ops []patch.Op `json:"ops"`

	// Final is the scenario after the last applied command. Nil when
	// stepping aborted.
	Final *model.Scenario `json:"final,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		Ops:    []patch.Op{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a script and returns the result.
//
// The starting scenario is loaded from the script's scenario path, then
// each command is stepped through the editor with the snapshot threaded
// forward, exactly like a batch. A step that does not behave as declared
// aborts the script; assertions run only over a fully stepped document.
func Run(script *Script) (*Result, error) {
	ed := editor.New(nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return run(script, ed, logger)
}

func run(script *Script, ed *editor.Editor, logger *slog.Logger) (*Result, error) {
	data, err := os.ReadFile(script.Scenario)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	cur, err := model.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}

	result := NewResult()

	for i, cmd := range script.Commands {
		logger.Debug("step", "index", i, "run", cmd.Run, "expect_error", cmd.ExpectError)

		res, err := ed.Apply(cmd.Run, cur)

		if cmd.ExpectError != "" {
			if err == nil {
				result.AddError(fmt.Sprintf("commands[%d] (%q): expected %s, command succeeded", i, cmd.Run, cmd.ExpectError))
				return result, nil
			}
			code, ok := patch.CodeOf(err)
			if !ok || string(code) != cmd.ExpectError {
				result.AddError(fmt.Sprintf("commands[%d] (%q): expected %s, got: %v", i, cmd.Run, cmd.ExpectError, err))
				return result, nil
			}
			// Expected failure: the snapshot does not advance.
			continue
		}

		if err != nil {
			result.AddError(fmt.Sprintf("commands[%d] (%q): %v", i, cmd.Run, err))
			return result, nil
		}

		result.Ops = append(result.Ops, res.Ops...)
		cur = res.Scenario
	}

	result.Final = cur

	errs := EvaluateAssertions(cur, script.Assertions)
	for _, msg := range errs {
		result.AddError(msg)
	}

	return result, nil
}
