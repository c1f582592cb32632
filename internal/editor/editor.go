// Package editor wires the parser, compiler, and applier into the
// preview/apply/batch surface the CLI and HTTP server call. It owns no
// state beyond the ontology and performs no I/O.
package editor

import (
	"fmt"

	"github.com/flowscribe/flowscribe/internal/command"
	"github.com/flowscribe/flowscribe/internal/model"
	"github.com/flowscribe/flowscribe/internal/ontology"
	"github.com/flowscribe/flowscribe/internal/patch"
)

// Editor turns command text into scenario edits. The ontology is
// immutable after construction, so a single Editor is safe for
// unsynchronized concurrent use.
type Editor struct {
	onto *ontology.Ontology
}

// New creates an Editor over the given ontology. A nil ontology selects
// the built-in definitions.
func New(onto *ontology.Ontology) *Editor {
	if onto == nil {
		onto = ontology.Builtin()
	}
	return &Editor{onto: onto}
}

// Ontology returns the resolver this editor parses against.
func (e *Editor) Ontology() *ontology.Ontology { return e.onto }

// Parse resolves one command to its intent without compiling or applying
// anything. Text that matches no verb pattern is an error, same as in
// Preview and Apply.
func (e *Editor) Parse(text string) (*IntentEnvelope, error) {
	in := command.Parse(text, e.onto)
	if u, ok := in.(command.Unknown); ok {
		return nil, patch.NewUnrecognizedCommandError(u.Raw)
	}
	env := envelope(in)
	return &env, nil
}

// IntentEnvelope pairs a parsed intent with its wire tag so output
// consumers can dispatch without reflection.
type IntentEnvelope struct {
	Kind string         `json:"kind"`
	Args command.Intent `json:"args"`
}

func envelope(in command.Intent) IntentEnvelope {
	return IntentEnvelope{Kind: in.Kind(), Args: in}
}

// PreviewResult is the outcome of compiling one command without applying
// it. Ops is exactly the list a later Apply would run.
type PreviewResult struct {
	Intent IntentEnvelope `json:"intent"`
	Ops    []patch.Op     `json:"ops"`
}

// ApplyResult extends a preview with the patched scenario.
type ApplyResult struct {
	Intent   IntentEnvelope  `json:"intent"`
	Ops      []patch.Op      `json:"ops"`
	Scenario *model.Scenario `json:"scenario"`
}

// BatchResult is the combined outcome of a multi-command batch.
type BatchResult struct {
	Ops      []patch.Op      `json:"ops"`
	Scenario *model.Scenario `json:"scenario"`
}

// Preview parses text and compiles it against sc. Nothing is applied and
// sc is never mutated.
func (e *Editor) Preview(text string, sc *model.Scenario) (*PreviewResult, error) {
	in := command.Parse(text, e.onto)
	ops, err := patch.Compile(sc, in)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Intent: envelope(in), Ops: ops}, nil
}

// Apply parses, compiles, and applies one command, returning the patched
// scenario. sc is never mutated; on error no scenario is returned.
func (e *Editor) Apply(text string, sc *model.Scenario) (*ApplyResult, error) {
	in := command.Parse(text, e.onto)
	ops, err := patch.Compile(sc, in)
	if err != nil {
		return nil, err
	}
	next, err := patch.Apply(sc, ops)
	if err != nil {
		return nil, err
	}
	return &ApplyResult{Intent: envelope(in), Ops: ops, Scenario: next}, nil
}

// BatchStepError reports the first failing command of a batch.
type BatchStepError struct {
	Step    int // zero-based position in the batch
	Command string
	Err     error
}

func (e *BatchStepError) Error() string {
	return fmt.Sprintf("batch step %d (%q): %v", e.Step, e.Command, e.Err)
}

func (e *BatchStepError) Unwrap() error { return e.Err }

// Batch threads sc through each command in order, accumulating every
// emitted op. The first failing step rejects the whole batch: no partial
// op list and no partial scenario are returned.
func (e *Editor) Batch(texts []string, sc *model.Scenario) (*BatchResult, error) {
	cur := sc
	combined := []patch.Op{}
	for i, text := range texts {
		in := command.Parse(text, e.onto)
		ops, err := patch.Compile(cur, in)
		if err != nil {
			return nil, &BatchStepError{Step: i, Command: text, Err: err}
		}
		next, err := patch.Apply(cur, ops)
		if err != nil {
			return nil, &BatchStepError{Step: i, Command: text, Err: err}
		}
		combined = append(combined, ops...)
		cur = next
	}
	if cur == sc {
		// An empty batch still hands back an independent copy.
		cur = sc.Clone()
	}
	return &BatchResult{Ops: combined, Scenario: cur}, nil
}
