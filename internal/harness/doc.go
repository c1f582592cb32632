// Package harness provides conformance testing for the scenario editor.
//
// The harness loads a scenario document, steps a list of edit commands
// through the editor exactly the way a batch would, and validates the
// final scenario against declarative assertions.
//
// # Script Format
//
// Scripts are defined in YAML files with the following structure:
//
//	name: swap_polish
//	description: "Replace the AEX step and retune pH"
//	scenario: scenarios/mab_dsp.json
//	commands:
//	  - run: replace aex membrane with chitosan capture
//	  - run: set pH=4.4 on dsp04
//	  - run: remove ghost
//	    expect_error: REFERENCE_ERROR
//	assertions:
//	  - type: unit_template
//	    unit: dsp04
//	    template: ChitosanCapture_v1
//	  - type: override
//	    unit: dsp04
//	    key: target_pH
//	    value: 4.4
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - unit_count: the scenario has exactly count units
//   - stream_count: the scenario has exactly count streams
//   - unit_template: the unit with the given id has the given template
//   - override: the unit's override key holds the given scalar value
//   - stream_exists: a from→to link is present
//   - stream_absent: no from→to link is present
//
// # Failure Semantics
//
// Commands marked expect_error must fail with exactly the named error
// kind; the scenario does not advance on such steps. Any other step
// mismatch (an unexpected failure, a missing failure, a wrong kind)
// aborts the script, and assertions are not evaluated against the
// half-stepped document.
//
// Golden snapshots of {script, ops, final} support regression pinning via
// RunWithGolden; see golden.go.
package harness
