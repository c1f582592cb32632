package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipelineScript(t *testing.T, commands []Command, assertions []Assertion) *Script {
	t.Helper()
	return &Script{
		Name:        "test",
		Description: "test script",
		Scenario:    writePipeline(t, t.TempDir()),
		Commands:    commands,
		Assertions:  assertions,
	}
}

func TestRunReplaceAndSet(t *testing.T) {
	script := pipelineScript(t,
		[]Command{
			{Run: "replace aex membrane with chitosan capture"},
			{Run: "set pH=4.4, recycle=0.5 on dsp04"},
		},
		[]Assertion{
			{Type: AssertUnitCount, Count: 4},
			{Type: AssertUnitTemplate, Unit: "dsp04", Template: "ChitosanCapture_v1"},
			{Type: AssertOverride, Unit: "dsp04", Key: "target_pH", Value: 4.4},
			{Type: AssertOverride, Unit: "dsp04", Key: "recycle_fraction", Value: 0.5},
			{Type: AssertStreamExists, From: "mf1", To: "dsp04"},
		},
	)

	result, err := Run(script)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Ops, 3)
	require.NotNil(t, result.Final)
}

func TestRunRemoveCascadesLinks(t *testing.T) {
	script := pipelineScript(t,
		[]Command{{Run: "remove dsp04"}},
		[]Assertion{
			{Type: AssertUnitCount, Count: 3},
			{Type: AssertStreamCount, Count: 1},
			{Type: AssertStreamAbsent, From: "mf1", To: "dsp04"},
			{Type: AssertStreamAbsent, From: "dsp04", To: "polish1"},
			{Type: AssertStreamExists, From: "prod1", To: "mf1"},
		},
	)

	result, err := Run(script)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunAddAfterPreservesFanOut(t *testing.T) {
	fanout := `{"name":"fanout","version":"1","units":[{"template":"CentrifugeDiscStack_v1","id":"a","overrides":{}},{"template":"DepthFilter_v1","id":"x","overrides":{}},{"template":"DepthFilter_v1","id":"y","overrides":{}}],"streams":[{"from":"a","to":"x"},{"from":"a","to":"y"}],"assumptions":{},"uncertainty":{}}`
	path := filepath.Join(t.TempDir(), "fanout.json")
	writeFile(t, path, fanout)

	script := &Script{
		Name:        "fanout",
		Description: "insertion keeps every downstream branch",
		Scenario:    path,
		Commands:    []Command{{Run: "add sterile filter after a"}},
		Assertions: []Assertion{
			{Type: AssertUnitCount, Count: 4},
			{Type: AssertStreamExists, From: "a", To: "sterilefilter"},
			{Type: AssertStreamExists, From: "sterilefilter", To: "x"},
			{Type: AssertStreamExists, From: "sterilefilter", To: "y"},
			{Type: AssertStreamAbsent, From: "a", To: "x"},
			{Type: AssertStreamAbsent, From: "a", To: "y"},
		},
	}

	result, err := Run(script)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunDisconnectIsDeterministic(t *testing.T) {
	script := pipelineScript(t,
		[]Command{
			{Run: "disconnect mf1 -> dsp04"},
			// Re-disconnecting an absent link is a no-op.
			{Run: "disconnect mf1 -> dsp04"},
		},
		[]Assertion{
			{Type: AssertStreamAbsent, From: "mf1", To: "dsp04"},
			{Type: AssertStreamCount, Count: 2},
		},
	)

	result, err := Run(script)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Ops, 1)
}

func TestRunDuplicateIsIndependent(t *testing.T) {
	script := pipelineScript(t,
		[]Command{
			{Run: "duplicate dsp04 as dsp05"},
			{Run: "set pH=4.4 on dsp05"},
		},
		[]Assertion{
			{Type: AssertUnitCount, Count: 5},
			{Type: AssertOverride, Unit: "dsp04", Key: "target_pH", Value: 7.2},
			{Type: AssertOverride, Unit: "dsp05", Key: "target_pH", Value: 4.4},
		},
	)

	result, err := Run(script)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunExpectedErrorDoesNotAdvance(t *testing.T) {
	script := pipelineScript(t,
		[]Command{
			{Run: "remove ghost", ExpectError: "REFERENCE_ERROR"},
			{Run: "make it faster", ExpectError: "UNRECOGNIZED_COMMAND"},
		},
		[]Assertion{
			{Type: AssertUnitCount, Count: 4},
			{Type: AssertStreamCount, Count: 3},
		},
	)

	result, err := Run(script)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Ops)
}

func TestRunAbortsOnUnexpectedFailure(t *testing.T) {
	script := pipelineScript(t,
		[]Command{
			{Run: "remove ghost"},
			{Run: "remove mf1"},
		},
		[]Assertion{
			{Type: AssertUnitCount, Count: 3},
		},
	)

	result, err := Run(script)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "commands[0]")
	assert.Contains(t, result.Errors[0], "unit not found: ghost")
	assert.Nil(t, result.Final)
}

func TestRunAbortsWhenExpectedErrorMissing(t *testing.T) {
	script := pipelineScript(t,
		[]Command{
			{Run: "remove mf1", ExpectError: "REFERENCE_ERROR"},
		},
		[]Assertion{
			{Type: AssertUnitCount, Count: 4},
		},
	)

	result, err := Run(script)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected REFERENCE_ERROR, command succeeded")
}

func TestRunAbortsOnWrongErrorKind(t *testing.T) {
	script := pipelineScript(t,
		[]Command{
			{Run: "make it faster", ExpectError: "REFERENCE_ERROR"},
		},
		[]Assertion{
			{Type: AssertUnitCount, Count: 4},
		},
	)

	result, err := Run(script)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected REFERENCE_ERROR, got")
}

func TestRunReportsAssertionFailures(t *testing.T) {
	script := pipelineScript(t,
		[]Command{{Run: "remove dsp04"}},
		[]Assertion{
			{Type: AssertUnitCount, Count: 4},
			{Type: AssertUnitTemplate, Unit: "dsp04", Template: "AEX_Membrane_v1"},
		},
	)

	result, err := Run(script)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "expected: 4 units")
	assert.Contains(t, result.Errors[0], "actual: 3 units")
	assert.Contains(t, result.Errors[1], "unit not found")
}

func TestRunScenarioFileMissing(t *testing.T) {
	script := &Script{
		Name:        "missing",
		Description: "missing scenario file",
		Scenario:    "/nonexistent/scenario.json",
		Commands:    []Command{{Run: "run"}},
	}

	_, err := Run(script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario")
}
