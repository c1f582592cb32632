package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWithGoldenSwapPolish(t *testing.T) {
	script := &Script{
		Name:        "swap_polish",
		Description: "Replace the AEX step with chitosan capture and retune",
		Scenario:    writePipeline(t, t.TempDir()),
		Commands: []Command{
			{Run: "replace aex membrane with chitosan capture"},
			{Run: "set pH=4.4, recycle=0.5 on dsp04"},
			{Run: "remove ghost", ExpectError: "REFERENCE_ERROR"},
		},
		Assertions: []Assertion{
			{Type: AssertUnitTemplate, Unit: "dsp04", Template: "ChitosanCapture_v1"},
			{Type: AssertOverride, Unit: "dsp04", Key: "target_pH", Value: 4.4},
		},
	}

	require.NoError(t, RunWithGolden(t, script))
}
