package editor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowscribe/flowscribe/internal/model"
	"github.com/flowscribe/flowscribe/internal/patch"
	"github.com/flowscribe/flowscribe/internal/testutil"
)

const pipelineJSON = `{"name":"mab_dsp","version":"1.0.0","units":[{"template":"Fermenter_Fedbatch_v2","id":"prod1","overrides":{}},{"template":"MF_Membrane_v1","id":"mf1","overrides":{}},{"template":"AEX_Membrane_v1","id":"dsp04","overrides":{"target_pH":7.2}},{"template":"CEX_Column_v1","id":"polish1","overrides":{}}],"streams":[{"from":"prod1","to":"mf1"},{"from":"mf1","to":"dsp04"},{"from":"dsp04","to":"polish1"}],"assumptions":{},"uncertainty":{}}`

func pipeline(t *testing.T) *model.Scenario {
	t.Helper()
	return testutil.MustScenario(pipelineJSON)
}

func TestPreviewCompilesWithoutApplying(t *testing.T) {
	ed := New(nil)
	sc := pipeline(t)

	res, err := ed.Preview("remove dsp04", sc)
	require.NoError(t, err)
	assert.Equal(t, "remove", res.Intent.Kind)
	assert.Len(t, res.Ops, 3)

	// The snapshot is untouched.
	assert.Len(t, sc.Units, 4)
	assert.Len(t, sc.Streams, 3)
}

func TestPreviewUnknownCommand(t *testing.T) {
	ed := New(nil)
	sc := pipeline(t)

	_, err := ed.Preview("make it faster", sc)
	require.Error(t, err)
	assert.True(t, patch.IsUnrecognizedCommand(err))
}

func TestParseNeedsNoScenario(t *testing.T) {
	ed := New(nil)

	env, err := ed.Parse("duplicate dsp04 as dsp05")
	require.NoError(t, err)
	assert.Equal(t, "duplicate", env.Kind)

	_, err = ed.Parse("make it faster")
	require.Error(t, err)
	assert.True(t, patch.IsUnrecognizedCommand(err))
}

func TestApplyResolvesSynonyms(t *testing.T) {
	ed := New(nil)
	sc := pipeline(t)

	res, err := ed.Apply("replace aex membrane with chitosan capture", sc)
	require.NoError(t, err)
	assert.Equal(t, "replace", res.Intent.Kind)

	idx, ok := res.Scenario.ResolveRef("dsp04")
	require.True(t, ok)
	assert.Equal(t, "ChitosanCapture_v1", res.Scenario.Units[idx].Template)

	// Replacement changes only the type identity.
	assert.Equal(t, "dsp04", res.Scenario.Units[idx].ID)
	ph, ok := res.Scenario.Units[idx].Overrides.Get("target_pH")
	require.True(t, ok)
	assert.Equal(t, model.Number(7.2), ph)
}

func TestApplySetCanonicalizesKeys(t *testing.T) {
	ed := New(nil)
	sc := pipeline(t)

	res, err := ed.Apply("set pH=4.4, recycle=0.5 on dsp04", sc)
	require.NoError(t, err)

	u := res.Scenario.Units[res.Scenario.UnitIndex("dsp04")]
	assert.Equal(t, []string{"target_pH", "recycle_fraction"}, u.Overrides.Keys())
	ph, _ := u.Overrides.Get("target_pH")
	assert.Equal(t, model.Number(4.4), ph)
}

func TestApplyReportsReference(t *testing.T) {
	ed := New(nil)
	sc := pipeline(t)

	_, err := ed.Apply("remove dsd04", sc)
	require.Error(t, err)
	assert.True(t, patch.IsReferenceError(err))
	assert.Contains(t, err.Error(), "dsd04")
}

func TestBatchThreadsSnapshot(t *testing.T) {
	ed := New(nil)
	sc := pipeline(t)
	before, err := json.Marshal(sc)
	require.NoError(t, err)

	// The second command targets the unit the first one creates.
	res, err := ed.Batch([]string{
		"add chitosan capture after mf1",
		"set pH=4.4 on chitosancapture",
	}, sc)
	require.NoError(t, err)
	assert.Len(t, res.Ops, 5)

	out := res.Scenario
	require.Len(t, out.Units, 5)
	assert.True(t, out.HasStream("mf1", "chitosancapture"))
	assert.True(t, out.HasStream("chitosancapture", "dsp04"))
	assert.False(t, out.HasStream("mf1", "dsp04"))

	u := out.Units[out.UnitIndex("chitosancapture")]
	ph, ok := u.Overrides.Get("target_pH")
	require.True(t, ok)
	assert.Equal(t, model.Number(4.4), ph)

	after, err := json.Marshal(sc)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestBatchRejectsWholeBatchOnFailure(t *testing.T) {
	ed := New(nil)
	sc := pipeline(t)

	res, err := ed.Batch([]string{
		"remove polish1",
		"remove ghost_unit",
		"remove mf1",
	}, sc)
	require.Error(t, err)
	assert.Nil(t, res)

	var step *BatchStepError
	require.True(t, errors.As(err, &step))
	assert.Equal(t, 1, step.Step)
	assert.Equal(t, "remove ghost_unit", step.Command)
	assert.True(t, patch.IsReferenceError(err))

	// Nothing from the successful prefix leaked into the snapshot.
	assert.Len(t, sc.Units, 4)
}

func TestBatchEmptyReturnsCopy(t *testing.T) {
	ed := New(nil)
	sc := pipeline(t)

	res, err := ed.Batch(nil, sc)
	require.NoError(t, err)
	assert.Empty(t, res.Ops)
	assert.NotNil(t, res.Ops)

	got, err := json.Marshal(res.Scenario)
	require.NoError(t, err)
	assert.Equal(t, pipelineJSON, string(got))

	res.Scenario.Units[0].Overrides.Set("titer_g_per_L", model.Number(9))
	assert.False(t, sc.Units[0].Overrides.Has("titer_g_per_L"))
}

func TestBatchRunProducesNoOps(t *testing.T) {
	ed := New(nil)
	sc := pipeline(t)

	res, err := ed.Batch([]string{"run sobol n=64"}, sc)
	require.NoError(t, err)
	assert.Empty(t, res.Ops)

	got, err := json.Marshal(res.Scenario)
	require.NoError(t, err)
	assert.Equal(t, pipelineJSON, string(got))
}

func TestHelpSurface(t *testing.T) {
	h := New(nil).Help()

	assert.Contains(t, h.Templates, "Fermenter_Fedbatch_v2")
	assert.Contains(t, h.Templates, "SterileFilter_v1")
	assert.Equal(t, "AEX_Membrane_v1", h.UnitSynonyms["aex membrane"])
	assert.Equal(t, "target_pH", h.ParamSynonyms["pH"])
	assert.Equal(t, "recycle_fraction", h.ParamSynonyms["recycle"])

	require.Len(t, h.Grammar, 8)
	assert.Equal(t, "replace <unit> with <unit>", h.Grammar[0])
}

func TestIntentEnvelopeJSON(t *testing.T) {
	ed := New(nil)
	sc := pipeline(t)

	res, err := ed.Preview("duplicate dsp04 as dsp05", sc)
	require.NoError(t, err)

	data, err := json.Marshal(res.Intent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"duplicate","args":{"target":"dsp04","new_id":"dsp05"}}`, string(data))
}
