package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowscribe/flowscribe/internal/model"
	"github.com/flowscribe/flowscribe/internal/patch"
	"github.com/flowscribe/flowscribe/internal/store"
)

func newStoreServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "flow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := New(Config{
		Addr:   ":0",
		Store:  st,
		Logger: log.New(io.Discard),
	})
	return s, st
}

func TestPutThenGetScenario(t *testing.T) {
	s, _ := newStoreServer(t)

	rec := do(t, s, http.MethodPut, "/v1/scenarios/mab_dsp", serverScenarioJSON)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/scenarios/mab_dsp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, serverScenarioJSON, rec.Body.String())
}

func TestGetScenarioNotFound(t *testing.T) {
	s, _ := newStoreServer(t)

	rec := do(t, s, http.MethodGet, "/v1/scenarios/ghost", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	detail := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", detail.Kind)
	assert.Equal(t, "ghost", detail.Ref)
}

func TestPutScenarioRejectsInvalid(t *testing.T) {
	s, _ := newStoreServer(t)

	// Duplicate unit ids fail document validation.
	bad := `{"name":"x","version":"1","units":[{"template":"A_v1","id":"u1","overrides":{}},{"template":"B_v1","id":"u1","overrides":{}}],"streams":[],"assumptions":{},"uncertainty":{}}`
	rec := do(t, s, http.MethodPut, "/v1/scenarios/x", bad)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "duplicate unit id")
}

func TestListScenariosRoute(t *testing.T) {
	s, _ := newStoreServer(t)

	rec := do(t, s, http.MethodGet, "/v1/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	require.Equal(t, http.StatusNoContent, do(t, s, http.MethodPut, "/v1/scenarios/zeta", serverScenarioJSON).Code)
	require.Equal(t, http.StatusNoContent, do(t, s, http.MethodPut, "/v1/scenarios/alpha", serverScenarioJSON).Code)

	rec = do(t, s, http.MethodGet, "/v1/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []store.ScenarioInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "zeta", infos[1].Name)
}

func TestRevisionsRoute(t *testing.T) {
	s, st := newStoreServer(t)

	sc, err := model.Decode([]byte(serverScenarioJSON))
	require.NoError(t, err)

	ctx := context.Background()
	token := store.NewBatchToken()
	ops := []patch.Op{{Op: patch.OpReplace, Path: "/units/2/template", Value: json.RawMessage(`"ChitosanCapture_v1"`)}}
	_, err = st.AppendRevision(ctx, "mab_dsp", token, "replace aex membrane with chitosan capture", "replace", ops, sc)
	require.NoError(t, err)
	_, err = st.AppendRevision(ctx, "mab_dsp", token, "set pH=4.4 on dsp04", "set", ops, sc)
	require.NoError(t, err)

	rec := do(t, s, http.MethodGet, "/v1/scenarios/mab_dsp/revisions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var revs []store.Revision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &revs))
	require.Len(t, revs, 2)
	assert.Equal(t, int64(1), revs[0].Seq)
	assert.Equal(t, int64(2), revs[1].Seq)
	assert.Equal(t, token, revs[0].BatchToken)
}

func TestRevisionsRouteEmpty(t *testing.T) {
	s, _ := newStoreServer(t)

	rec := do(t, s, http.MethodGet, "/v1/scenarios/unknown/revisions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
