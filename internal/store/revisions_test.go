package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/flowscribe/flowscribe/internal/patch"
)

func testOps() []patch.Op {
	return []patch.Op{
		{Op: patch.OpReplace, Path: "/units/0/template", Value: json.RawMessage(`"CEX_Column_v1"`)},
	}
}

func TestAppendRevision_BumpsSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sc := testScenario(t)
	token := NewBatchToken()

	for want := int64(1); want <= 3; want++ {
		seq, err := s.AppendRevision(ctx, "mab_dsp", token, "set flux=50 on mf1", "set", testOps(), sc)
		if err != nil {
			t.Fatalf("AppendRevision() %d failed: %v", want, err)
		}
		if seq != want {
			t.Errorf("seq = %d, expected %d", seq, want)
		}
	}

	seq, err := s.ScenarioSeq(ctx, "mab_dsp")
	if err != nil {
		t.Fatalf("ScenarioSeq() failed: %v", err)
	}
	if seq != 3 {
		t.Errorf("scenario seq = %d, expected 3", seq)
	}
}

func TestAppendRevision_CreatesScenarioRow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Appending to a never-saved name stores the body alongside the
	// revision.
	seq, err := s.AppendRevision(ctx, "fresh", NewBatchToken(), "remove mf1", "remove", testOps(), testScenario(t))
	if err != nil {
		t.Fatalf("AppendRevision() failed: %v", err)
	}
	if seq != 1 {
		t.Errorf("seq = %d, expected 1", seq)
	}

	got, err := s.GetScenario(ctx, "fresh")
	if err != nil {
		t.Fatalf("GetScenario() failed: %v", err)
	}
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal loaded scenario: %v", err)
	}
	if string(data) != storedScenarioJSON {
		t.Errorf("stored body differs from applied result")
	}
}

func TestRevisions_OrderedWithOps(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sc := testScenario(t)

	commands := []string{"remove mf1", "add sterile filter", "run"}
	kinds := []string{"remove", "add", "run"}
	for i := range commands {
		ops := testOps()
		if kinds[i] == "run" {
			ops = []patch.Op{}
		}
		if _, err := s.AppendRevision(ctx, "mab_dsp", NewBatchToken(), commands[i], kinds[i], ops, sc); err != nil {
			t.Fatalf("AppendRevision(%q) failed: %v", commands[i], err)
		}
	}

	revs, err := s.Revisions(ctx, "mab_dsp")
	if err != nil {
		t.Fatalf("Revisions() failed: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("expected 3 revisions, got %d", len(revs))
	}

	for i, rev := range revs {
		if rev.Seq != int64(i+1) {
			t.Errorf("revision %d: seq = %d, expected %d", i, rev.Seq, i+1)
		}
		if rev.Command != commands[i] {
			t.Errorf("revision %d: command = %q, expected %q", i, rev.Command, commands[i])
		}
		if rev.IntentKind != kinds[i] {
			t.Errorf("revision %d: kind = %q, expected %q", i, rev.IntentKind, kinds[i])
		}
	}

	if len(revs[0].Ops) != 1 {
		t.Fatalf("revision 0: expected 1 op, got %d", len(revs[0].Ops))
	}
	if revs[0].Ops[0].Path != "/units/0/template" {
		t.Errorf("revision 0: op path = %q", revs[0].Ops[0].Path)
	}
	if string(revs[0].Ops[0].Value) != `"CEX_Column_v1"` {
		t.Errorf("revision 0: op value = %s", revs[0].Ops[0].Value)
	}
	if len(revs[2].Ops) != 0 {
		t.Errorf("revision 2: expected no ops, got %d", len(revs[2].Ops))
	}
}

func TestRevisionsByBatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sc := testScenario(t)

	batch := NewBatchToken()
	other := NewBatchToken()

	if _, err := s.AppendRevision(ctx, "mab_dsp", batch, "remove mf1", "remove", testOps(), sc); err != nil {
		t.Fatalf("AppendRevision() failed: %v", err)
	}
	if _, err := s.AppendRevision(ctx, "mab_dsp", batch, "add sterile filter", "add", testOps(), sc); err != nil {
		t.Fatalf("AppendRevision() failed: %v", err)
	}
	if _, err := s.AppendRevision(ctx, "mab_dsp", other, "run", "run", []patch.Op{}, sc); err != nil {
		t.Fatalf("AppendRevision() failed: %v", err)
	}

	revs, err := s.RevisionsByBatch(ctx, batch)
	if err != nil {
		t.Fatalf("RevisionsByBatch() failed: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions in batch, got %d", len(revs))
	}
	if revs[0].Command != "remove mf1" || revs[1].Command != "add sterile filter" {
		t.Errorf("batch order wrong: [%s %s]", revs[0].Command, revs[1].Command)
	}

	revs, err = s.RevisionsByBatch(ctx, "no-such-token")
	if err != nil {
		t.Fatalf("RevisionsByBatch() failed: %v", err)
	}
	if revs == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(revs) != 0 {
		t.Errorf("expected no revisions, got %d", len(revs))
	}
}

func TestRevisions_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	revs, err := s.Revisions(context.Background(), "never-saved")
	if err != nil {
		t.Fatalf("Revisions() failed: %v", err)
	}
	if revs == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestNewBatchToken_Distinct(t *testing.T) {
	a := NewBatchToken()
	b := NewBatchToken()
	if a == b {
		t.Error("expected distinct tokens")
	}
	if len(a) != 36 {
		t.Errorf("token length = %d, expected 36", len(a))
	}
}
