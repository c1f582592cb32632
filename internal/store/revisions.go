package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/flowscribe/flowscribe/internal/model"
	"github.com/flowscribe/flowscribe/internal/patch"
)

// Revision is one applied command in a scenario's history.
type Revision struct {
	ID         int64      `json:"id"`
	Scenario   string     `json:"scenario"`
	Seq        int64      `json:"seq"`
	BatchToken string     `json:"batch_token"`
	Command    string     `json:"command"`
	IntentKind string     `json:"intent_kind"`
	Ops        []patch.Op `json:"ops"`
}

// NewBatchToken generates a time-sortable UUIDv7 token grouping the
// revisions of one batch.
//
// Panics if UUID generation fails (should never happen in practice).
func NewBatchToken() string {
	return uuid.Must(uuid.NewV7()).String()
}

// AppendRevision records one applied command and the scenario body it
// produced, in a single transaction: the revision row is inserted at the
// next seq and the scenario body and clock are updated together. On any
// failure neither write survives.
//
// Returns the seq assigned to the revision.
func (s *Store) AppendRevision(ctx context.Context, name, batchToken, cmd, intentKind string, ops []patch.Op, result *model.Scenario) (int64, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("append revision: encode scenario: %w", err)
	}
	opsJSON, err := json.Marshal(ops)
	if err != nil {
		return 0, fmt.Errorf("append revision: encode ops: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("append revision: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	err = tx.QueryRowContext(ctx, `
		SELECT updated_seq FROM scenarios WHERE name = ?
	`, name).Scan(&seq)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("append revision: read seq: %w", err)
	}
	next := seq + 1

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scenarios (name, version, body, updated_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			body = excluded.body,
			updated_seq = excluded.updated_seq
	`, name, result.Version, string(body), next)
	if err != nil {
		return 0, fmt.Errorf("append revision: upsert scenario: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO revisions (scenario, seq, batch_token, command, intent_kind, ops)
		VALUES (?, ?, ?, ?, ?, ?)
	`, name, next, batchToken, cmd, intentKind, string(opsJSON))
	if err != nil {
		return 0, fmt.Errorf("append revision: insert revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("append revision: commit: %w", err)
	}

	return next, nil
}

// Revisions returns the full history of a scenario ordered by seq.
// Returns an empty slice, not nil, when there is no history.
func (s *Store) Revisions(ctx context.Context, name string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, seq, batch_token, command, intent_kind, ops
		FROM revisions
		WHERE scenario = ?
		ORDER BY seq ASC, id ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	return scanRevisions(rows)
}

// RevisionsByBatch returns every revision sharing a batch token, in
// insertion order. Returns an empty slice, not nil, for an unknown token.
func (s *Store) RevisionsByBatch(ctx context.Context, token string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, seq, batch_token, command, intent_kind, ops
		FROM revisions
		WHERE batch_token = ?
		ORDER BY id ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query batch revisions: %w", err)
	}
	defer rows.Close()

	return scanRevisions(rows)
}

func scanRevisions(rows *sql.Rows) ([]Revision, error) {
	var revs []Revision
	for rows.Next() {
		var (
			rev     Revision
			opsJSON string
		)
		if err := rows.Scan(&rev.ID, &rev.Scenario, &rev.Seq, &rev.BatchToken, &rev.Command, &rev.IntentKind, &opsJSON); err != nil {
			return nil, fmt.Errorf("scan revision row: %w", err)
		}
		if err := json.Unmarshal([]byte(opsJSON), &rev.Ops); err != nil {
			return nil, fmt.Errorf("decode revision ops: %w", err)
		}
		revs = append(revs, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}

	if revs == nil {
		revs = []Revision{}
	}

	return revs, nil
}
