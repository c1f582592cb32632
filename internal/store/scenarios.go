package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flowscribe/flowscribe/internal/model"
)

// ScenarioInfo summarizes one stored scenario.
type ScenarioInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Seq     int64  `json:"seq"`
}

// SaveScenario stores or updates a scenario body under the given name.
// The body is the scenario's wire JSON; updated_seq is left untouched so
// that revision history keeps counting across re-imports.
func (s *Store) SaveScenario(ctx context.Context, name string, sc *model.Scenario) error {
	body, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("save scenario %q: encode: %w", name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenarios (name, version, body, updated_seq)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			body = excluded.body
	`, name, sc.Version, string(body))
	if err != nil {
		return fmt.Errorf("save scenario %q: %w", name, err)
	}

	return nil
}

// GetScenario loads the current body of a named scenario.
// Returns ErrNotFound if the name has never been saved.
func (s *Store) GetScenario(ctx context.Context, name string) (*model.Scenario, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM scenarios WHERE name = ?
	`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scenario %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get scenario %q: %w", name, err)
	}

	sc, err := model.Decode([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("get scenario %q: decode body: %w", name, err)
	}
	return sc, nil
}

// ScenarioSeq reports the logical clock of a named scenario.
// Returns ErrNotFound if the name has never been saved.
func (s *Store) ScenarioSeq(ctx context.Context, name string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT updated_seq FROM scenarios WHERE name = ?
	`, name).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("scenario %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("scenario seq %q: %w", name, err)
	}
	return seq, nil
}

// ListScenarios returns name, version, and seq for every stored scenario,
// ordered by name. Returns an empty slice, not nil, when the store is
// empty.
func (s *Store) ListScenarios(ctx context.Context) ([]ScenarioInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, version, updated_seq
		FROM scenarios
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var infos []ScenarioInfo
	for rows.Next() {
		var info ScenarioInfo
		if err := rows.Scan(&info.Name, &info.Version, &info.Seq); err != nil {
			return nil, fmt.Errorf("scan scenario row: %w", err)
		}
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}

	if infos == nil {
		infos = []ScenarioInfo{}
	}

	return infos, nil
}
