package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/flowscribe/flowscribe/internal/model"
	"github.com/flowscribe/flowscribe/internal/ontology"
	"github.com/flowscribe/flowscribe/internal/patch"
)

// loadScenario reads and decodes a scenario JSON file.
func loadScenario(path string) (*model.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := model.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding scenario %s: %w", path, err)
	}
	return sc, nil
}

// writeScenario marshals a scenario to its wire form and writes it with a
// trailing newline.
func writeScenario(path string, sc *model.Scenario) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// loadOntology returns the built-in ontology unless a CUE directory is
// given.
func loadOntology(dir string) (*ontology.Ontology, error) {
	if dir == "" {
		return ontology.Builtin(), nil
	}
	return ontology.LoadDir(dir)
}

// readCommandLines parses a batch file: one command per line, blank lines
// and '#' comments skipped.
func readCommandLines(r io.Reader) ([]string, error) {
	var cmds []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmds = append(cmds, line)
	}
	return cmds, scanner.Err()
}

// writeOps prints a numbered op list in text form. Remove ops have no
// value; everything else shows its raw JSON value.
func writeOps(w io.Writer, ops []patch.Op) {
	if len(ops) == 0 {
		fmt.Fprintln(w, "no ops")
		return
	}
	for i, op := range ops {
		if op.Op == patch.OpRemove {
			fmt.Fprintf(w, "%d. %s %s\n", i+1, op.Op, op.Path)
			continue
		}
		fmt.Fprintf(w, "%d. %s %s = %s\n", i+1, op.Op, op.Path, string(op.Value))
	}
}
