package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Script defines one conformance script: a starting scenario, the
// commands to step through, and assertions over the final document.
type Script struct {
	// Name uniquely identifies this script. Golden files are stored
	// under this name.
	Name string `yaml:"name"`

	// Description explains what this script validates.
	Description string `yaml:"description"`

	// Scenario is the path to the starting scenario JSON, relative to
	// the script file location unless absolute.
	Scenario string `yaml:"scenario"`

	// Commands are stepped through the editor in order, threading the
	// scenario snapshot exactly like a batch.
	Commands []Command `yaml:"commands"`

	// Assertions validate the final scenario.
	Assertions []Assertion `yaml:"assertions"`
}

// Command is a single edit command step.
type Command struct {
	// Run is the command text handed to the editor.
	Run string `yaml:"run"`

	// ExpectError names the error kind this step must fail with
	// (e.g. "REFERENCE_ERROR"). The scenario does not advance on an
	// expected failure.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates one property of the final scenario.
type Assertion struct {
	// Type selects the assertion: unit_count, stream_count,
	// unit_template, override, stream_exists, stream_absent.
	Type string `yaml:"type"`

	// Count is the expected size (unit_count, stream_count).
	Count int `yaml:"count,omitempty"`

	// Unit is the unit id (unit_template, override).
	Unit string `yaml:"unit,omitempty"`

	// Template is the expected template name (unit_template).
	Template string `yaml:"template,omitempty"`

	// Key and Value are the override key and expected scalar
	// (override). Value follows YAML typing: bool, number, or string.
	Key   string `yaml:"key,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// From and To are stream endpoints (stream_exists, stream_absent).
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`
}

// Assertion type constants.
const (
	AssertUnitCount    = "unit_count"
	AssertStreamCount  = "stream_count"
	AssertUnitTemplate = "unit_template"
	AssertOverride     = "override"
	AssertStreamExists = "stream_exists"
	AssertStreamAbsent = "stream_absent"
)

// Load reads and parses a script YAML file. Returns an error if the file
// doesn't exist, is malformed, contains unknown fields (typos), or is
// missing required fields.
func Load(path string) (*Script, error) {
	return LoadWithBasePath(path, filepath.Dir(path))
}

// LoadWithBasePath reads and parses a script YAML file, resolving the
// scenario path relative to the provided base path.
func LoadWithBasePath(path, basePath string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" for
	// "assertions:".
	var script Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&script); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if !filepath.IsAbs(script.Scenario) && basePath != "" {
		script.Scenario = filepath.Join(basePath, script.Scenario)
	}

	if err := validateScript(&script); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	return &script, nil
}

// validateScript checks that required fields are present and valid.
func validateScript(s *Script) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Scenario == "" {
		return fmt.Errorf("scenario is required")
	}
	if _, err := os.Stat(s.Scenario); os.IsNotExist(err) {
		return fmt.Errorf("scenario file not found: %s", s.Scenario)
	}

	if len(s.Commands) == 0 {
		return fmt.Errorf("commands list is required and must be non-empty")
	}
	for i, cmd := range s.Commands {
		if cmd.Run == "" {
			return fmt.Errorf("commands[%d]: run is required", i)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertUnitCount, AssertStreamCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertUnitTemplate:
		if a.Unit == "" {
			return fmt.Errorf("assertions[%d]: unit is required for unit_template", index)
		}
		if a.Template == "" {
			return fmt.Errorf("assertions[%d]: template is required for unit_template", index)
		}
	case AssertOverride:
		if a.Unit == "" {
			return fmt.Errorf("assertions[%d]: unit is required for override", index)
		}
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for override", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for override", index)
		}
	case AssertStreamExists, AssertStreamAbsent:
		if a.From == "" || a.To == "" {
			return fmt.Errorf("assertions[%d]: from and to are required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
