package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one compile scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden
	// file when the scenario runs under golden comparison.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Module is the path to the CUE module to compile. Relative paths
	// are resolved against the scenario file's directory.
	Module string `yaml:"module"`

	// Golden enables byte-exact comparison of the emitted C++ against
	// testdata/golden/{name}.golden when run under RunWithGolden.
	Golden bool `yaml:"golden,omitempty"`

	// Expect holds the expectations on the compile result.
	Expect ExpectClause `yaml:"expect"`
}

// ExpectClause specifies the expected compile outcome. Error and the
// success expectations are mutually exclusive.
type ExpectClause struct {
	// Contains lists substrings that must appear in the emitted C++.
	Contains []string `yaml:"contains,omitempty"`

	// Error, when non-empty, marks the scenario as a failure case: the
	// compile must fail and the diagnostic must contain this substring.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if !filepath.IsAbs(scenario.Module) && scenario.Module != "" {
		scenario.Module = filepath.Join(filepath.Dir(path), scenario.Module)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Module == "" {
		return fmt.Errorf("module is required")
	}
	if _, err := os.Stat(s.Module); os.IsNotExist(err) {
		return fmt.Errorf("module file not found: %s", s.Module)
	}
	if s.Expect.Error != "" && len(s.Expect.Contains) > 0 {
		return fmt.Errorf("expect.error and expect.contains are mutually exclusive")
	}
	if s.Expect.Error != "" && s.Golden {
		return fmt.Errorf("a failure scenario cannot be golden")
	}
	return nil
}
