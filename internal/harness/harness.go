package harness

import (
	"fmt"
	"strings"

	"github.com/tmppy/tmppyc/internal/loader"
	"github.com/tmppy/tmppyc/internal/pipeline"
)

// Result is the outcome of running a scenario's compile.
type Result struct {
	// Output is the emitted C++ text. Empty when the compile failed.
	Output string
}

// Run loads the scenario's module, compiles it and checks the
// scenario's expectations. For failure scenarios a matching compile
// error yields a nil error and an empty result.
func Run(scenario *Scenario) (*Result, error) {
	module, err := loader.LoadFile(scenario.Module)
	if err != nil {
		return nil, checkFailure(scenario, fmt.Errorf("load %s: %w", scenario.Module, err))
	}

	output, err := pipeline.Compile(module)
	if err != nil {
		return nil, checkFailure(scenario, fmt.Errorf("compile %s: %w", scenario.Module, err))
	}

	if scenario.Expect.Error != "" {
		return nil, fmt.Errorf("scenario %s: expected a compile error containing %q, compile succeeded", scenario.Name, scenario.Expect.Error)
	}
	for _, want := range scenario.Expect.Contains {
		if !strings.Contains(output, want) {
			return nil, fmt.Errorf("scenario %s: output does not contain %q", scenario.Name, want)
		}
	}

	return &Result{Output: output}, nil
}

// checkFailure decides whether a compile error satisfies the scenario.
func checkFailure(scenario *Scenario, err error) error {
	if scenario.Expect.Error == "" {
		return fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	if !strings.Contains(err.Error(), scenario.Expect.Error) {
		return fmt.Errorf("scenario %s: error %q does not contain %q", scenario.Name, err.Error(), scenario.Expect.Error)
	}
	return nil
}
