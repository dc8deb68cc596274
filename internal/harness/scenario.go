package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cicverify/internal/engine"
	"github.com/roach88/cicverify/internal/golden"
)

// Scenario names.
const (
	ScenarioImpulse = "impulse"
	ScenarioStep    = "step"
	ScenarioPDM     = "pdm"
)

// Scenarios lists every scenario name.
var Scenarios = []string{ScenarioImpulse, ScenarioStep, ScenarioPDM}

// ClockPeriod is the clock period of every scenario.
const ClockPeriod engine.Time = 10

// ErrUnknownScenario is returned for a name not in Scenarios.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario describes one verification run.
type Scenario struct {
	// Name selects the stimulus and the checks.
	Name string `yaml:"name"`

	// Params are the generics the device was built with. They size the
	// stimulus and are cross-checked against the live device.
	Params golden.Params `yaml:"params"`

	// Input is the stimulus file of the pdm scenario.
	Input string `yaml:"input,omitempty"`

	// Output receives the observed samples of the pdm scenario.
	// Empty means the samples are kept in the Result only.
	Output string `yaml:"output,omitempty"`

	// MaxTime bounds simulated time. Zero uses engine.DefaultMaxTime.
	MaxTime uint64 `yaml:"max_time,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected and relative stimulus paths are resolved
// against the directory of path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&sc.Input, &sc.Output} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks the name, the parameters and the pdm stimulus.
func (s *Scenario) Validate() error {
	switch s.Name {
	case ScenarioImpulse, ScenarioStep:
	case ScenarioPDM:
		if s.Input == "" {
			return fmt.Errorf("pdm: input is required")
		}
	case "":
		return fmt.Errorf("name is required")
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScenario, s.Name)
	}
	return s.Params.Validate()
}

// impulseLength feeds enough zeros after the impulse for the response to
// reach the second decimated sample and settle past it.
func impulseLength(p golden.Params) int {
	return p.Ratio*(p.Order*p.TapDelay+2) + 1
}

// stepLength feeds the step long enough for every comb delay line to fill.
func stepLength(p golden.Params) int {
	return p.Ratio * (p.Order*p.TapDelay + 4)
}
