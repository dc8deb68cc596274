package sweep

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/cicverify/internal/golden"
	"github.com/roach88/cicverify/internal/harness"
)

// ErrInvalidPlan is returned for a plan that cannot be swept.
var ErrInvalidPlan = errors.New("sweep: invalid plan")

//go:embed plan.cue
var planSchema []byte

// Plan describes a sweep: which scenario to run against which top module,
// over the cartesian product of Ranges applied on top of Fixed.
type Plan struct {
	Name     string `json:"name" yaml:"name"`
	Scenario string `json:"scenario" yaml:"scenario"`
	Top      string `json:"top" yaml:"top"`

	// Workdir holds the design sources. Empty for the model backend.
	Workdir string `json:"workdir,omitempty" yaml:"workdir,omitempty"`

	// OutDir receives build directories.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	Ranges []Range       `json:"ranges" yaml:"ranges"`
	Fixed  golden.Params `json:"fixed" yaml:"fixed"`

	// Parallel bounds the number of concurrent jobs. 0 and 1 run
	// sequentially in a shared build directory.
	Parallel int `json:"parallel" yaml:"parallel"`

	Input   string `json:"input,omitempty" yaml:"input,omitempty"`
	MaxTime uint64 `json:"max_time,omitempty" yaml:"max_time,omitempty"`
}

// Validate checks the plan without expanding it.
func (p *Plan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPlan)
	}
	if p.Top == "" {
		return fmt.Errorf("%w: missing top", ErrInvalidPlan)
	}
	if p.OutDir == "" {
		return fmt.Errorf("%w: missing out_dir", ErrInvalidPlan)
	}
	if p.Parallel < 0 {
		return fmt.Errorf("%w: parallel %d < 0", ErrInvalidPlan, p.Parallel)
	}
	switch p.Scenario {
	case harness.ScenarioImpulse, harness.ScenarioStep:
	case harness.ScenarioPDM:
		if p.Input == "" {
			return fmt.Errorf("%w: pdm needs an input file", ErrInvalidPlan)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidPlan, harness.ErrUnknownScenario, p.Scenario)
	}
	return nil
}

// LoadPlan reads a plan from a .yaml, .yml or .cue file. CUE plans are
// unified with the #Plan schema, so defaults and constraints apply before
// decoding. Relative paths are resolved against the plan's directory.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}

	var plan *Plan
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		plan, err = decodeYAMLPlan(data)
	case ".cue":
		plan, err = decodeCUEPlan(path, data)
	default:
		return nil, fmt.Errorf("%w: unsupported plan format %q", ErrInvalidPlan, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", path, err)
	}

	if plan.OutDir == "" {
		plan.OutDir = "build"
	}
	base := filepath.Dir(path)
	plan.Workdir = resolve(base, plan.Workdir)
	plan.OutDir = resolve(base, plan.OutDir)
	plan.Input = resolve(base, plan.Input)

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func decodeYAMLPlan(data []byte) (*Plan, error) {
	var plan Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return &plan, nil
}

func decodeCUEPlan(path string, data []byte) (*Plan, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(planSchema, cue.Filename("plan.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("plan schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Plan")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	var plan Plan
	if err := unified.Decode(&plan); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return &plan, nil
}
