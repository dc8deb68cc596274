package sweep

import (
	"fmt"
	"strconv"

	"github.com/roach88/cicverify/internal/golden"
)

// Generic names passed to every build.
const (
	GenericOrder       = "order"
	GenericTapDelay    = "tapDelay"
	GenericRatio       = "decimationRatio"
	GenericCompensate  = "compensate"
	GenericInputWidth  = "inputWidth"
	GenericOutputWidth = "outputWidth"
)

// Job is one build-and-test cycle of a sweep.
type Job struct {
	// Index is the position of the job in the sweep, from 0.
	Index int `json:"index"`

	// Combination is the swept point this job was expanded from.
	Combination Combination `json:"combination"`

	// Params are the fixed parameters with Combination applied.
	Params golden.Params `json:"params"`

	// Scenario filters which scenario of the test module runs.
	Scenario string `json:"scenario"`

	// Top is the top module name.
	Top string `json:"top"`

	// SourceDir holds the design sources. When set, the build order is
	// resolved from the top declaration in it.
	SourceDir string `json:"source_dir,omitempty"`

	// Dir receives build products and result files. Result files of the
	// scenario are purged from it when the job ends.
	Dir string `json:"dir"`

	// Input is the stimulus file for the pdm scenario.
	Input string `json:"input,omitempty"`

	// MaxTime bounds simulated time per scenario. Zero keeps the default.
	MaxTime uint64 `json:"max_time,omitempty"`
}

// ParamsFor applies c on top of base. Names are generic names;
// compensate takes 0 or 1. outputWidth is derived unless bound explicitly.
func ParamsFor(base golden.Params, c Combination) (golden.Params, error) {
	p := base
	for _, b := range c {
		switch b.Name {
		case GenericOrder:
			p.Order = b.Value
		case GenericTapDelay:
			p.TapDelay = b.Value
		case GenericRatio:
			p.Ratio = b.Value
		case GenericCompensate:
			p.Compensate = b.Value != 0
		case GenericInputWidth:
			p.InputWidth = b.Value
		case GenericOutputWidth:
			p.OutputWidth = b.Value
		default:
			return golden.Params{}, fmt.Errorf("%w: unknown generic %q", ErrInvalidRange, b.Name)
		}
	}
	p = p.WithDefaults()
	return p, p.Validate()
}

// Generic is one name=value pair handed to the build.
type Generic struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// GenericsFor returns the build generics of p in a fixed order. The output
// width is 2 + order*ceil(log2(tapDelay*decimationRatio)) unless p sets it.
func GenericsFor(p golden.Params) []Generic {
	p = p.WithDefaults()
	compensate := "false"
	if p.Compensate {
		compensate = "true"
	}
	return []Generic{
		{GenericOrder, strconv.Itoa(p.Order)},
		{GenericTapDelay, strconv.Itoa(p.TapDelay)},
		{GenericRatio, strconv.Itoa(p.Ratio)},
		{GenericCompensate, compensate},
		{GenericInputWidth, strconv.Itoa(p.InputWidth)},
		{GenericOutputWidth, strconv.Itoa(p.OutputWidth)},
	}
}

// ResultFileName is the transient result file of one scenario run. It
// starts with the scenario name so that purge can find it.
func ResultFileName(scenario string, p golden.Params) string {
	return fmt.Sprintf("%s_M%d_N%d_R%d.result", scenario, p.Order, p.TapDelay, p.Ratio)
}

// WaveArg is the simulator argument naming the waveform dump of one test.
func WaveArg(top, scenario string) string {
	return fmt.Sprintf("--wave=%s_%s.fst", top, scenario)
}
