package golden

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidParams is returned for structurally impossible filter parameters.
var ErrInvalidParams = errors.New("golden: invalid filter parameters")

// Params are the structural parameters of one CIC decimator build.
type Params struct {
	// Order is the number of integrator and comb stages (M).
	Order int `json:"order" yaml:"order"`

	// TapDelay is the comb differential delay (N).
	TapDelay int `json:"tap_delay" yaml:"tap_delay"`

	// Ratio is the decimation ratio (R).
	Ratio int `json:"ratio" yaml:"ratio"`

	// Compensate enables the optional compensation FIR after the combs.
	// The closed-form responses below describe the uncompensated filter.
	Compensate bool `json:"compensate" yaml:"compensate"`

	InputWidth  int `json:"input_width" yaml:"input_width"`
	OutputWidth int `json:"output_width" yaml:"output_width"`
}

// Validate enforces M >= 1, N >= 1 and R >= 2.
func (p Params) Validate() error {
	switch {
	case p.Order < 1:
		return fmt.Errorf("%w: order %d < 1", ErrInvalidParams, p.Order)
	case p.TapDelay < 1:
		return fmt.Errorf("%w: tap delay %d < 1", ErrInvalidParams, p.TapDelay)
	case p.Ratio < 2:
		return fmt.Errorf("%w: decimation ratio %d < 2", ErrInvalidParams, p.Ratio)
	case p.InputWidth < 0 || p.OutputWidth < 0:
		return fmt.Errorf("%w: negative port width", ErrInvalidParams)
	}
	return nil
}

// WithDefaults fills the port widths that were left at zero: a 1-bit input
// and the bit-growth output width.
func (p Params) WithDefaults() Params {
	if p.InputWidth == 0 {
		p.InputWidth = 1
	}
	if p.OutputWidth == 0 {
		p.OutputWidth = OutputWidthFor(p.Order, p.TapDelay, p.Ratio)
	}
	return p
}

// OutputWidthFor returns 2 + M*ceil(log2(N*R)), the output width generic
// passed to every build.
func OutputWidthFor(order, tapDelay, ratio int) int {
	return 2 + order*ceilLog2(tapDelay*ratio)
}

func ceilLog2(x int) int {
	if x <= 1 {
		return 0
	}
	return bits.Len(uint(x - 1))
}

func (p Params) String() string {
	return fmt.Sprintf("M=%d N=%d R=%d", p.Order, p.TapDelay, p.Ratio)
}
