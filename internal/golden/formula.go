package golden

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrOverflow is returned when an expected sample does not fit in int64.
var ErrOverflow = errors.New("golden: value overflows int64")

// Multiset returns the multiset coefficient C(n+k-1, k): the number of ways
// to choose k items from n kinds with repetition.
func Multiset(n, k int) (int64, error) {
	if n < 1 || k < 0 {
		return 0, fmt.Errorf("golden: multiset(%d, %d) undefined", n, k)
	}
	return toInt64(new(big.Int).Binomial(int64(n+k-1), int64(k)))
}

// ImpulseAt returns the output sample that follows the unit sample of an
// impulse excitation: (M+R-1)! / (R!(M-1)!) - M*[N==1].
func ImpulseAt(p Params) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	c := new(big.Int).Binomial(int64(p.Order+p.Ratio-1), int64(p.Ratio))
	return toInt64(c.Sub(c, correction(p)))
}

// StepNearOrigin returns the second output sample of a step excitation:
// (M+R)! / (R!M!) - M*[N==1].
func StepNearOrigin(p Params) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	c := new(big.Int).Binomial(int64(p.Order+p.Ratio), int64(p.Order))
	return toInt64(c.Sub(c, correction(p)))
}

// StepFinal returns the steady-state output of a unit step, (R*N)^M, which
// is the DC gain of the filter.
func StepFinal(p Params) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	gain := big.NewInt(int64(p.Ratio) * int64(p.TapDelay))
	return toInt64(gain.Exp(gain, big.NewInt(int64(p.Order)), nil))
}

// correction is the M*[N==1] term. With a single-tap comb one length-R run
// of the integrator cascade is cancelled in full, in both responses.
func correction(p Params) *big.Int {
	if p.TapDelay != 1 {
		return new(big.Int)
	}
	return big.NewInt(int64(p.Order))
}

func toInt64(v *big.Int) (int64, error) {
	if !v.IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, v)
	}
	return v.Int64(), nil
}

// Response bundles every closed-form value for one parameter set.
type Response struct {
	Params         Params `json:"params"`
	Impulse        int64  `json:"impulse"`
	StepNearOrigin int64  `json:"step_near_origin"`
	StepFinal      int64  `json:"step_final"`
	OutputWidth    int    `json:"output_width"`
}

// Compute evaluates all formulas for p.
func Compute(p Params) (*Response, error) {
	imp, err := ImpulseAt(p)
	if err != nil {
		return nil, err
	}
	near, err := StepNearOrigin(p)
	if err != nil {
		return nil, err
	}
	final, err := StepFinal(p)
	if err != nil {
		return nil, err
	}
	return &Response{
		Params:         p,
		Impulse:        imp,
		StepNearOrigin: near,
		StepFinal:      final,
		OutputWidth:    OutputWidthFor(p.Order, p.TapDelay, p.Ratio),
	}, nil
}
