package golden

import (
	"fmt"

	"github.com/roach88/cicverify/internal/engine"
	"github.com/roach88/cicverify/internal/signal"
)

// Names of the internal handles parameter discovery relies on.
const (
	// IntegratorScope holds one child per integrator register plus the
	// input register, so it has M+1 children.
	IntegratorScope = "integrators"

	// CombDelayScope holds every comb delay tap, M*N in total.
	CombDelayScope = "combDelay"

	// DecimationCounter counts down from R-1 to 0 once per accepted input.
	DecimationCounter = "decimCounter"
)

// DiscoverStructure derives M and N from the stage handles exposed by the
// device. R is not a structural property; see DiscoverRatio.
func DiscoverStructure(dir signal.Directory) (order, tapDelay int, err error) {
	stages, err := dir.ChildCount(IntegratorScope)
	if err != nil {
		return 0, 0, fmt.Errorf("discover order: %w", err)
	}
	order = stages - 1
	if order < 1 {
		return 0, 0, fmt.Errorf("%w: %d integrator stages", ErrInvalidParams, stages)
	}

	taps, err := dir.ChildCount(CombDelayScope)
	if err != nil {
		return 0, 0, fmt.Errorf("discover tap delay: %w", err)
	}
	if taps == 0 || taps%order != 0 {
		return 0, 0, fmt.Errorf("%w: %d comb taps for %d stages", ErrInvalidParams, taps, order)
	}
	return order, taps / order, nil
}

// DiscoverRatio infers the live decimation ratio: it waits for the
// decimation counter to reach zero, then for its next change, and returns the
// reloaded value plus one. It must run as a task while the device is fed.
func DiscoverRatio(p *engine.Proc, dir signal.Directory) (int, error) {
	counter, err := dir.Signal(DecimationCounter)
	if err != nil {
		return 0, fmt.Errorf("discover ratio: %w", err)
	}
	for counter.Int() != 0 {
		if err := p.ValueChange(counter); err != nil {
			return 0, err
		}
	}
	if err := p.ValueChange(counter); err != nil {
		return 0, err
	}
	ratio := int(counter.Int()) + 1
	if ratio < 2 {
		return 0, fmt.Errorf("%w: counter reloaded with %d", ErrInvalidParams, ratio-1)
	}
	return ratio, nil
}

// Discover resolves the full parameter set of a running device. Port widths
// are read from the bus signals.
func Discover(p *engine.Proc, dir signal.Directory) (Params, error) {
	order, tapDelay, err := DiscoverStructure(dir)
	if err != nil {
		return Params{}, err
	}
	ratio, err := DiscoverRatio(p, dir)
	if err != nil {
		return Params{}, err
	}
	params := Params{Order: order, TapDelay: tapDelay, Ratio: ratio}
	if in, err := dir.Signal("sAxisTData"); err == nil {
		params.InputWidth = in.Width()
	}
	if out, err := dir.Signal("mAxisTData"); err == nil {
		params.OutputWidth = out.Width()
	}
	return params, params.Validate()
}
