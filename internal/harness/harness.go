package harness

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/cicverify/internal/axis"
	"github.com/roach88/cicverify/internal/engine"
	"github.com/roach88/cicverify/internal/golden"
	"github.com/roach88/cicverify/internal/signal"
	"github.com/roach88/cicverify/internal/stimulus"
)

// Device is what a scenario runs against: a signal hierarchy exposing the
// bus ports and stage handles, and a behavior to attach to a scheduler.
type Device interface {
	Directory() signal.Directory
	Attach(s *engine.Scheduler) *engine.Task
}

// Option configures Run.
type Option func(*runner)

// WithLogger sets the logger for the scheduler, the bus and the run.
func WithLogger(l *zap.Logger) Option {
	return func(r *runner) {
		r.log = l
	}
}

type runner struct {
	log *zap.Logger
}

type observation struct {
	samples []int64
	driven  int
	live    golden.Params
}

// Run executes sc against dev on a fresh scheduler.
//
// Execution flow:
//  1. Start the clock and the device, hold reset for axis.DefaultSettle
//  2. Start ratio discovery and the stimulus driver as tasks
//  3. Collect output transfers until the driver is done
//  4. Compare the samples with the golden values of the live parameters
func Run(ctx context.Context, sc *Scenario, dev Device, opts ...Option) (*Result, error) {
	r := &runner{log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	log := r.log.With(zap.String("scenario", sc.Name))
	start := time.Now()

	dir := dev.Directory()
	bus, err := axis.Bind(dir, axis.WithLogger(log))
	if err != nil {
		return nil, err
	}
	order, tapDelay, err := golden.DiscoverStructure(dir)
	if err != nil {
		return nil, err
	}

	input, err := r.stimulus(sc, bus)
	if err != nil {
		return nil, err
	}

	schedOpts := []engine.Option{engine.WithLogger(log)}
	if sc.MaxTime > 0 {
		schedOpts = append(schedOpts, engine.WithMaxTime(engine.Time(sc.MaxTime)))
	}
	s := engine.New(schedOpts...)
	if _, err := s.StartClock(bus.Clk, ClockPeriod); err != nil {
		return nil, err
	}
	dev.Attach(s)

	out, err := s.Run(ctx, sc.Name, func(p *engine.Proc) (any, error) {
		if err := bus.Reset(p, axis.DefaultSettle); err != nil {
			return nil, err
		}
		discover := p.Start("discover", func(p *engine.Proc) (any, error) {
			return golden.DiscoverRatio(p, dir)
		})
		driver := p.Start("driver", bus.Driver(input, axis.DefaultDriveOptions()))

		samples, err := bus.Collect(p, driver)
		if err != nil {
			return nil, err
		}
		ratio, err := p.Join(discover)
		if err != nil {
			return nil, err
		}
		driven, _ := driver.Result()
		return observation{
			samples: samples,
			driven:  driven.(int),
			live: golden.Params{
				Order:       order,
				TapDelay:    tapDelay,
				Ratio:       ratio.(int),
				Compensate:  sc.Params.Compensate,
				InputWidth:  bus.SData.Width(),
				OutputWidth: bus.MData.Width(),
			},
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	obs := out.(observation)

	res := NewResult(sc.Name)
	res.Params = obs.live
	res.Samples = append(res.Samples, obs.samples...)
	res.Driven = obs.driven
	res.SimTime = uint64(s.Now())

	if err := r.evaluate(sc, res); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)

	log.Info("scenario finished",
		zap.Bool("pass", res.Pass),
		zap.Int("samples", len(res.Samples)),
		zap.Uint64("sim_time", res.SimTime),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// stimulus builds the input sequence. Lengths come from the declared
// parameters because the live ratio is only known once the run is under way.
func (r *runner) stimulus(sc *Scenario, bus *axis.Bus) ([]int64, error) {
	p := sc.Params
	switch sc.Name {
	case ScenarioImpulse:
		in := make([]int64, impulseLength(p))
		in[0] = 1
		return in, nil
	case ScenarioStep:
		in := make([]int64, stepLength(p))
		for i := range in {
			in[i] = 1
		}
		return in, nil
	case ScenarioPDM:
		samples, err := stimulus.ReadFile(sc.Input)
		if err != nil {
			return nil, err
		}
		return stimulus.Levels(samples, bus.SData.Width()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, sc.Name)
}

func (r *runner) evaluate(sc *Scenario, res *Result) error {
	checkDeclared(res, sc.Params, res.Params)

	if sc.Name == ScenarioPDM {
		if sc.Output == "" {
			return nil
		}
		header := fmt.Sprintf("%s %s", sc.Name, res.Params)
		return stimulus.WriteFile(sc.Output, header, res.Samples)
	}

	want, err := golden.Compute(res.Params)
	if err != nil {
		return err
	}
	res.Expected = want
	if sc.Name == ScenarioImpulse {
		checkImpulse(res, want)
	} else {
		checkStep(res, want)
	}
	return nil
}
