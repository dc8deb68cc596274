// Package dutmodel is a behavioral CIC decimator that runs on the engine.
//
// It exposes the same port and stage handles as the hardware build, so the
// whole verification flow can run in-process without an external simulator.
// It is a stand-in device, not the implementation under verification.
package dutmodel

import (
	"fmt"
	"math/bits"

	"go.uber.org/zap"

	"github.com/roach88/cicverify/internal/axis"
	"github.com/roach88/cicverify/internal/engine"
	"github.com/roach88/cicverify/internal/golden"
	"github.com/roach88/cicverify/internal/signal"
)

const stateWidth = 64

// Device is one instance of the model and its signal hierarchy.
type Device struct {
	params golden.Params
	root   *signal.Scope
	bus    *axis.Bus
	log    *zap.Logger

	counter *signal.Signal
	stages  []*signal.Signal
	taps    []*signal.Signal

	acc   []int64
	delay [][]int64
	count int
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the device logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Device) {
		d.log = l
	}
}

// New builds the signal hierarchy for params. Port widths left at zero get
// their defaults.
func New(params golden.Params, opts ...Option) (*Device, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	d := &Device{
		params: params,
		root:   signal.NewScope("cic_decimator"),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.declare(); err != nil {
		return nil, fmt.Errorf("dutmodel: %w", err)
	}
	bus, err := axis.Bind(d.root)
	if err != nil {
		return nil, fmt.Errorf("dutmodel: %w", err)
	}
	d.bus = bus
	d.clear()
	return d, nil
}

func (d *Device) declare() error {
	m, n := d.params.Order, d.params.TapDelay
	ports := []struct {
		name   string
		width  int
		signed bool
	}{
		{axis.Clock, 1, false},
		{axis.ResetN, 1, false},
		{axis.InputData, d.params.InputWidth, d.params.InputWidth > 1},
		{axis.InputValid, 1, false},
		{axis.OutputData, d.params.OutputWidth, true},
		{axis.OutputValid, 1, false},
		{axis.OutputReady, 1, false},
	}
	for _, p := range ports {
		if _, err := d.root.AddSignal(p.name, p.width, p.signed); err != nil {
			return err
		}
	}

	counter, err := d.root.AddSignal(golden.DecimationCounter, max(1, bits.Len(uint(d.params.Ratio-1))), false)
	if err != nil {
		return err
	}
	d.counter = counter

	integ, err := d.root.AddScope(golden.IntegratorScope)
	if err != nil {
		return err
	}
	for i := 0; i <= m; i++ {
		sig, err := integ.AddSignal(fmt.Sprintf("stage%d", i), stateWidth, true)
		if err != nil {
			return err
		}
		d.stages = append(d.stages, sig)
	}

	comb, err := d.root.AddScope(golden.CombDelayScope)
	if err != nil {
		return err
	}
	for j := 0; j < m; j++ {
		for k := 0; k < n; k++ {
			sig, err := comb.AddSignal(fmt.Sprintf("comb%d_tap%d", j, k), stateWidth, true)
			if err != nil {
				return err
			}
			d.taps = append(d.taps, sig)
		}
	}
	return nil
}

// Root returns the device hierarchy.
func (d *Device) Root() *signal.Scope { return d.root }

// Directory returns the device hierarchy as a signal directory.
func (d *Device) Directory() signal.Directory { return d.root }

// Bus returns the bound port handles.
func (d *Device) Bus() *axis.Bus { return d.bus }

// Params returns the parameters the device was built with.
func (d *Device) Params() golden.Params { return d.params }

// Attach starts the device process on s. The clock is not started here.
func (d *Device) Attach(s *engine.Scheduler) *engine.Task {
	return s.Start("dut", d.process)
}

func (d *Device) clear() {
	d.acc = make([]int64, d.params.Order+1)
	d.delay = make([][]int64, d.params.Order)
	for j := range d.delay {
		d.delay[j] = make([]int64, d.params.TapDelay)
	}
	d.count = 0
}

// process evaluates one clock cycle per rising edge. Inputs are sampled as
// they were before the edge; outputs become visible in the next delta.
func (d *Device) process(p *engine.Proc) (any, error) {
	b := d.bus
	for {
		if err := p.RisingEdge(b.Clk); err != nil {
			return nil, err
		}
		if !b.ResetN.High() {
			d.clear()
			p.Set(b.MValid, 0)
			p.Set(b.MData, 0)
			p.Set(d.counter, 0)
			continue
		}
		if !b.SValid.High() {
			p.Set(b.MValid, 0)
			continue
		}
		d.step(p, b.SData.Int())
	}
}

// step accepts one input sample. Integrator arithmetic wraps at 64 bits,
// which the combs undo as long as the output fits.
func (d *Device) step(p *engine.Proc, x int64) {
	m := d.params.Order
	d.acc[0] = x
	for i := 1; i <= m; i++ {
		d.acc[i] += d.acc[i-1]
	}
	for i, sig := range d.stages {
		p.Set(sig, d.acc[i])
	}

	if d.count != 0 {
		d.count--
		p.Set(d.counter, int64(d.count))
		p.Set(d.bus.MValid, 0)
		return
	}

	v := d.acc[m]
	for j, line := range d.delay {
		out := v - line[len(line)-1]
		copy(line[1:], line[:len(line)-1])
		line[0] = v
		for k, tap := range line {
			p.Set(d.taps[j*len(line)+k], tap)
		}
		v = out
	}
	d.count = d.params.Ratio - 1
	p.Set(d.counter, int64(d.count))
	p.Set(d.bus.MData, v)
	p.Set(d.bus.MValid, 1)
	d.log.Debug("output sample", zap.Int64("value", v), zap.Uint64("time", uint64(p.Now())))
}
