// Package axis drives and monitors the streaming ready/valid ports of a
// device under test.
//
// A transfer happens on a rising clock edge where both valid and ready of
// that side are high. The input side has no ready line: the device accepts
// every valid sample.
package axis

import (
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/roach88/cicverify/internal/engine"
	"github.com/roach88/cicverify/internal/signal"
)

// Port names of the device, fixed by convention.
const (
	Clock       = "clk"
	ResetN      = "resetN"
	InputData   = "sAxisTData"
	InputValid  = "sAxisTValid"
	OutputData  = "mAxisTData"
	OutputValid = "mAxisTValid"
	OutputReady = "mAxisTReady"
)

// DefaultSettle is how long reset is held before release.
const DefaultSettle engine.Time = 100

// Bus is the set of resolved port handles of one device.
type Bus struct {
	Clk    *signal.Signal
	ResetN *signal.Signal
	SData  *signal.Signal
	SValid *signal.Signal
	MData  *signal.Signal
	MValid *signal.Signal
	MReady *signal.Signal

	log *zap.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for handshake events.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bus) {
		b.log = l
	}
}

// Bind resolves every port of the device in dir. Control lines must be
// one bit wide.
func Bind(dir signal.Directory, opts ...Option) (*Bus, error) {
	b := &Bus{log: zap.NewNop()}
	ports := []struct {
		name string
		dst  **signal.Signal
		bit  bool
	}{
		{Clock, &b.Clk, true},
		{ResetN, &b.ResetN, true},
		{InputData, &b.SData, false},
		{InputValid, &b.SValid, true},
		{OutputData, &b.MData, false},
		{OutputValid, &b.MValid, true},
		{OutputReady, &b.MReady, true},
	}
	for _, port := range ports {
		sig, err := dir.Signal(port.name)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", port.name, err)
		}
		if port.bit && sig.Width() != 1 {
			return nil, fmt.Errorf("bind %s: %w: control line is %d bits", port.name, signal.ErrWidth, sig.Width())
		}
		*port.dst = sig
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Reset holds the device in reset with every input low for settle units,
// releases it, and waits one more rising edge so that counters and delay
// lines start from zero before any stimulus.
func (b *Bus) Reset(p *engine.Proc, settle engine.Time) error {
	p.Set(b.ResetN, 0)
	p.Set(b.SValid, 0)
	p.Set(b.SData, 0)
	p.Set(b.MReady, 0)
	if err := p.Delay(settle); err != nil {
		return err
	}
	p.Set(b.ResetN, 1)
	if err := p.RisingEdge(b.Clk); err != nil {
		return err
	}
	b.log.Debug("reset released", zap.Uint64("time", uint64(p.Now())))
	return nil
}

// DriveOptions controls the handshake lines held during DriveInput.
type DriveOptions struct {
	// VTrue holds input valid high for the whole stream.
	VTrue bool
	// RTrue holds output ready high for the whole stream.
	RTrue bool
}

// DefaultDriveOptions models a continuous producer feeding a consumer that
// is always ready.
func DefaultDriveOptions() DriveOptions {
	return DriveOptions{VTrue: true, RTrue: true}
}

// DriveInput presents one value per rising edge and returns once the last
// value has been sampled. Valid is left asserted afterwards. A one-bit input
// is driven with v > 0; wider inputs take the two's complement of v.
func (b *Bus) DriveInput(p *engine.Proc, values []int64, opts DriveOptions) (int, error) {
	if opts.VTrue {
		p.Set(b.SValid, 1)
	}
	if opts.RTrue {
		p.Set(b.MReady, 1)
	}
	for i, v := range values {
		p.Set(b.SData, b.encode(v))
		if err := p.RisingEdge(b.Clk); err != nil {
			return i, err
		}
	}
	b.log.Debug("input exhausted", zap.Int("count", len(values)), zap.Uint64("time", uint64(p.Now())))
	return len(values), nil
}

// Driver wraps DriveInput as a task body. The task result is the number of
// values driven.
func (b *Bus) Driver(values []int64, opts DriveOptions) engine.TaskFunc {
	return func(p *engine.Proc) (any, error) {
		return b.DriveInput(p, values, opts)
	}
}

func (b *Bus) encode(v int64) int64 {
	if b.SData.Width() == 1 {
		if v > 0 {
			return 1
		}
		return 0
	}
	return v
}

// Samples returns the output transfers of the current scenario as a lazy
// sequence. Every call starts a new sequence; it must be consumed by the task
// p belongs to.
//
// Before each suspension the sequence checks whether driver has finished and
// ends if so. It then waits for the next rising edge or the end of driver,
// whichever comes first, so it never blocks after the producer side runs out.
// A suspension error is yielded once and ends the sequence.
func (b *Bus) Samples(p *engine.Proc, driver *engine.Task) iter.Seq2[int64, error] {
	return func(yield func(int64, error) bool) {
		for {
			if driver.Done() {
				return
			}
			edge, done := engine.RisingEdge(b.Clk), engine.Done(driver)
			fired, err := p.Wait(edge, done)
			if err != nil {
				yield(0, err)
				return
			}
			if fired == done {
				return
			}
			if b.MValid.High() && b.MReady.High() {
				if !yield(b.MData.Int(), nil) {
					return
				}
			}
		}
	}
}

// Collect drains Samples into a slice.
func (b *Bus) Collect(p *engine.Proc, driver *engine.Task) ([]int64, error) {
	var out []int64
	for v, err := range b.Samples(p, driver) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	b.log.Debug("output collected", zap.Int("count", len(out)), zap.Uint64("time", uint64(p.Now())))
	return out, nil
}
