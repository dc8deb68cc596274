package engine

import (
	"fmt"

	"github.com/roach88/cicverify/internal/signal"
)

// Time is simulated time in abstract units. The reference scenarios treat
// one unit as one nanosecond.
type Time uint64

// Clock toggles a single-bit signal with a fixed half period.
//
// A Clock is not a task: each toggle is a timed callback that issues a
// buffered write, so edges obey the same delta-cycle rules as task writes.
type Clock struct {
	s       *Scheduler
	sig     *signal.Signal
	half    Time
	edges   uint64
	stopped bool
}

// StartClock starts driving sig low at the current time and toggling it every
// period/2 units. The first rising edge happens at now+period/2.
func (s *Scheduler) StartClock(sig *signal.Signal, period Time) (*Clock, error) {
	if sig.Width() != 1 {
		return nil, fmt.Errorf("clock %s: want a 1-bit signal, got %d bits", sig.Path(), sig.Width())
	}
	if period < 2 || period%2 != 0 {
		return nil, fmt.Errorf("clock %s: period must be even and >= 2, got %d", sig.Path(), period)
	}
	c := &Clock{s: s, sig: sig, half: period / 2}
	s.write(sig, signal.Zero(1))
	s.timers.schedule(s.now+c.half, c.toggle)
	s.log.Debug("clock started", zapPath(sig), zapTime("period", period))
	return c, nil
}

func (c *Clock) toggle() {
	if c.stopped {
		return
	}
	next := signal.FromUint(1, 1)
	if c.sig.High() {
		next = signal.Zero(1)
	} else {
		c.edges++
	}
	c.s.write(c.sig, next)
	c.s.timers.schedule(c.s.now+c.half, c.toggle)
}

// Period returns the full clock period.
func (c *Clock) Period() Time { return 2 * c.half }

// RisingEdges returns the number of low-to-high toggles issued so far.
func (c *Clock) RisingEdges() uint64 { return c.edges }

// Stop halts the clock after the current half period.
func (c *Clock) Stop() { c.stopped = true }
