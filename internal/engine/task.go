package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/cicverify/internal/signal"
)

// TaskFunc is the body of a cooperative task.
type TaskFunc func(p *Proc) (any, error)

var errExited = errors.New("task exited without returning")

// Task is a handle on a started task.
type Task struct {
	name   string
	fn     TaskFunc
	s      *Scheduler
	wake   chan wakeup
	done   bool
	result any
	err    error
}

// wakeup resumes a suspended task, either with the trigger that fired or
// with an abort request during teardown.
type wakeup struct {
	task  *Task
	fired Trigger
	abort bool
}

// Name returns the task name given to Start.
func (t *Task) Name() string { return t.name }

// Done reports whether the task has returned. It never blocks.
func (t *Task) Done() bool { return t.done }

// Result returns the task's return values. Only meaningful once Done is true.
func (t *Task) Result() (any, error) { return t.result, t.err }

func (t *Task) run() {
	w := <-t.wake
	t.err = errExited
	defer func() {
		if r := recover(); r != nil {
			t.result, t.err = nil, fmt.Errorf("task %s panicked: %v", t.name, r)
		}
		t.done = true
		t.s.yield <- struct{}{}
	}()
	if w.abort {
		t.err = ErrAborted
		return
	}
	t.result, t.err = t.fn(&Proc{task: t})
}

// Proc is the view a running task has of the scheduler. Every method must be
// called from the task's own body.
type Proc struct {
	task *Task
}

// Name returns the name of the running task.
func (p *Proc) Name() string { return p.task.name }

// Now returns the current simulated time.
func (p *Proc) Now() Time { return p.task.s.now }

// Start launches fn as a background task. It becomes runnable in the
// current delta, after the tasks that are already runnable.
func (p *Proc) Start(name string, fn TaskFunc) *Task {
	return p.task.s.spawn(name, fn)
}

// Write buffers a write of v to sig. It takes effect when the current delta
// cycle ends; the last write to a signal within one delta wins.
func (p *Proc) Write(sig *signal.Signal, v signal.Value) error {
	if v.Width() != sig.Width() {
		return fmt.Errorf("write %s: %w: got %d bits, want %d", sig.Path(), signal.ErrWidth, v.Width(), sig.Width())
	}
	p.task.s.write(sig, v)
	return nil
}

// Set buffers a write of the integer v, truncated to the width of sig.
func (p *Proc) Set(sig *signal.Signal, v int64) {
	p.task.s.write(sig, sig.Encode(v))
}

// Wait suspends the task until the first of triggers fires and returns it.
// If a trigger is already satisfied Wait returns it without suspending.
func (p *Proc) Wait(triggers ...Trigger) (Trigger, error) {
	s := p.task.s
	if s.aborting {
		return nil, ErrAborted
	}
	if len(triggers) == 0 {
		return nil, errors.New("engine: Wait needs at least one trigger")
	}
	w := &wait{task: p.task}
	for _, tr := range triggers {
		if tr.arm(s, w) {
			w.fired = true
			return tr, nil
		}
	}

	s.yield <- struct{}{}
	wk := <-p.task.wake
	if wk.abort {
		return nil, ErrAborted
	}
	return wk.fired, nil
}

// Delay suspends the task for d units of simulated time.
func (p *Proc) Delay(d Time) error {
	_, err := p.Wait(Timer(d))
	return err
}

// RisingEdge suspends the task until sig goes from low to high.
func (p *Proc) RisingEdge(sig *signal.Signal) error {
	_, err := p.Wait(RisingEdge(sig))
	return err
}

// FallingEdge suspends the task until sig goes from high to low.
func (p *Proc) FallingEdge(sig *signal.Signal) error {
	_, err := p.Wait(FallingEdge(sig))
	return err
}

// ValueChange suspends the task until a write changes the value of sig.
func (p *Proc) ValueChange(sig *signal.Signal) error {
	_, err := p.Wait(ValueChange(sig))
	return err
}

// Join suspends the task until t returns and yields t's return values.
func (p *Proc) Join(t *Task) (any, error) {
	if _, err := p.Wait(Done(t)); err != nil {
		return nil, err
	}
	return t.result, t.err
}
