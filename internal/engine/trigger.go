package engine

import (
	"fmt"

	"github.com/roach88/cicverify/internal/signal"
)

// Trigger is something a task can wait for. Triggers are compared by
// identity: Wait returns the exact Trigger value that fired.
type Trigger interface {
	fmt.Stringer

	// arm registers w with the scheduler. It returns true, without
	// registering, when the trigger is already satisfied.
	arm(s *Scheduler, w *wait) bool
}

// wait is one suspension of one task. All triggers armed for the same Wait
// share it, so the first to fire wins and the others become stale.
type wait struct {
	task  *Task
	fired bool
}

type edgeKind int

const (
	edgeRising edgeKind = iota + 1
	edgeFalling
	edgeAny
)

type signalTrigger struct {
	sig  *signal.Signal
	kind edgeKind
}

// RisingEdge fires when bit 0 of sig goes from low to high.
func RisingEdge(sig *signal.Signal) Trigger { return &signalTrigger{sig: sig, kind: edgeRising} }

// FallingEdge fires when bit 0 of sig goes from high to low.
func FallingEdge(sig *signal.Signal) Trigger { return &signalTrigger{sig: sig, kind: edgeFalling} }

// ValueChange fires on any write that changes the value of sig.
func ValueChange(sig *signal.Signal) Trigger { return &signalTrigger{sig: sig, kind: edgeAny} }

func (t *signalTrigger) arm(s *Scheduler, w *wait) bool {
	s.watchers[t.sig] = append(s.watchers[t.sig], watcher{trig: t, w: w})
	return false
}

func (t *signalTrigger) matches(prev, cur signal.Value) bool {
	switch t.kind {
	case edgeRising:
		return !prev.High() && cur.High()
	case edgeFalling:
		return prev.High() && !cur.High()
	default:
		return true
	}
}

func (t *signalTrigger) String() string {
	switch t.kind {
	case edgeRising:
		return "RisingEdge(" + t.sig.Path() + ")"
	case edgeFalling:
		return "FallingEdge(" + t.sig.Path() + ")"
	default:
		return "ValueChange(" + t.sig.Path() + ")"
	}
}

type timerTrigger struct {
	d Time
}

// Timer fires d units after the wait starts.
func Timer(d Time) Trigger { return &timerTrigger{d: d} }

func (t *timerTrigger) arm(s *Scheduler, w *wait) bool {
	s.timers.schedule(s.now+t.d, func() { s.fire(w, t) })
	return false
}

func (t *timerTrigger) String() string { return fmt.Sprintf("Timer(%d)", t.d) }

type doneTrigger struct {
	task *Task
}

// Done fires when task returns. It is satisfied immediately if the task has
// already finished.
func Done(task *Task) Trigger { return &doneTrigger{task: task} }

func (t *doneTrigger) arm(s *Scheduler, w *wait) bool {
	if t.task.done {
		return true
	}
	s.joiners[t.task] = append(s.joiners[t.task], watcher{trig: t, w: w})
	return false
}

func (t *doneTrigger) String() string { return "Done(" + t.task.name + ")" }

type watcher struct {
	trig Trigger
	w    *wait
}
