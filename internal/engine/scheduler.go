package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/cicverify/internal/signal"
)

// DefaultMaxTime is the default simulated time budget of one scenario.
const DefaultMaxTime Time = 1_000_000

// DefaultMaxDeltas is the default number of delta cycles allowed at a single
// instant before the run is declared stuck.
const DefaultMaxDeltas = 10_000

// Scheduler is the single-runner event loop of one scenario.
//
// A Scheduler is used for exactly one Run. Tasks may be started before Run
// (Scheduler.Start) or from inside a task (Proc.Start).
//
// INVARIANTS:
//   - At most one task goroutine executes between two baton handoffs.
//   - Buffered writes are applied only when no task is runnable.
//   - Time never moves backwards and never passes maxTime.
type Scheduler struct {
	now       Time
	deltas    int
	maxTime   Time
	maxDeltas int
	log       *zap.Logger

	timers     timerQueue
	ready      []wakeup
	pending    []pendingWrite
	pendingIdx map[*signal.Signal]int
	watchers   map[*signal.Signal][]watcher
	joiners    map[*Task][]watcher

	tasks    []*Task
	yield    chan struct{}
	running  bool
	aborting bool
	failure  error
}

type pendingWrite struct {
	sig *signal.Signal
	val signal.Value
}

// Option allows configuration of scheduler parameters.
type Option func(*Scheduler)

// WithMaxTime sets the simulated time budget.
//
// Default: 1_000_000 units (DefaultMaxTime).
func WithMaxTime(t Time) Option {
	return func(s *Scheduler) {
		s.maxTime = t
	}
}

// WithMaxDeltas sets the number of delta cycles allowed per instant.
func WithMaxDeltas(n int) Option {
	return func(s *Scheduler) {
		s.maxDeltas = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// New creates a scheduler at time zero.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		maxTime:    DefaultMaxTime,
		maxDeltas:  DefaultMaxDeltas,
		log:        zap.NewNop(),
		pendingIdx: make(map[*signal.Signal]int),
		watchers:   make(map[*signal.Signal][]watcher),
		joiners:    make(map[*Task][]watcher),
		yield:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current simulated time.
func (s *Scheduler) Now() Time { return s.now }

// Start launches fn as a background task before or during Run.
func (s *Scheduler) Start(name string, fn TaskFunc) *Task {
	return s.spawn(name, fn)
}

// Run executes fn as the main task and drives the event loop until it
// returns. When the main task returns, every other task is aborted: its
// pending suspension point returns ErrAborted and Run waits for it to exit.
//
// Run returns the main task's result, or a *RuntimeError if the scenario
// timed out, deadlocked, was cancelled, or any task failed.
func (s *Scheduler) Run(ctx context.Context, name string, fn TaskFunc) (any, error) {
	if s.running {
		return nil, errors.New("engine: scheduler already ran")
	}
	s.running = true

	main := s.spawn(name, fn)
	s.log.Debug("scenario starting", zap.String("task", name))

	err := s.loop(ctx, main)
	s.teardown()
	if err != nil {
		s.log.Info("scenario failed", zapTime("time", s.now), zap.Error(err))
		return nil, err
	}

	s.log.Debug("scenario finished", zapTime("time", s.now))
	return main.result, nil
}

func (s *Scheduler) loop(ctx context.Context, main *Task) error {
	for !main.done {
		if s.failure != nil {
			return s.failure
		}

		if len(s.ready) > 0 {
			w := s.ready[0]
			s.ready[0] = wakeup{}
			s.ready = s.ready[1:]
			s.resume(w.task, w)
			continue
		}

		if len(s.pending) > 0 {
			s.deltas++
			if s.deltas > s.maxDeltas {
				return &RuntimeError{
					Code:    ErrCodeDeltaOverflow,
					Message: fmt.Sprintf("more than %d delta cycles at one instant", s.maxDeltas),
					Time:    s.now,
				}
			}
			s.applyWrites()
			continue
		}

		if err := ctx.Err(); err != nil {
			return &RuntimeError{Code: ErrCodeCancelled, Message: "run cancelled", Time: s.now, Err: err}
		}
		at, ok := s.timers.peek()
		if !ok {
			return newDeadlockError(s.now, main.name)
		}
		if at > s.maxTime {
			return newTimeoutError(s.now, at, s.maxTime)
		}
		if at != s.now {
			s.now = at
			s.deltas = 0
		}
		for {
			e, ok := s.timers.popDue(s.now)
			if !ok {
				break
			}
			e.fire()
		}
	}
	return s.failure
}

func (s *Scheduler) spawn(name string, fn TaskFunc) *Task {
	t := &Task{
		name: name,
		fn:   fn,
		s:    s,
		wake: make(chan wakeup),
	}
	s.tasks = append(s.tasks, t)
	go t.run()
	s.ready = append(s.ready, wakeup{task: t})
	s.log.Debug("task started", zap.String("task", name), zapTime("time", s.now))
	return t
}

// resume hands the baton to t and blocks until t suspends or returns.
func (s *Scheduler) resume(t *Task, w wakeup) {
	if t.done {
		return
	}
	t.wake <- w
	<-s.yield
	if t.done {
		s.finished(t)
	}
}

func (s *Scheduler) finished(t *Task) {
	s.log.Debug("task finished", zap.String("task", t.name), zapTime("time", s.now), zap.Error(t.err))
	for _, j := range s.joiners[t] {
		s.fire(j.w, j.trig)
	}
	delete(s.joiners, t)

	if t.err != nil && !s.aborting && s.failure == nil {
		s.failure = newTaskError(s.now, t.name, t.err)
	}
}

// fire makes the task behind w runnable unless another trigger of the same
// wait already did.
func (s *Scheduler) fire(w *wait, trig Trigger) {
	if w.fired {
		return
	}
	w.fired = true
	s.ready = append(s.ready, wakeup{task: w.task, fired: trig})
}

func (s *Scheduler) write(sig *signal.Signal, v signal.Value) {
	if i, ok := s.pendingIdx[sig]; ok {
		s.pending[i].val = v
		return
	}
	s.pendingIdx[sig] = len(s.pending)
	s.pending = append(s.pending, pendingWrite{sig: sig, val: v})
}

// applyWrites ends the current delta cycle.
func (s *Scheduler) applyWrites() {
	writes := s.pending
	s.pending = nil
	clear(s.pendingIdx)

	for _, wr := range writes {
		prev, err := wr.sig.Store(wr.val)
		if err != nil || prev == wr.val {
			continue
		}
		s.notify(wr.sig, prev, wr.val)
	}
}

func (s *Scheduler) notify(sig *signal.Signal, prev, cur signal.Value) {
	list := s.watchers[sig]
	kept := list[:0]
	for _, wt := range list {
		if wt.w.fired {
			continue
		}
		if wt.trig.(*signalTrigger).matches(prev, cur) {
			s.fire(wt.w, wt.trig)
			continue
		}
		kept = append(kept, wt)
	}
	if len(kept) == 0 {
		delete(s.watchers, sig)
		return
	}
	s.watchers[sig] = kept
}

// teardown aborts every task that has not returned yet.
func (s *Scheduler) teardown() {
	s.aborting = true
	s.ready = nil
	for i := 0; i < len(s.tasks); i++ {
		if t := s.tasks[i]; !t.done {
			s.resume(t, wakeup{task: t, abort: true})
		}
	}
}

func zapTime(key string, t Time) zap.Field { return zap.Uint64(key, uint64(t)) }

func zapPath(sig *signal.Signal) zap.Field { return zap.String("signal", sig.Path()) }
