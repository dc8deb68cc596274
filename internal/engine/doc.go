// Package engine implements the cooperative discrete-event scheduler that
// sequences clock edges, resets and signal value changes for one test
// scenario.
//
// ARCHITECTURE:
//
// Single Runner:
// Every task runs on its own goroutine, but the scheduler hands a single
// baton between them over unbuffered channels. Exactly one task executes at
// a time and a task gives the baton back only at a suspension point:
// Delay, RisingEdge, FallingEdge, ValueChange, Join or the general Wait.
// There is no preemption and no data race between tasks.
//
// Delta Cycles:
// Signal writes issued through Proc.Write are buffered. When every runnable
// task has suspended, the buffered writes are applied together and the
// tasks waiting on an edge or value change of a written signal become
// runnable in the next delta. A task therefore never observes a write
// mid-transition, and a task woken by a rising clock edge still reads the
// values that were present at the edge.
//
// Time:
// Simulated time only advances when no task is runnable and no write is
// pending. Timed events at the same instant fire in scheduling order.
//
// Bounds:
// Every run is bounded by a maximum simulated time and a maximum number of
// delta cycles per instant. A scenario that would otherwise hang fails with
// a RuntimeError; IsTimeout reports both the time budget and deadlock cases.
package engine
