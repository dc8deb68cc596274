// Package signal provides typed accessors for the wires and buses of a
// device under test.
//
// A Value is a fixed-width bit vector (1 to 64 bits) with both an unsigned
// and a two's-complement signed reading. A Signal holds the current Value of
// one named wire. A Scope groups signals and child scopes into the
// hierarchy exposed by the device, so structural facts (how many integrator
// stages exist, how long a delay line is) can be counted without reflection.
//
// Signals are never written directly by test code. Writes go through the
// scheduler in package engine, which applies them at the end of a delta
// cycle and wakes edge and value-change waiters afterwards.
package signal
