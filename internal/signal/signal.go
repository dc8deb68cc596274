package signal

import "fmt"

// Signal is a named wire or bus of the device under test.
//
// The current value is read with Value, Int or High. Mutation happens only
// through Store, which the scheduler calls when it applies the writes of a
// delta cycle.
type Signal struct {
	name   string
	path   string
	signed bool
	val    Value
}

func newSignal(name, path string, width int, signed bool) *Signal {
	return &Signal{name: name, path: path, signed: signed, val: Zero(width)}
}

// Name returns the local signal name.
func (s *Signal) Name() string { return s.name }

// Path returns the dot-separated path from the root scope.
func (s *Signal) Path() string { return s.path }

// Width returns the vector width in bits.
func (s *Signal) Width() int { return s.val.Width() }

// Signed reports whether Int interprets the value as two's complement.
func (s *Signal) Signed() bool { return s.signed }

// Value returns the current value.
func (s *Signal) Value() Value { return s.val }

// Int returns the current value using the signal's signedness.
func (s *Signal) Int() int64 {
	if s.signed {
		return s.val.Int()
	}
	return int64(s.val.Uint())
}

// High reports whether bit 0 of the current value is set.
func (s *Signal) High() bool { return s.val.High() }

// Encode converts an integer to a Value of this signal's width.
func (s *Signal) Encode(v int64) Value { return FromInt(s.Width(), v) }

// Store replaces the current value and returns the previous one.
// Only the scheduler should call Store; test code writes through engine.Proc.
func (s *Signal) Store(v Value) (Value, error) {
	if v.Width() != s.Width() {
		return s.val, fmt.Errorf("signal %s: %w: got %d bits, want %d", s.path, ErrWidth, v.Width(), s.Width())
	}
	prev := s.val
	s.val = v
	return prev, nil
}

func (s *Signal) String() string {
	return s.path + "=" + s.val.String()
}
