package signal

import (
	"errors"
	"fmt"
	"strconv"
)

// MaxWidth is the widest vector a Value can hold.
const MaxWidth = 64

// ErrWidth is returned for widths outside 1..MaxWidth.
var ErrWidth = errors.New("signal width out of range")

// Value is an immutable fixed-width bit vector.
//
// Bits above the width are always zero, so two Values with the same width
// and the same numeric pattern compare equal with ==.
type Value struct {
	width uint8
	bits  uint64
}

// CheckWidth reports whether width can be represented by a Value.
func CheckWidth(width int) error {
	if width < 1 || width > MaxWidth {
		return fmt.Errorf("%w: %d", ErrWidth, width)
	}
	return nil
}

func mask(width uint8) uint64 {
	if width >= MaxWidth {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// FromUint returns v truncated to width bits.
// Panics if width is out of range; use CheckWidth first for untrusted input.
func FromUint(width int, v uint64) Value {
	if err := CheckWidth(width); err != nil {
		panic(err)
	}
	w := uint8(width)
	return Value{width: w, bits: v & mask(w)}
}

// FromInt returns the two's-complement encoding of v truncated to width bits.
func FromInt(width int, v int64) Value {
	return FromUint(width, uint64(v))
}

// Zero returns the all-zero value of the given width.
func Zero(width int) Value { return FromUint(width, 0) }

// Width returns the vector width in bits.
func (v Value) Width() int { return int(v.width) }

// Uint returns the unsigned interpretation.
func (v Value) Uint() uint64 { return v.bits }

// Int returns the two's-complement signed interpretation.
func (v Value) Int() int64 {
	if v.width == 0 || v.width >= MaxWidth {
		return int64(v.bits)
	}
	shift := MaxWidth - v.width
	return int64(v.bits<<shift) >> shift
}

// Bit returns bit i (0 is the least significant bit). Out of range bits read
// as false.
func (v Value) Bit(i int) bool {
	if i < 0 || i >= int(v.width) {
		return false
	}
	return v.bits>>uint(i)&1 == 1
}

// High reports whether bit 0 is set. Clocks, resets and handshake lines
// are single-bit signals read this way.
func (v Value) High() bool { return v.Bit(0) }

// Equal reports whether v and o have the same width and bits.
func (v Value) Equal(o Value) bool { return v == o }

// String formats the value as width'b<binary>.
func (v Value) String() string {
	s := strconv.FormatUint(v.bits, 2)
	for len(s) < int(v.width) {
		s = "0" + s
	}
	return strconv.Itoa(int(v.width)) + "'b" + s
}
