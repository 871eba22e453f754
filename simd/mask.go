package simd

import "math/bits"

// Mask is a movemask-style lane bitset: bit i corresponds to lane i.
// Masks compose with the usual bit operators.
type Mask uint32

// LaneMask returns a mask with the first n lanes set.
func LaneMask(n int) Mask {
	return Mask(1)<<uint(n) - 1
}

// Report whether any lane is set.
func (m Mask) Any() bool {
	return m != 0
}

// Report whether no lane is set.
func (m Mask) None() bool {
	return m == 0
}

// Report whether lane i is set.
func (m Mask) Has(i int) bool {
	return m&(1<<uint(i)) != 0
}

// Count the set lanes.
func (m Mask) Count() int {
	return bits.OnesCount32(uint32(m))
}

// First returns the lowest set lane. Returns 32 when the mask is empty.
func (m Mask) First() int {
	return bits.TrailingZeros32(uint32(m))
}

// Clear returns the mask with lane i unset.
func (m Mask) Clear(i int) Mask {
	return m &^ (1 << uint(i))
}
