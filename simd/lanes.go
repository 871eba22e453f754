// Package simd implements fixed-width float32 lane arithmetic for the
// triangle intersectors. Batches are plain arrays so values stay in
// registers; masks are movemask-style bitsets.
package simd

import "github.com/chewxy/math32"

// The lane widths used by the intersectors: 4-wide triangle batches
// and 8-wide ray packets.
type Float4 [4]float32
type Float8 [8]float32

// Lanes constrains generic helpers to the supported batch widths.
type Lanes interface {
	Float4 | Float8
}

// Broadcast a scalar to all lanes.
func Splat[F Lanes](v float32) F {
	var out F
	for i := 0; i < len(out); i++ {
		out[i] = v
	}
	return out
}

// Return a batch with all lanes zero.
func Zero[F Lanes]() F {
	var out F
	return out
}

// Add two batches lane-wise.
func Add[F Lanes](a, b F) F {
	var out F
	for i := 0; i < len(out); i++ {
		out[i] = a[i] + b[i]
	}
	return out
}

// Subtract two batches lane-wise.
func Sub[F Lanes](a, b F) F {
	var out F
	for i := 0; i < len(out); i++ {
		out[i] = a[i] - b[i]
	}
	return out
}

// Multiply two batches lane-wise.
func Mul[F Lanes](a, b F) F {
	var out F
	for i := 0; i < len(out); i++ {
		out[i] = a[i] * b[i]
	}
	return out
}

// Calculate a*b+c lane-wise.
func Madd[F Lanes](a, b, c F) F {
	var out F
	for i := 0; i < len(out); i++ {
		out[i] = a[i]*b[i] + c[i]
	}
	return out
}

// Calculate the lane-wise reciprocal.
func Rcp[F Lanes](a F) F {
	var out F
	for i := 0; i < len(out); i++ {
		out[i] = 1.0 / a[i]
	}
	return out
}

// Calculate the lane-wise absolute value.
func Abs[F Lanes](a F) F {
	var out F
	for i := 0; i < len(out); i++ {
		out[i] = math32.Abs(a[i])
	}
	return out
}

// Xor combines the bit patterns of two batches. Pairing it with
// SignMask folds the sign of the denominator into the barycentrics
// without a divide.
func Xor[F Lanes](a, b F) F {
	var out F
	for i := 0; i < len(out); i++ {
		out[i] = math32.Float32frombits(math32.Float32bits(a[i]) ^ math32.Float32bits(b[i]))
	}
	return out
}

// SignMask isolates the sign bit of each lane as a float bit pattern.
func SignMask[F Lanes](a F) F {
	var out F
	for i := 0; i < len(out); i++ {
		out[i] = math32.Float32frombits(math32.Float32bits(a[i]) & 0x80000000)
	}
	return out
}

// NotEqual compares two batches lane-wise.
func NotEqual[F Lanes](a, b F) Mask {
	var m Mask
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			m |= 1 << uint(i)
		}
	}
	return m
}

// LessThan compares two batches lane-wise.
func LessThan[F Lanes](a, b F) Mask {
	var m Mask
	for i := 0; i < len(a); i++ {
		if a[i] < b[i] {
			m |= 1 << uint(i)
		}
	}
	return m
}

// LessEqual compares two batches lane-wise.
func LessEqual[F Lanes](a, b F) Mask {
	var m Mask
	for i := 0; i < len(a); i++ {
		if a[i] <= b[i] {
			m |= 1 << uint(i)
		}
	}
	return m
}

// GreaterThan compares two batches lane-wise.
func GreaterThan[F Lanes](a, b F) Mask {
	var m Mask
	for i := 0; i < len(a); i++ {
		if a[i] > b[i] {
			m |= 1 << uint(i)
		}
	}
	return m
}

// GreaterEqual compares two batches lane-wise.
func GreaterEqual[F Lanes](a, b F) Mask {
	var m Mask
	for i := 0; i < len(a); i++ {
		if a[i] >= b[i] {
			m |= 1 << uint(i)
		}
	}
	return m
}

// Select picks a where the mask lane is set and b where it is not.
func Select[F Lanes](m Mask, a, b F) F {
	var out F
	for i := 0; i < len(out); i++ {
		if m.Has(i) {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// SelectMin returns the index of the smallest lane among those set in
// the mask, preferring the lowest index on ties. The mask must not be
// empty.
func SelectMin[F Lanes](m Mask, v F) int {
	idx := -1
	for i := 0; i < len(v); i++ {
		if !m.Has(i) {
			continue
		}
		if idx < 0 || v[i] < v[idx] {
			idx = i
		}
	}
	return idx
}
