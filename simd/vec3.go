package simd

// Vec3 packs one 3 component vector per lane in structure-of-arrays
// form.
type Vec3[F Lanes] struct {
	X, Y, Z F
}

type Vec3x4 = Vec3[Float4]
type Vec3x8 = Vec3[Float8]

// Broadcast a scalar vector to all lanes.
func Vec3Splat[F Lanes](x, y, z float32) Vec3[F] {
	return Vec3[F]{X: Splat[F](x), Y: Splat[F](y), Z: Splat[F](z)}
}

// Add a vector batch.
func (v Vec3[F]) Add(v2 Vec3[F]) Vec3[F] {
	return Vec3[F]{X: Add(v.X, v2.X), Y: Add(v.Y, v2.Y), Z: Add(v.Z, v2.Z)}
}

// Subtract a vector batch.
func (v Vec3[F]) Sub(v2 Vec3[F]) Vec3[F] {
	return Vec3[F]{X: Sub(v.X, v2.X), Y: Sub(v.Y, v2.Y), Z: Sub(v.Z, v2.Z)}
}

// Scale each lane vector by the matching lane of t.
func (v Vec3[F]) Mul(t F) Vec3[F] {
	return Vec3[F]{X: Mul(v.X, t), Y: Mul(v.Y, t), Z: Mul(v.Z, t)}
}

// Calculate the lane-wise dot product of 2 vector batches.
func (v Vec3[F]) Dot(v2 Vec3[F]) F {
	return Madd(v.X, v2.X, Madd(v.Y, v2.Y, Mul(v.Z, v2.Z)))
}

// Calculate the lane-wise cross product of 2 vector batches.
func (v Vec3[F]) Cross(v2 Vec3[F]) Vec3[F] {
	return Vec3[F]{
		X: Sub(Mul(v.Y, v2.Z), Mul(v.Z, v2.Y)),
		Y: Sub(Mul(v.Z, v2.X), Mul(v.X, v2.Z)),
		Z: Sub(Mul(v.X, v2.Y), Mul(v.Y, v2.X)),
	}
}

// Lane extracts the vector held in lane i.
func (v Vec3[F]) Lane(i int) (x, y, z float32) {
	return v.X[i], v.Y[i], v.Z[i]
}
