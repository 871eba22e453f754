package geometry

import (
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/simd"
	"github.com/marcioAlmada/embree/types"
)

// MotionTriangle is one input triangle with linear per-vertex motion.
// The vertices V0..V2 hold the shape at time 0 and the deltas DV0..DV2
// carry each vertex to its position at time 1.
type MotionTriangle struct {
	V0, V1, V2    types.Vec3
	DV0, DV1, DV2 types.Vec3
	GeomID        uint32
	PrimID        uint32
}

// MotionTriangle4 holds up to BatchWidth motion triangles in
// structure-of-arrays form. Edges and normals cannot be precomputed
// here: the intersectors interpolate the vertices at the ray time and
// derive them per test.
type MotionTriangle4 struct {
	V0, V1, V2    simd.Vec3x4
	DV0, DV1, DV2 simd.Vec3x4
	GeomID        [BatchWidth]uint32
	PrimID        [BatchWidth]uint32
}

// PackMotionTriangle4 packs a batch from at most BatchWidth motion
// triangles.
func PackMotionTriangle4(tris []MotionTriangle) MotionTriangle4 {
	var out MotionTriangle4
	for i := 0; i < BatchWidth; i++ {
		if i >= len(tris) {
			out.GeomID[i] = ray.InvalidID
			out.PrimID[i] = ray.InvalidID
			continue
		}
		setLane(&out.V0, i, tris[i].V0)
		setLane(&out.V1, i, tris[i].V1)
		setLane(&out.V2, i, tris[i].V2)
		setLane(&out.DV0, i, tris[i].DV0)
		setLane(&out.DV1, i, tris[i].DV1)
		setLane(&out.DV2, i, tris[i].DV2)
		out.GeomID[i] = tris[i].GeomID
		out.PrimID[i] = tris[i].PrimID
	}
	return out
}

// Valid reports whether slot i holds a triangle.
func (t *MotionTriangle4) Valid(i int) bool {
	return t.GeomID[i] != ray.InvalidID
}

// Size counts the occupied slots.
func (t *MotionTriangle4) Size() int {
	n := 0
	for n < BatchWidth && t.Valid(n) {
		n++
	}
	return n
}
