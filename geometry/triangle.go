package geometry

import (
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/simd"
	"github.com/marcioAlmada/embree/types"
)

// BatchWidth is the number of triangles tested together by the
// intersectors.
const BatchWidth = 4

// Triangle is one input triangle with its geometry binding.
type Triangle struct {
	V0, V1, V2 types.Vec3
	GeomID     uint32
	PrimID     uint32
}

// Triangle4 holds up to BatchWidth precomputed triangles in
// structure-of-arrays form: base vertex v0, the edges e1 = v0-v1 and
// e2 = v2-v0, and the geometry normal Ng = cross(e1, e2). Unused
// slots carry zeroed vertices and invalid IDs; the zero triangle can
// never pass the intersection tests.
type Triangle4 struct {
	V0     simd.Vec3x4
	E1     simd.Vec3x4
	E2     simd.Vec3x4
	Ng     simd.Vec3x4
	GeomID [BatchWidth]uint32
	PrimID [BatchWidth]uint32
}

// PackTriangle4 precomputes a batch from at most BatchWidth
// triangles.
func PackTriangle4(tris []Triangle) Triangle4 {
	var out Triangle4
	for i := 0; i < BatchWidth; i++ {
		if i >= len(tris) {
			out.GeomID[i] = ray.InvalidID
			out.PrimID[i] = ray.InvalidID
			continue
		}
		e1 := tris[i].V0.Sub(tris[i].V1)
		e2 := tris[i].V2.Sub(tris[i].V0)
		ng := e1.Cross(e2)
		setLane(&out.V0, i, tris[i].V0)
		setLane(&out.E1, i, e1)
		setLane(&out.E2, i, e2)
		setLane(&out.Ng, i, ng)
		out.GeomID[i] = tris[i].GeomID
		out.PrimID[i] = tris[i].PrimID
	}
	return out
}

// Valid reports whether slot i holds a triangle.
func (t *Triangle4) Valid(i int) bool {
	return t.GeomID[i] != ray.InvalidID
}

// Size counts the occupied slots. Batches are filled front to back,
// so the first invalid slot ends the batch.
func (t *Triangle4) Size() int {
	n := 0
	for n < BatchWidth && t.Valid(n) {
		n++
	}
	return n
}

func setLane(v *simd.Vec3x4, i int, p types.Vec3) {
	v.X[i], v.Y[i], v.Z[i] = p[0], p[1], p[2]
}
