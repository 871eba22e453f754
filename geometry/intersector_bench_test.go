package geometry

import (
	"math/rand"
	"testing"

	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/simd"
	"github.com/marcioAlmada/embree/types"
)

var benchHit bool

// benchTriangles builds a deterministic soup of small triangles in
// front of the benchmark rays.
func benchTriangles(n int) []Triangle {
	rng := rand.New(rand.NewSource(1))
	offset := func() types.Vec3 {
		return types.XYZ(rng.Float32()-0.5, rng.Float32()-0.5, rng.Float32()-0.5)
	}
	tris := make([]Triangle, n)
	for i := range tris {
		c := types.XYZ(4*rng.Float32()-2, 4*rng.Float32()-2, -1-3*rng.Float32())
		tris[i] = Triangle{
			V0:     c,
			V1:     c.Add(offset()),
			V2:     c.Add(offset()),
			GeomID: 1,
			PrimID: uint32(i),
		}
	}
	return tris
}

func benchBatches(n int) []Triangle4 {
	tris := benchTriangles(n * BatchWidth)
	batches := make([]Triangle4, n)
	for i := range batches {
		batches[i] = PackTriangle4(tris[i*BatchWidth : (i+1)*BatchWidth])
	}
	return batches
}

func BenchmarkIntersect1(b *testing.B)      { benchIntersect1(b, types.XYZ(0, 0, -1)) }
func BenchmarkIntersect1Miss(b *testing.B)  { benchIntersect1(b, types.XYZ(0, 0, 1)) }
func BenchmarkOccluded1(b *testing.B)       { benchOccluded1(b, types.XYZ(0, 0, -1)) }
func BenchmarkIntersectPacket(b *testing.B) { benchPacket(b, false) }
func BenchmarkOccludedPacket(b *testing.B)  { benchPacket(b, true) }

func benchIntersect1(b *testing.B, dir types.Vec3) {
	in := NewIntersector4(testScene{}, Config{})
	batches := benchBatches(64)
	base := ray.New(types.XYZ(0, 0, 1), dir)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := base
		pre := Precompute(&r)
		for j := range batches {
			in.Intersect(pre, &r, &batches[j])
		}
		benchHit = r.HasHit()
	}
}

func benchOccluded1(b *testing.B, dir types.Vec3) {
	in := NewIntersector4(testScene{}, Config{})
	batches := benchBatches(64)
	base := ray.New(types.XYZ(0, 0, 1), dir)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := base
		pre := Precompute(&r)
		blocked := false
		for j := range batches {
			if in.Occluded(pre, &r, &batches[j]) {
				blocked = true
				break
			}
		}
		benchHit = blocked
	}
}

func benchPacket(b *testing.B, occluded bool) {
	in := NewIntersector4(testScene{}, Config{})
	batches := benchBatches(64)

	base := ray.NewPacket()
	for k := 0; k < ray.PacketWidth; k++ {
		dx := float32(k%4)*0.2 - 0.3
		dy := float32(k/4)*0.2 - 0.1
		base.SetRay(k, ray.New(types.XYZ(0, 0, 1), types.XYZ(dx, dy, -1)))
	}
	valid := simd.LaneMask(ray.PacketWidth)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := base
		pre := PrecomputePacket(valid, &p)
		if occluded {
			alive := valid
			for j := range batches {
				alive &^= in.OccludedPacket(alive, pre, &p, &batches[j])
				if alive.None() {
					break
				}
			}
			benchHit = alive.None()
		} else {
			for j := range batches {
				in.IntersectPacket(valid, pre, &p, &batches[j])
			}
			benchHit = p.HasHit(0)
		}
	}
}

func BenchmarkMotionIntersect1(b *testing.B) {
	rng := rand.New(rand.NewSource(2))
	tris := benchTriangles(64 * BatchWidth)
	batches := make([]MotionTriangle4, 64)
	for i := range batches {
		group := make([]MotionTriangle, BatchWidth)
		for j := range group {
			t := tris[i*BatchWidth+j]
			dv := types.XYZ(rng.Float32()-0.5, rng.Float32()-0.5, rng.Float32()-0.5)
			group[j] = MotionTriangle{
				V0: t.V0, V1: t.V1, V2: t.V2,
				DV0: dv, DV1: dv, DV2: dv,
				GeomID: t.GeomID, PrimID: t.PrimID,
			}
		}
		batches[i] = PackMotionTriangle4(group)
	}

	in := NewMotionIntersector4(testScene{}, Config{})
	base := ray.New(types.XYZ(0, 0, 1), types.XYZ(0, 0, -1))
	base.Time = 0.5

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := base
		pre := Precompute(&r)
		for j := range batches {
			in.Intersect(pre, &r, &batches[j])
		}
		benchHit = r.HasHit()
	}
}
