package geometry

import (
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/simd"
	"github.com/marcioAlmada/embree/types"
)

// uvwt carries the unnormalized hit terms out of a kernel. Division
// by the denominator is deferred to finalize so rejected batches
// never pay for it.
type uvwt[F simd.Lanes] struct {
	u, v, t, absDen F
	ng              simd.Vec3[F]
}

// finalize resolves the normalized per-lane barycentrics and hit
// distances.
func (h *uvwt[F]) finalize() (u, v, t F) {
	rcpAbsDen := simd.Rcp(h.absDen)
	return simd.Mul(h.u, rcpAbsDen), simd.Mul(h.v, rcpAbsDen), simd.Mul(h.t, rcpAbsDen)
}

// intersectLanes runs the bundled single-ray kernel: one ray, splat
// across the lanes, against one triangle per lane.
func intersectLanes[F simd.Lanes](o, d simd.Vec3[F], tnear, tfar F, v0, e1, e2, ng simd.Vec3[F], cull bool) (uvwt[F], simd.Mask) {
	// calculate denominator
	c := v0.Sub(o)
	r := d.Cross(c)
	den := ng.Dot(d)
	absDen := simd.Abs(den)
	sgnDen := simd.SignMask(den)

	// perform edge tests
	u := simd.Xor(r.Dot(e2), sgnDen)
	v := simd.Xor(r.Dot(e1), sgnDen)

	// perform backface culling, or reject degenerate lanes
	var valid simd.Mask
	if cull {
		valid = simd.GreaterThan(den, simd.Zero[F]())
	} else {
		valid = simd.NotEqual(den, simd.Zero[F]())
	}
	valid &= simd.GreaterEqual(u, simd.Zero[F]()) & simd.GreaterEqual(v, simd.Zero[F]()) & simd.LessEqual(simd.Add(u, v), absDen)
	if valid.None() {
		return uvwt[F]{}, 0
	}

	// perform depth test
	t := simd.Xor(ng.Dot(c), sgnDen)
	valid &= simd.GreaterThan(t, simd.Mul(absDen, tnear)) & simd.LessThan(t, simd.Mul(absDen, tfar))
	if valid.None() {
		return uvwt[F]{}, 0
	}

	return uvwt[F]{u: u, v: v, t: t, absDen: absDen, ng: ng}, valid
}

// intersectKLanes runs the packet kernel for the active lanes against
// one broadcast triangle, rejecting lanes incrementally so packets
// that miss early skip the remaining algebra.
func intersectKLanes[F simd.Lanes](valid0 simd.Mask, o, d simd.Vec3[F], tnear, tfar F, v0, e1, e2, ng simd.Vec3[F], cull bool) (uvwt[F], simd.Mask) {
	// calculate denominator
	valid := valid0
	c := v0.Sub(o)
	r := d.Cross(c)
	den := ng.Dot(d)
	absDen := simd.Abs(den)
	sgnDen := simd.SignMask(den)

	// test against edge v2 v0
	u := simd.Xor(r.Dot(e2), sgnDen)
	valid &= simd.GreaterEqual(u, simd.Zero[F]())
	if valid.None() {
		return uvwt[F]{}, 0
	}

	// test against edge v0 v1
	v := simd.Xor(r.Dot(e1), sgnDen)
	valid &= simd.GreaterEqual(v, simd.Zero[F]())
	if valid.None() {
		return uvwt[F]{}, 0
	}

	// test against edge v1 v2
	w := simd.Sub(simd.Sub(absDen, u), v)
	valid &= simd.GreaterEqual(w, simd.Zero[F]())
	if valid.None() {
		return uvwt[F]{}, 0
	}

	// perform depth test, strict on both ends so a committed hit can
	// never be re-accepted at the same distance
	t := simd.Xor(ng.Dot(c), sgnDen)
	valid &= simd.GreaterThan(t, simd.Mul(absDen, tnear)) & simd.GreaterThan(simd.Mul(absDen, tfar), t)
	if valid.None() {
		return uvwt[F]{}, 0
	}

	// perform backface culling, or reject degenerate lanes
	if cull {
		valid &= simd.GreaterThan(den, simd.Zero[F]())
	} else {
		valid &= simd.NotEqual(den, simd.Zero[F]())
	}
	if valid.None() {
		return uvwt[F]{}, 0
	}

	return uvwt[F]{u: u, v: v, t: t, absDen: absDen, ng: ng}, valid
}

// occludedLanes runs the occlusion kernel variant for one extracted
// ray: edge tests bundled through the third barycentric, the depth
// test, then the facing test.
func occludedLanes[F simd.Lanes](o, d simd.Vec3[F], tnear, tfar F, v0, e1, e2, ng simd.Vec3[F], cull bool) (uvwt[F], simd.Mask) {
	// calculate denominator
	c := v0.Sub(o)
	r := d.Cross(c)
	den := ng.Dot(d)
	absDen := simd.Abs(den)
	sgnDen := simd.SignMask(den)

	// perform edge tests
	u := simd.Xor(r.Dot(e2), sgnDen)
	v := simd.Xor(r.Dot(e1), sgnDen)
	w := simd.Sub(simd.Sub(absDen, u), v)
	valid := simd.GreaterEqual(u, simd.Zero[F]()) & simd.GreaterEqual(v, simd.Zero[F]()) & simd.GreaterEqual(w, simd.Zero[F]())
	if valid.None() {
		return uvwt[F]{}, 0
	}

	// perform depth test
	t := simd.Xor(ng.Dot(c), sgnDen)
	valid &= simd.GreaterThan(t, simd.Mul(absDen, tnear)) & simd.GreaterThan(simd.Mul(absDen, tfar), t)
	if valid.None() {
		return uvwt[F]{}, 0
	}

	// perform backface culling, or reject degenerate lanes
	if cull {
		valid &= simd.GreaterThan(den, simd.Zero[F]())
	} else {
		valid &= simd.NotEqual(den, simd.Zero[F]())
	}
	if valid.None() {
		return uvwt[F]{}, 0
	}

	return uvwt[F]{u: u, v: v, t: t, absDen: absDen, ng: ng}, valid
}

// triangleEdges derives the edge form consumed by the kernels from
// interpolated vertices.
func triangleEdges[F simd.Lanes](v0, v1, v2 simd.Vec3[F]) (e1, e2, ng simd.Vec3[F]) {
	e1 = v0.Sub(v1)
	e2 = v2.Sub(v0)
	ng = e1.Cross(e2)
	return e1, e2, ng
}

func splatVec3[F simd.Lanes](v types.Vec3) simd.Vec3[F] {
	return simd.Vec3Splat[F](v[0], v[1], v[2])
}

// broadcastLane splats slot i of a batch field across packet lanes.
func broadcastLane[F simd.Lanes](v simd.Vec3x4, i int) simd.Vec3[F] {
	return simd.Vec3Splat[F](v.X[i], v.Y[i], v.Z[i])
}

// Intersector4 tests single rays, 8-wide ray packets and individual
// packet lanes against 4-wide triangle batches.
type Intersector4 struct {
	epilogs
}

// NewIntersector4 creates an intersector resolving geometry state
// through scene.
func NewIntersector4(scene Scene, cfg Config) *Intersector4 {
	return &Intersector4{epilogs{scene: scene, cfg: cfg}}
}

// Intersect tests r against the batch and commits the nearest
// accepted hit, tightening r.TFar. Reports whether a hit was
// committed.
func (in *Intersector4) Intersect(pre Precalculations, r *ray.Ray, tri *Triangle4) bool {
	o := splatVec3[simd.Float4](r.Org)
	d := splatVec3[simd.Float4](r.Dir)
	tnear := simd.Splat[simd.Float4](r.TNear)
	tfar := simd.Splat[simd.Float4](r.TFar)
	hit, valid := intersectLanes(o, d, tnear, tfar, tri.V0, tri.E1, tri.E2, tri.Ng, in.cfg.BackfaceCulling)
	if valid.None() {
		return false
	}
	return in.intersect1Epilog(r, &hit, valid, &tri.GeomID, &tri.PrimID)
}

// Occluded tests whether any triangle in the batch occludes r. On
// occlusion the ray is marked by setting its GeomID to 0.
func (in *Intersector4) Occluded(pre Precalculations, r *ray.Ray, tri *Triangle4) bool {
	o := splatVec3[simd.Float4](r.Org)
	d := splatVec3[simd.Float4](r.Dir)
	tnear := simd.Splat[simd.Float4](r.TNear)
	tfar := simd.Splat[simd.Float4](r.TFar)
	hit, valid := intersectLanes(o, d, tnear, tfar, tri.V0, tri.E1, tri.E2, tri.Ng, in.cfg.BackfaceCulling)
	if valid.None() {
		return false
	}
	if !in.occluded1Epilog(r, &hit, valid, &tri.GeomID, &tri.PrimID) {
		return false
	}
	r.GeomID = 0
	return true
}

// IntersectPacket tests the active lanes of p against every triangle
// in the batch, committing per-lane nearest hits.
func (in *Intersector4) IntersectPacket(valid simd.Mask, pre Precalculations, p *ray.Packet, tri *Triangle4) {
	for i := 0; i < BatchWidth; i++ {
		if !tri.Valid(i) {
			break
		}
		v0 := broadcastLane[simd.Float8](tri.V0, i)
		e1 := broadcastLane[simd.Float8](tri.E1, i)
		e2 := broadcastLane[simd.Float8](tri.E2, i)
		ng := broadcastLane[simd.Float8](tri.Ng, i)
		hit, validHit := intersectKLanes(valid, p.Org, p.Dir, p.TNear, p.TFar, v0, e1, e2, ng, in.cfg.BackfaceCulling)
		if validHit.None() {
			continue
		}
		in.intersectKEpilog(p, &hit, validHit, tri.GeomID[i], tri.PrimID[i])
	}
}

// OccludedPacket tests the active lanes of p for occlusion by the
// batch. Occluded lanes get their GeomID set to 0; the returned mask
// holds exactly those lanes.
func (in *Intersector4) OccludedPacket(valid simd.Mask, pre Precalculations, p *ray.Packet, tri *Triangle4) simd.Mask {
	alive := valid
	for i := 0; i < BatchWidth; i++ {
		if !tri.Valid(i) {
			break
		}
		v0 := broadcastLane[simd.Float8](tri.V0, i)
		e1 := broadcastLane[simd.Float8](tri.E1, i)
		e2 := broadcastLane[simd.Float8](tri.E2, i)
		ng := broadcastLane[simd.Float8](tri.Ng, i)
		hit, validHit := intersectKLanes(alive, p.Org, p.Dir, p.TNear, p.TFar, v0, e1, e2, ng, in.cfg.BackfaceCulling)
		if validHit.Any() {
			in.occludedKEpilog(&alive, p, &hit, validHit, tri.GeomID[i], tri.PrimID[i])
		}
		if alive.None() {
			break
		}
	}
	return valid &^ alive
}

// IntersectLane tests the single packet lane k against the batch.
func (in *Intersector4) IntersectLane(pre Precalculations, p *ray.Packet, k int, tri *Triangle4) {
	o := simd.Vec3Splat[simd.Float4](p.Org.Lane(k))
	d := simd.Vec3Splat[simd.Float4](p.Dir.Lane(k))
	tnear := simd.Splat[simd.Float4](p.TNear[k])
	tfar := simd.Splat[simd.Float4](p.TFar[k])
	hit, valid := intersectLanes(o, d, tnear, tfar, tri.V0, tri.E1, tri.E2, tri.Ng, in.cfg.BackfaceCulling)
	if valid.None() {
		return
	}
	in.intersect1KEpilog(p, k, &hit, valid, &tri.GeomID, &tri.PrimID)
}

// OccludedLane tests packet lane k for occlusion by the batch,
// marking the lane on occlusion.
func (in *Intersector4) OccludedLane(pre Precalculations, p *ray.Packet, k int, tri *Triangle4) bool {
	o := simd.Vec3Splat[simd.Float4](p.Org.Lane(k))
	d := simd.Vec3Splat[simd.Float4](p.Dir.Lane(k))
	tnear := simd.Splat[simd.Float4](p.TNear[k])
	tfar := simd.Splat[simd.Float4](p.TFar[k])
	hit, valid := occludedLanes(o, d, tnear, tfar, tri.V0, tri.E1, tri.E2, tri.Ng, in.cfg.BackfaceCulling)
	if valid.None() {
		return false
	}
	if !in.occluded1KEpilog(p, k, &hit, valid, &tri.GeomID, &tri.PrimID) {
		return false
	}
	p.GeomID[k] = 0
	return true
}

// MotionIntersector4 tests rays against motion triangle batches. The
// vertices are interpolated at the ray time and the edge setup runs
// per test; candidate commit is shared with Intersector4.
type MotionIntersector4 struct {
	epilogs
}

// NewMotionIntersector4 creates a motion blur intersector resolving
// geometry state through scene.
func NewMotionIntersector4(scene Scene, cfg Config) *MotionIntersector4 {
	return &MotionIntersector4{epilogs{scene: scene, cfg: cfg}}
}

// Intersect tests r against the batch at r.Time and commits the
// nearest accepted hit.
func (in *MotionIntersector4) Intersect(pre Precalculations, r *ray.Ray, tri *MotionTriangle4) bool {
	time := simd.Splat[simd.Float4](r.Time)
	v0 := tri.V0.Add(tri.DV0.Mul(time))
	v1 := tri.V1.Add(tri.DV1.Mul(time))
	v2 := tri.V2.Add(tri.DV2.Mul(time))
	e1, e2, ng := triangleEdges(v0, v1, v2)
	o := splatVec3[simd.Float4](r.Org)
	d := splatVec3[simd.Float4](r.Dir)
	tnear := simd.Splat[simd.Float4](r.TNear)
	tfar := simd.Splat[simd.Float4](r.TFar)
	hit, valid := intersectLanes(o, d, tnear, tfar, v0, e1, e2, ng, in.cfg.BackfaceCulling)
	if valid.None() {
		return false
	}
	return in.intersect1Epilog(r, &hit, valid, &tri.GeomID, &tri.PrimID)
}

// Occluded tests whether any triangle in the batch occludes r at
// r.Time.
func (in *MotionIntersector4) Occluded(pre Precalculations, r *ray.Ray, tri *MotionTriangle4) bool {
	time := simd.Splat[simd.Float4](r.Time)
	v0 := tri.V0.Add(tri.DV0.Mul(time))
	v1 := tri.V1.Add(tri.DV1.Mul(time))
	v2 := tri.V2.Add(tri.DV2.Mul(time))
	e1, e2, ng := triangleEdges(v0, v1, v2)
	o := splatVec3[simd.Float4](r.Org)
	d := splatVec3[simd.Float4](r.Dir)
	tnear := simd.Splat[simd.Float4](r.TNear)
	tfar := simd.Splat[simd.Float4](r.TFar)
	hit, valid := intersectLanes(o, d, tnear, tfar, v0, e1, e2, ng, in.cfg.BackfaceCulling)
	if valid.None() {
		return false
	}
	if !in.occluded1Epilog(r, &hit, valid, &tri.GeomID, &tri.PrimID) {
		return false
	}
	r.GeomID = 0
	return true
}

// IntersectPacket tests the active lanes of p against the batch, each
// lane at its own time.
func (in *MotionIntersector4) IntersectPacket(valid simd.Mask, pre Precalculations, p *ray.Packet, tri *MotionTriangle4) {
	for i := 0; i < BatchWidth; i++ {
		if !tri.Valid(i) {
			break
		}
		v0 := broadcastLane[simd.Float8](tri.V0, i).Add(broadcastLane[simd.Float8](tri.DV0, i).Mul(p.Time))
		v1 := broadcastLane[simd.Float8](tri.V1, i).Add(broadcastLane[simd.Float8](tri.DV1, i).Mul(p.Time))
		v2 := broadcastLane[simd.Float8](tri.V2, i).Add(broadcastLane[simd.Float8](tri.DV2, i).Mul(p.Time))
		e1, e2, ng := triangleEdges(v0, v1, v2)
		hit, validHit := intersectKLanes(valid, p.Org, p.Dir, p.TNear, p.TFar, v0, e1, e2, ng, in.cfg.BackfaceCulling)
		if validHit.None() {
			continue
		}
		in.intersectKEpilog(p, &hit, validHit, tri.GeomID[i], tri.PrimID[i])
	}
}

// OccludedPacket tests the active lanes of p for occlusion by the
// batch, each lane at its own time.
func (in *MotionIntersector4) OccludedPacket(valid simd.Mask, pre Precalculations, p *ray.Packet, tri *MotionTriangle4) simd.Mask {
	alive := valid
	for i := 0; i < BatchWidth; i++ {
		if !tri.Valid(i) {
			break
		}
		v0 := broadcastLane[simd.Float8](tri.V0, i).Add(broadcastLane[simd.Float8](tri.DV0, i).Mul(p.Time))
		v1 := broadcastLane[simd.Float8](tri.V1, i).Add(broadcastLane[simd.Float8](tri.DV1, i).Mul(p.Time))
		v2 := broadcastLane[simd.Float8](tri.V2, i).Add(broadcastLane[simd.Float8](tri.DV2, i).Mul(p.Time))
		e1, e2, ng := triangleEdges(v0, v1, v2)
		hit, validHit := intersectKLanes(alive, p.Org, p.Dir, p.TNear, p.TFar, v0, e1, e2, ng, in.cfg.BackfaceCulling)
		if validHit.Any() {
			in.occludedKEpilog(&alive, p, &hit, validHit, tri.GeomID[i], tri.PrimID[i])
		}
		if alive.None() {
			break
		}
	}
	return valid &^ alive
}

// IntersectLane tests packet lane k against the batch at the lane
// time.
func (in *MotionIntersector4) IntersectLane(pre Precalculations, p *ray.Packet, k int, tri *MotionTriangle4) {
	time := simd.Splat[simd.Float4](p.Time[k])
	v0 := tri.V0.Add(tri.DV0.Mul(time))
	v1 := tri.V1.Add(tri.DV1.Mul(time))
	v2 := tri.V2.Add(tri.DV2.Mul(time))
	e1, e2, ng := triangleEdges(v0, v1, v2)
	o := simd.Vec3Splat[simd.Float4](p.Org.Lane(k))
	d := simd.Vec3Splat[simd.Float4](p.Dir.Lane(k))
	tnear := simd.Splat[simd.Float4](p.TNear[k])
	tfar := simd.Splat[simd.Float4](p.TFar[k])
	hit, valid := intersectLanes(o, d, tnear, tfar, v0, e1, e2, ng, in.cfg.BackfaceCulling)
	if valid.None() {
		return
	}
	in.intersect1KEpilog(p, k, &hit, valid, &tri.GeomID, &tri.PrimID)
}

// OccludedLane tests packet lane k for occlusion by the batch at the
// lane time, marking the lane on occlusion.
func (in *MotionIntersector4) OccludedLane(pre Precalculations, p *ray.Packet, k int, tri *MotionTriangle4) bool {
	time := simd.Splat[simd.Float4](p.Time[k])
	v0 := tri.V0.Add(tri.DV0.Mul(time))
	v1 := tri.V1.Add(tri.DV1.Mul(time))
	v2 := tri.V2.Add(tri.DV2.Mul(time))
	e1, e2, ng := triangleEdges(v0, v1, v2)
	o := simd.Vec3Splat[simd.Float4](p.Org.Lane(k))
	d := simd.Vec3Splat[simd.Float4](p.Dir.Lane(k))
	tnear := simd.Splat[simd.Float4](p.TNear[k])
	tfar := simd.Splat[simd.Float4](p.TFar[k])
	hit, valid := occludedLanes(o, d, tnear, tfar, v0, e1, e2, ng, in.cfg.BackfaceCulling)
	if valid.None() {
		return false
	}
	if !in.occluded1KEpilog(p, k, &hit, valid, &tri.GeomID, &tri.PrimID) {
		return false
	}
	p.GeomID[k] = 0
	return true
}
