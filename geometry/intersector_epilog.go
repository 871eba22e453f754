package geometry

import (
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/simd"
	"github.com/marcioAlmada/embree/types"
)

// epilogs holds the state shared by the candidate commit protocols:
// the geometry lookup, the feature flags and the optional instance
// remap table applied to committed single-ray hits.
type epilogs struct {
	scene   Scene
	cfg     Config
	instIDs []uint32
}

// SetInstanceIDs installs a table remapping geometry IDs on committed
// single-ray hits, as used during instanced traversal. Geometry
// lookups keep using the raw ID, and IDs the table does not cover
// commit unchanged.
func (e *epilogs) SetInstanceIDs(table []uint32) {
	e.instIDs = table
}

func (e *epilogs) instID(geomID uint32) uint32 {
	if int(geomID) < len(e.instIDs) {
		return e.instIDs[geomID]
	}
	return geomID
}

func laneVec3[F simd.Lanes](v simd.Vec3[F], i int) types.Vec3 {
	return types.Vec3{v.X[i], v.Y[i], v.Z[i]}
}

// storeLaneRay writes the ray fields of a filtered lane view back into
// the packet. Filters may mutate them through the scalar view, accept
// or reject; the interval end and the hit attributes stay owned by the
// commit code.
func storeLaneRay(p *ray.Packet, k int, r *ray.Ray) {
	p.Org.X[k], p.Org.Y[k], p.Org.Z[k] = r.Org[0], r.Org[1], r.Org[2]
	p.Dir.X[k], p.Dir.Y[k], p.Dir.Z[k] = r.Dir[0], r.Dir[1], r.Dir[2]
	p.TNear[k] = r.TNear
	p.Time[k] = r.Time
	p.Mask[k] = r.Mask
}

// intersect1Epilog runs the single-ray candidate search: nearest
// surviving lane first, then the geometry mask test and the
// intersection filter, falling back to the next nearest lane whenever
// one rejects.
func (e *epilogs) intersect1Epilog(r *ray.Ray, hit *uvwt[simd.Float4], valid simd.Mask, geomIDs, primIDs *[BatchWidth]uint32) bool {
	u, v, t := hit.finalize()
	i := simd.SelectMin(valid, t)
	geomID := geomIDs[i]

	if e.cfg.RayMask || e.cfg.Filters {
		for {
			g := e.scene.Geometry(geomID)
			reject := false
			if e.cfg.RayMask && g.Mask&r.Mask == 0 {
				reject = true
			} else if e.cfg.Filters && g.IntersectionFilter != nil {
				cand := Hit{
					T:      t[i],
					U:      u[i],
					V:      v[i],
					Ng:     laneVec3(hit.ng, i),
					GeomID: e.instID(geomID),
					PrimID: primIDs[i],
				}
				reject = !g.IntersectionFilter(r, &cand)
			}
			if !reject {
				break
			}
			valid = valid.Clear(i)
			if valid.None() {
				return false
			}
			i = simd.SelectMin(valid, t)
			geomID = geomIDs[i]
		}
	}

	// update hit information
	r.U = u[i]
	r.V = v[i]
	r.TFar = t[i]
	r.Ng = laneVec3(hit.ng, i)
	r.GeomID = e.instID(geomID)
	r.PrimID = primIDs[i]
	return true
}

// occluded1Epilog checks whether any surviving lane passes the mask
// and occlusion filter tests. Hit attributes are only resolved when a
// filter actually runs.
func (e *epilogs) occluded1Epilog(r *ray.Ray, hit *uvwt[simd.Float4], valid simd.Mask, geomIDs, primIDs *[BatchWidth]uint32) bool {
	if !e.cfg.RayMask && !e.cfg.Filters {
		return true
	}

	var u, v, t simd.Float4
	resolved := false
	for m := valid; m.Any(); {
		i := m.First()
		g := e.scene.Geometry(geomIDs[i])
		if e.cfg.RayMask && g.Mask&r.Mask == 0 {
			m = m.Clear(i)
			continue
		}
		if e.cfg.Filters && g.OcclusionFilter != nil {
			if !resolved {
				u, v, t = hit.finalize()
				resolved = true
			}
			cand := Hit{
				T:      t[i],
				U:      u[i],
				V:      v[i],
				Ng:     laneVec3(hit.ng, i),
				GeomID: e.instID(geomIDs[i]),
				PrimID: primIDs[i],
			}
			if !g.OcclusionFilter(r, &cand) {
				m = m.Clear(i)
				continue
			}
		}
		return true
	}
	return false
}

// intersect1KEpilog runs the single-ray candidate search for packet
// lane k and commits into that lane.
func (e *epilogs) intersect1KEpilog(p *ray.Packet, k int, hit *uvwt[simd.Float4], valid simd.Mask, geomIDs, primIDs *[BatchWidth]uint32) {
	u, v, t := hit.finalize()
	i := simd.SelectMin(valid, t)
	geomID := geomIDs[i]

	if e.cfg.RayMask || e.cfg.Filters {
		for {
			g := e.scene.Geometry(geomID)
			reject := false
			if e.cfg.RayMask && g.Mask&p.Mask[k] == 0 {
				reject = true
			} else if e.cfg.Filters && g.IntersectionFilter != nil {
				lane := p.Lane(k)
				cand := Hit{
					T:      t[i],
					U:      u[i],
					V:      v[i],
					Ng:     laneVec3(hit.ng, i),
					GeomID: geomID,
					PrimID: primIDs[i],
				}
				reject = !g.IntersectionFilter(&lane, &cand)
				storeLaneRay(p, k, &lane)
			}
			if !reject {
				break
			}
			valid = valid.Clear(i)
			if valid.None() {
				return
			}
			i = simd.SelectMin(valid, t)
			geomID = geomIDs[i]
		}
	}

	// update hit information
	p.U[k] = u[i]
	p.V[k] = v[i]
	p.TFar[k] = t[i]
	p.Ng.X[k] = hit.ng.X[i]
	p.Ng.Y[k] = hit.ng.Y[i]
	p.Ng.Z[k] = hit.ng.Z[i]
	p.GeomID[k] = geomID
	p.PrimID[k] = primIDs[i]
}

// occluded1KEpilog checks packet lane k for a surviving occluder.
func (e *epilogs) occluded1KEpilog(p *ray.Packet, k int, hit *uvwt[simd.Float4], valid simd.Mask, geomIDs, primIDs *[BatchWidth]uint32) bool {
	if !e.cfg.RayMask && !e.cfg.Filters {
		return true
	}

	var u, v, t simd.Float4
	resolved := false
	for m := valid; m.Any(); {
		i := m.First()
		g := e.scene.Geometry(geomIDs[i])
		if e.cfg.RayMask && g.Mask&p.Mask[k] == 0 {
			m = m.Clear(i)
			continue
		}
		if e.cfg.Filters && g.OcclusionFilter != nil {
			if !resolved {
				u, v, t = hit.finalize()
				resolved = true
			}
			lane := p.Lane(k)
			cand := Hit{
				T:      t[i],
				U:      u[i],
				V:      v[i],
				Ng:     laneVec3(hit.ng, i),
				GeomID: geomIDs[i],
				PrimID: primIDs[i],
			}
			accept := g.OcclusionFilter(&lane, &cand)
			storeLaneRay(p, k, &lane)
			if !accept {
				m = m.Clear(i)
				continue
			}
		}
		return true
	}
	return false
}

// intersectKEpilog commits one broadcast triangle into every accepted
// packet lane at once.
func (e *epilogs) intersectKEpilog(p *ray.Packet, hit *uvwt[simd.Float8], valid simd.Mask, geomID, primID uint32) {
	u, v, t := hit.finalize()

	if e.cfg.RayMask || e.cfg.Filters {
		g := e.scene.Geometry(geomID)
		if e.cfg.RayMask {
			for k := 0; k < ray.PacketWidth; k++ {
				if valid.Has(k) && g.Mask&p.Mask[k] == 0 {
					valid = valid.Clear(k)
				}
			}
			if valid.None() {
				return
			}
		}
		if e.cfg.Filters && g.IntersectionFilter != nil {
			for k := 0; k < ray.PacketWidth; k++ {
				if !valid.Has(k) {
					continue
				}
				lane := p.Lane(k)
				cand := Hit{
					T:      t[k],
					U:      u[k],
					V:      v[k],
					Ng:     laneVec3(hit.ng, k),
					GeomID: geomID,
					PrimID: primID,
				}
				accept := g.IntersectionFilter(&lane, &cand)
				storeLaneRay(p, k, &lane)
				if !accept {
					valid = valid.Clear(k)
				}
			}
			if valid.None() {
				return
			}
		}
	}

	// update hit information
	p.U = simd.Select(valid, u, p.U)
	p.V = simd.Select(valid, v, p.V)
	p.TFar = simd.Select(valid, t, p.TFar)
	p.Ng.X = simd.Select(valid, hit.ng.X, p.Ng.X)
	p.Ng.Y = simd.Select(valid, hit.ng.Y, p.Ng.Y)
	p.Ng.Z = simd.Select(valid, hit.ng.Z, p.Ng.Z)
	for k := 0; k < ray.PacketWidth; k++ {
		if valid.Has(k) {
			p.GeomID[k] = geomID
			p.PrimID[k] = primID
		}
	}
}

// occludedKEpilog removes occluded lanes from the shared alive mask
// and marks them in the packet. Lanes whose candidates are all
// rejected stay alive.
func (e *epilogs) occludedKEpilog(alive *simd.Mask, p *ray.Packet, hit *uvwt[simd.Float8], valid simd.Mask, geomID, primID uint32) {
	if e.cfg.RayMask || e.cfg.Filters {
		g := e.scene.Geometry(geomID)
		if e.cfg.RayMask {
			for k := 0; k < ray.PacketWidth; k++ {
				if valid.Has(k) && g.Mask&p.Mask[k] == 0 {
					valid = valid.Clear(k)
				}
			}
			if valid.None() {
				return
			}
		}
		if e.cfg.Filters && g.OcclusionFilter != nil {
			u, v, t := hit.finalize()
			for k := 0; k < ray.PacketWidth; k++ {
				if !valid.Has(k) {
					continue
				}
				lane := p.Lane(k)
				cand := Hit{
					T:      t[k],
					U:      u[k],
					V:      v[k],
					Ng:     laneVec3(hit.ng, k),
					GeomID: geomID,
					PrimID: primID,
				}
				accept := g.OcclusionFilter(&lane, &cand)
				storeLaneRay(p, k, &lane)
				if !accept {
					valid = valid.Clear(k)
				}
			}
			if valid.None() {
				return
			}
		}
	}

	for k := 0; k < ray.PacketWidth; k++ {
		if valid.Has(k) {
			p.GeomID[k] = 0
		}
	}
	*alive = *alive &^ valid
}
