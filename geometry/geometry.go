// Package geometry implements ray-triangle intersection and occlusion
// tests over small structure-of-arrays triangle batches.
//
// The kernels use a modified form of the Moeller-Trumbore intersector
// from "Fast, Minimum Storage Ray-Triangle Intersection": edges and
// the geometry normal are precomputed per batch and the sign of the
// denominator is folded into the barycentrics, so every edge test is a
// comparison against zero and no division happens unless a candidate
// survives all reject tests.
package geometry

import (
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/simd"
	"github.com/marcioAlmada/embree/types"
)

// Hit describes a candidate intersection handed to filter callbacks.
// T is the hit distance along the ray, U and V the barycentric
// coordinates, and Ng the unnormalized geometry normal. GeomID and
// PrimID identify the triangle the candidate came from.
type Hit struct {
	T      float32
	U      float32
	V      float32
	Ng     types.Vec3
	GeomID uint32
	PrimID uint32
}

// Filter decides whether a candidate hit is accepted. Returning false
// rejects the candidate and resumes the search with the remaining
// ones. Filters may mutate the ray fields of r as a side channel on
// every path; packet paths hand them a scalar view of the lane under
// test and store those fields back whether or not the candidate is
// accepted. The hit attributes and interval end are managed by the
// intersector.
type Filter func(r *ray.Ray, hit *Hit) bool

// Geometry is the per-geometry state consulted while committing hits.
type Geometry struct {
	// Mask is matched against the ray mask; a zero intersection
	// rejects the hit when mask testing is enabled.
	Mask uint32

	// Optional filter callbacks, run when filtering is enabled.
	IntersectionFilter Filter
	OcclusionFilter    Filter
}

// Scene resolves the geometry IDs stored in triangle batches. The
// intersectors only consult it when mask testing or filtering is
// enabled, and expect a non-nil record for every ID they were fed.
type Scene interface {
	Geometry(geomID uint32) *Geometry
}

// Config selects the optional intersector features. The zero value
// runs the plain geometric test.
type Config struct {
	// BackfaceCulling rejects hits whose denominator is not positive,
	// keeping only triangles facing the ray.
	BackfaceCulling bool

	// RayMask enables the geometry mask test during hit commit.
	RayMask bool

	// Filters enables the per-geometry filter callbacks.
	Filters bool
}

// Precalculations is the per-traversal setup hook. The
// Moeller-Trumbore kernels precompute everything per batch instead,
// so there is no per-ray state; the type keeps the call shape stable
// for intersectors that do need it.
type Precalculations struct{}

// Precompute prepares per-ray traversal state.
func Precompute(r *ray.Ray) Precalculations {
	return Precalculations{}
}

// PrecomputePacket prepares per-packet traversal state for the active
// lanes.
func PrecomputePacket(valid simd.Mask, p *ray.Packet) Precalculations {
	return Precalculations{}
}
