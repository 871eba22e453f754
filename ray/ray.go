// Package ray defines the scalar and packet ray layouts shared by the
// triangle intersectors and the frame tracer.
package ray

import (
	"github.com/chewxy/math32"

	"github.com/marcioAlmada/embree/types"
)

// InvalidID marks unset geometry, primitive and instance slots. A ray
// whose GeomID still holds this value after traversal missed
// everything.
const InvalidID = ^uint32(0)

// Ray carries a single ray and the best hit found for it so far. TFar
// doubles as the committed hit distance: every successful intersection
// tightens it so later primitives must beat the current hit to be
// accepted.
type Ray struct {
	Org   types.Vec3
	Dir   types.Vec3
	TNear float32
	TFar  float32
	Time  float32
	Mask  uint32

	// Hit attributes, valid once GeomID != InvalidID.
	Ng     types.Vec3
	U      float32
	V      float32
	GeomID uint32
	PrimID uint32
	InstID uint32
}

// New creates a ray from org towards dir with an unbounded segment and
// no recorded hit. The geometry mask starts fully open.
func New(org, dir types.Vec3) Ray {
	return Ray{
		Org:    org,
		Dir:    dir,
		TNear:  0,
		TFar:   math32.Inf(1),
		Mask:   ^uint32(0),
		GeomID: InvalidID,
		PrimID: InvalidID,
		InstID: InvalidID,
	}
}

// HasHit reports whether the ray has committed a hit.
func (r *Ray) HasHit() bool {
	return r.GeomID != InvalidID
}
