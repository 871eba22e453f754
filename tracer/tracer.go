// Package tracer walks a scene's packed leaf batches with the
// intersectors, standing in for a full BVH traversal, and renders
// demo frames through a pinhole camera.
package tracer

import (
	"github.com/marcioAlmada/embree/geometry"
	"github.com/marcioAlmada/embree/log"
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/scene"
	"github.com/marcioAlmada/embree/simd"
)

// Tracer visits every leaf batch of a scene sequentially, applying
// the intersectors the way a BVH traversal applies them at its
// leaves: one precalculation per ray, the committed distance threaded
// through intersect calls and early exit on occlusion.
type Tracer struct {
	logger log.Logger

	scene  *scene.Scene
	static *geometry.Intersector4
	motion *geometry.MotionIntersector4
}

// New creates a tracer over the scene's batches.
func New(s *scene.Scene, cfg geometry.Config) *Tracer {
	return &Tracer{
		logger: log.New("tracer"),
		scene:  s,
		static: geometry.NewIntersector4(s, cfg),
		motion: geometry.NewMotionIntersector4(s, cfg),
	}
}

// Intersect finds the nearest hit along r across every leaf batch.
func (t *Tracer) Intersect(r *ray.Ray) bool {
	pre := geometry.Precompute(r)
	hit := false
	batches := t.scene.Batches()
	for i := range batches {
		if t.static.Intersect(pre, r, &batches[i]) {
			hit = true
		}
	}
	moving := t.scene.MotionBatches()
	for i := range moving {
		if t.motion.Intersect(pre, r, &moving[i]) {
			hit = true
		}
	}
	return hit
}

// Occluded reports whether anything blocks the segment of r, stopping
// at the first occluder.
func (t *Tracer) Occluded(r *ray.Ray) bool {
	pre := geometry.Precompute(r)
	batches := t.scene.Batches()
	for i := range batches {
		if t.static.Occluded(pre, r, &batches[i]) {
			return true
		}
	}
	moving := t.scene.MotionBatches()
	for i := range moving {
		if t.motion.Occluded(pre, r, &moving[i]) {
			return true
		}
	}
	return false
}

// IntersectPacket finds per-lane nearest hits for the active lanes of
// p across every leaf batch.
func (t *Tracer) IntersectPacket(valid simd.Mask, p *ray.Packet) {
	pre := geometry.PrecomputePacket(valid, p)
	batches := t.scene.Batches()
	for i := range batches {
		t.static.IntersectPacket(valid, pre, p, &batches[i])
	}
	moving := t.scene.MotionBatches()
	for i := range moving {
		t.motion.IntersectPacket(valid, pre, p, &moving[i])
	}
}

// OccludedPacket reports the active lanes of p that are blocked,
// retiring lanes from the walk as they resolve.
func (t *Tracer) OccludedPacket(valid simd.Mask, p *ray.Packet) simd.Mask {
	pre := geometry.PrecomputePacket(valid, p)
	alive := valid
	batches := t.scene.Batches()
	for i := range batches {
		alive &^= t.static.OccludedPacket(alive, pre, p, &batches[i])
		if alive.None() {
			return valid
		}
	}
	moving := t.scene.MotionBatches()
	for i := range moving {
		alive &^= t.motion.OccludedPacket(alive, pre, p, &moving[i])
		if alive.None() {
			return valid
		}
	}
	return valid &^ alive
}
