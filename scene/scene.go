// Package scene assembles the geometry table and the packed leaf
// batches the intersectors consume from indexed triangle meshes.
package scene

import (
	"time"

	"github.com/marcioAlmada/embree/geometry"
	"github.com/marcioAlmada/embree/log"
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/types"
)

// defaultGeometry is handed out for IDs the scene never assigned. Its
// all-ones mask keeps unknown geometry visible.
var defaultGeometry = geometry.Geometry{Mask: ^uint32(0)}

// Scene is the concrete geometry table behind the intersectors: one
// Geometry record per added mesh plus the packed leaf batches a
// traversal walks.
type Scene struct {
	logger log.Logger

	geoms   []*geometry.Geometry
	batches []geometry.Triangle4
	motion  []geometry.MotionTriangle4

	primitives int
	boundsMin  types.Vec3
	boundsMax  types.Vec3
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{logger: log.New("scene")}
}

// Geometry returns the record for geomID. Unknown IDs resolve to a
// shared default record.
func (s *Scene) Geometry(geomID uint32) *geometry.Geometry {
	if int(geomID) >= len(s.geoms) {
		return &defaultGeometry
	}
	return s.geoms[geomID]
}

// AddMesh validates and packs a mesh under the next geometry ID.
// Meshes with velocities become motion blur batches. The new record
// starts with an all-ones mask and no filters; use Geometry to adjust
// it.
func (s *Scene) AddMesh(m Mesh) (uint32, error) {
	if err := m.validate(); err != nil {
		return ray.InvalidID, err
	}
	start := time.Now()

	geomID := uint32(len(s.geoms))
	pos := gatherStreams(m.Vertices, m.Faces)
	pos.computeEdges()

	if m.Moving() {
		vel := gatherStreams(m.Velocities, m.Faces)
		s.motion = append(s.motion, scatterMotionBatches(pos, vel, geomID)...)
	} else {
		s.batches = append(s.batches, scatterBatches(pos, geomID)...)
	}
	s.geoms = append(s.geoms, &geometry.Geometry{Mask: ^uint32(0)})

	min, max := m.Bounds()
	if s.primitives == 0 {
		s.boundsMin, s.boundsMax = min, max
	} else {
		s.boundsMin = types.MinVec3(s.boundsMin, min)
		s.boundsMax = types.MaxVec3(s.boundsMax, max)
	}
	s.primitives += len(m.Faces)

	// The area stat is a full pass over the normal streams; compute it
	// only when the record is going to print.
	if s.logger.IsEnabledFor(log.Debug) {
		s.logger.Debugf("packed mesh %d: %d faces, area %.3f in %d ms", geomID, len(m.Faces), pos.area(), time.Since(start).Nanoseconds()/1e6)
	}
	return geomID, nil
}

// Batches returns the packed static leaf batches.
func (s *Scene) Batches() []geometry.Triangle4 {
	return s.batches
}

// MotionBatches returns the packed motion blur leaf batches.
func (s *Scene) MotionBatches() []geometry.MotionTriangle4 {
	return s.motion
}

// GeometryCount returns the number of registered geometries.
func (s *Scene) GeometryCount() int {
	return len(s.geoms)
}

// PrimitiveCount returns the number of packed triangles.
func (s *Scene) PrimitiveCount() int {
	return s.primitives
}

// Bounds returns the box covering every mesh over the whole shutter
// interval.
func (s *Scene) Bounds() (min, max types.Vec3) {
	return s.boundsMin, s.boundsMax
}
