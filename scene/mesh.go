package scene

import (
	"github.com/marcioAlmada/embree/types"
)

// Mesh is an indexed triangle soup. Velocities are optional; when
// present they give the per-vertex displacement over the shutter
// interval and the mesh is packed for motion blur.
type Mesh struct {
	Vertices   []types.Vec3
	Velocities []types.Vec3
	Faces      [][3]uint32
}

// Moving reports whether the mesh carries motion data.
func (m *Mesh) Moving() bool {
	return len(m.Velocities) != 0
}

func (m *Mesh) validate() error {
	if len(m.Faces) == 0 {
		return ErrNoFaces
	}
	if m.Moving() && len(m.Velocities) != len(m.Vertices) {
		return ErrVelocityMismatch
	}
	for _, face := range m.Faces {
		for _, idx := range face {
			if int(idx) >= len(m.Vertices) {
				return ErrFaceIndex
			}
		}
	}
	return nil
}

// Bounds returns the axis aligned box covering the mesh over the
// whole shutter interval.
func (m *Mesh) Bounds() (min, max types.Vec3) {
	if len(m.Vertices) == 0 {
		return min, max
	}
	min = m.Vertices[0]
	max = m.Vertices[0]
	for i, v := range m.Vertices {
		min = types.MinVec3(min, v)
		max = types.MaxVec3(max, v)
		if m.Moving() {
			end := v.Add(m.Velocities[i])
			min = types.MinVec3(min, end)
			max = types.MaxVec3(max, end)
		}
	}
	return min, max
}
