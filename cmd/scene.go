package cmd

import (
	"github.com/marcioAlmada/embree/geometry"
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/scene"
	"github.com/marcioAlmada/embree/types"
)

func quad(a, b, c, d types.Vec3) scene.Mesh {
	return scene.Mesh{
		Vertices: []types.Vec3{a, b, c, d},
		Faces:    [][3]uint32{{0, 1, 2}, {2, 1, 3}},
	}
}

// demoScene builds the built-in showcase scene: a ground plane, a
// floating quad trimmed by an intersection filter, a motion blurred
// quad and one geometry that is masked out of every render.
func demoScene() (*scene.Scene, error) {
	s := scene.New()

	ground := quad(
		types.XYZ(-2, -1, 1),
		types.XYZ(3, -1, 1),
		types.XYZ(-2, -1, -4),
		types.XYZ(3, -1, -4),
	)
	if _, err := s.AddMesh(ground); err != nil {
		return nil, err
	}

	trimmed := quad(
		types.XYZ(0, 0, 0),
		types.XYZ(1, 0, 0),
		types.XYZ(0, 1, 0),
		types.XYZ(1, 1, 0),
	)
	id, err := s.AddMesh(trimmed)
	if err != nil {
		return nil, err
	}
	s.Geometry(id).IntersectionFilter = func(r *ray.Ray, hit *geometry.Hit) bool {
		return hit.U+hit.V <= 0.9
	}

	sliding := quad(
		types.XYZ(-1.5, 0, -1),
		types.XYZ(-0.5, 0, -1),
		types.XYZ(-1.5, 1, -1),
		types.XYZ(-0.5, 1, -1),
	)
	sliding.Velocities = []types.Vec3{
		types.XYZ(0.6, 0.2, 0),
		types.XYZ(0.6, 0.2, 0),
		types.XYZ(0.6, 0.2, 0),
		types.XYZ(0.6, 0.2, 0),
	}
	if _, err = s.AddMesh(sliding); err != nil {
		return nil, err
	}

	hidden := quad(
		types.XYZ(1.5, 0, -1),
		types.XYZ(2.5, 0, -1),
		types.XYZ(1.5, 1, -1),
		types.XYZ(2.5, 1, -1),
	)
	id, err = s.AddMesh(hidden)
	if err != nil {
		return nil, err
	}
	s.Geometry(id).Mask = 0

	return s, nil
}
