package tracer

import (
	"testing"

	"github.com/marcioAlmada/embree/geometry"
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/scene"
	"github.com/marcioAlmada/embree/simd"
	"github.com/marcioAlmada/embree/types"
)

func quadAt(z float32) scene.Mesh {
	return scene.Mesh{
		Vertices: []types.Vec3{
			types.XYZ(0, 0, z),
			types.XYZ(1, 0, z),
			types.XYZ(0, 1, z),
			types.XYZ(1, 1, z),
		},
		Faces: [][3]uint32{{0, 1, 2}, {2, 1, 3}},
	}
}

// layeredScene stacks two static quads and one quad that slides from
// x 0..1 to x 2..3 over the shutter interval.
func layeredScene(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New()
	for _, m := range []scene.Mesh{quadAt(0), quadAt(-1)} {
		if _, err := s.AddMesh(m); err != nil {
			t.Fatalf("expected mesh to pack; got %v", err)
		}
	}
	moving := quadAt(-2)
	moving.Velocities = []types.Vec3{
		types.XYZ(2, 0, 0),
		types.XYZ(2, 0, 0),
		types.XYZ(2, 0, 0),
		types.XYZ(2, 0, 0),
	}
	if _, err := s.AddMesh(moving); err != nil {
		t.Fatalf("expected moving mesh to pack; got %v", err)
	}
	return s
}

func TestTracerFindsNearestAcrossLeaves(t *testing.T) {
	tr := New(layeredScene(t), geometry.Config{})

	r := ray.New(types.XYZ(0.25, 0.25, 1), types.XYZ(0, 0, -1))
	if !tr.Intersect(&r) {
		t.Fatalf("expected a hit through the stacked quads")
	}
	if r.TFar != 1 || r.GeomID != 0 {
		t.Fatalf("expected the nearest quad (t=1, geom 0); got t=%g geom %d", r.TFar, r.GeomID)
	}

	// The committed distance carries across a second walk.
	if tr.Intersect(&r) {
		t.Fatalf("expected no closer hit on a rewalk")
	}
}

func TestTracerOccluded(t *testing.T) {
	tr := New(layeredScene(t), geometry.Config{})

	r := ray.New(types.XYZ(0.25, 0.25, 1), types.XYZ(0, 0, -1))
	if !tr.Occluded(&r) {
		t.Fatalf("expected the stacked quads to occlude")
	}

	miss := ray.New(types.XYZ(5, 5, 1), types.XYZ(0, 0, -1))
	if tr.Occluded(&miss) {
		t.Fatalf("expected open space to stay unoccluded")
	}
}

func TestTracerMotionTime(t *testing.T) {
	tr := New(layeredScene(t), geometry.Config{})

	// At time 0 the sliding quad sits at x 0..1, covered by the static
	// quads along this ray; at time 1 it alone covers x 2..3.
	r := ray.New(types.XYZ(2.5, 0.5, 1), types.XYZ(0, 0, -1))
	if tr.Intersect(&r) {
		t.Fatalf("expected nothing at x=2.5 at time 0")
	}

	r = ray.New(types.XYZ(2.5, 0.5, 1), types.XYZ(0, 0, -1))
	r.Time = 1
	if !tr.Intersect(&r) {
		t.Fatalf("expected the displaced quad at time 1")
	}
	if r.TFar != 3 || r.GeomID != 2 {
		t.Fatalf("expected t=3 on geom 2; got t=%g geom %d", r.TFar, r.GeomID)
	}
}

func TestTracerPacketMatchesScalar(t *testing.T) {
	tr := New(layeredScene(t), geometry.Config{})

	rays := make([]ray.Ray, ray.PacketWidth)
	for k := range rays {
		x := 0.125 + float32(k)*0.35
		rays[k] = ray.New(types.XYZ(x, 0.5, 1), types.XYZ(0, 0, -1))
		rays[k].Time = float32(k) * 0.125
	}

	want := make([]ray.Ray, len(rays))
	copy(want, rays)
	for i := range want {
		tr.Intersect(&want[i])
	}

	p := ray.NewPacket()
	for k, r := range rays {
		p.SetRay(k, r)
	}
	tr.IntersectPacket(simd.LaneMask(ray.PacketWidth), &p)

	for k := range want {
		if got := p.Lane(k); got != want[k] {
			t.Fatalf("lane %d: packet walk disagrees with the scalar walk:\n got %+v\nwant %+v", k, got, want[k])
		}
	}
}

func TestTracerOccludedPacket(t *testing.T) {
	tr := New(layeredScene(t), geometry.Config{})

	p := ray.NewPacket()
	for k := 0; k < ray.PacketWidth; k++ {
		// Even lanes cross the quads, odd lanes miss everything.
		x := float32(0.25)
		if k%2 == 1 {
			x = 5
		}
		p.SetRay(k, ray.New(types.XYZ(x, 0.25, 1), types.XYZ(0, 0, -1)))
	}

	blocked := tr.OccludedPacket(simd.LaneMask(ray.PacketWidth), &p)
	if blocked != simd.Mask(0x55) {
		t.Fatalf("expected the even lanes to be blocked; got mask 0x%02x", blocked)
	}
}
