package geometry

import (
	"testing"

	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/types"
)

func TestPackTriangle4(t *testing.T) {
	tris := []Triangle{
		{V0: types.XYZ(0, 0, 0), V1: types.XYZ(1, 0, 0), V2: types.XYZ(0, 1, 0), GeomID: 1, PrimID: 10},
		{V0: types.XYZ(2, 0, 5), V1: types.XYZ(3, 0, 5), V2: types.XYZ(2, 4, 5), GeomID: 2, PrimID: 20},
	}
	batch := PackTriangle4(tris)

	if got := batch.Size(); got != 2 {
		t.Fatalf("expected batch size 2; got %d", got)
	}
	if !batch.Valid(0) || !batch.Valid(1) || batch.Valid(2) || batch.Valid(3) {
		t.Fatalf("expected slots 0-1 valid and 2-3 padded")
	}

	// Slot 0: e1 = v0-v1, e2 = v2-v0, Ng = cross(e1, e2).
	if x, y, z := batch.E1.Lane(0); x != -1 || y != 0 || z != 0 {
		t.Fatalf("expected slot 0 e1 (-1,0,0); got (%g,%g,%g)", x, y, z)
	}
	if x, y, z := batch.E2.Lane(0); x != 0 || y != 1 || z != 0 {
		t.Fatalf("expected slot 0 e2 (0,1,0); got (%g,%g,%g)", x, y, z)
	}
	if x, y, z := batch.Ng.Lane(0); x != 0 || y != 0 || z != -1 {
		t.Fatalf("expected slot 0 Ng (0,0,-1); got (%g,%g,%g)", x, y, z)
	}

	// Slot 1: a scaled triangle off the origin.
	if x, y, z := batch.E1.Lane(1); x != -1 || y != 0 || z != 0 {
		t.Fatalf("expected slot 1 e1 (-1,0,0); got (%g,%g,%g)", x, y, z)
	}
	if x, y, z := batch.Ng.Lane(1); x != 0 || y != 0 || z != -4 {
		t.Fatalf("expected slot 1 Ng (0,0,-4); got (%g,%g,%g)", x, y, z)
	}

	if batch.GeomID[0] != 1 || batch.PrimID[0] != 10 || batch.GeomID[1] != 2 || batch.PrimID[1] != 20 {
		t.Fatalf("unexpected ID layout: %v %v", batch.GeomID, batch.PrimID)
	}

	// Padded slots carry invalid IDs and the zero triangle.
	for i := 2; i < BatchWidth; i++ {
		if batch.GeomID[i] != ray.InvalidID || batch.PrimID[i] != ray.InvalidID {
			t.Fatalf("expected slot %d to carry invalid IDs", i)
		}
		if x, y, z := batch.Ng.Lane(i); x != 0 || y != 0 || z != 0 {
			t.Fatalf("expected slot %d to be degenerate; got Ng (%g,%g,%g)", i, x, y, z)
		}
	}
}

func TestPackTriangle4Overflow(t *testing.T) {
	tris := make([]Triangle, 6)
	for i := range tris {
		tris[i] = Triangle{GeomID: uint32(i), PrimID: uint32(i)}
	}

	batch := PackTriangle4(tris)
	if got := batch.Size(); got != BatchWidth {
		t.Fatalf("expected batch capped at %d slots; got %d", BatchWidth, got)
	}
	for i := 0; i < BatchWidth; i++ {
		if batch.GeomID[i] != uint32(i) {
			t.Fatalf("expected slot %d to keep triangle %d; got geom %d", i, i, batch.GeomID[i])
		}
	}
}

func TestPackMotionTriangle4(t *testing.T) {
	tris := []MotionTriangle{
		{
			V0: types.XYZ(0, 0, 0), V1: types.XYZ(1, 0, 0), V2: types.XYZ(0, 1, 0),
			DV0: types.XYZ(0, 0, -1), DV1: types.XYZ(0, 0, -1), DV2: types.XYZ(0, 0, -1),
			GeomID: 4, PrimID: 40,
		},
	}
	batch := PackMotionTriangle4(tris)

	if got := batch.Size(); got != 1 {
		t.Fatalf("expected batch size 1; got %d", got)
	}
	if x, y, z := batch.V1.Lane(0); x != 1 || y != 0 || z != 0 {
		t.Fatalf("expected slot 0 v1 (1,0,0); got (%g,%g,%g)", x, y, z)
	}
	if x, y, z := batch.DV2.Lane(0); x != 0 || y != 0 || z != -1 {
		t.Fatalf("expected slot 0 dv2 (0,0,-1); got (%g,%g,%g)", x, y, z)
	}
	if batch.GeomID[0] != 4 || batch.PrimID[0] != 40 {
		t.Fatalf("unexpected IDs: geom %d prim %d", batch.GeomID[0], batch.PrimID[0])
	}
	for i := 1; i < BatchWidth; i++ {
		if batch.Valid(i) {
			t.Fatalf("expected slot %d to be padding", i)
		}
	}
}
