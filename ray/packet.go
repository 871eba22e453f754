package ray

import (
	"github.com/chewxy/math32"

	"github.com/marcioAlmada/embree/simd"
	"github.com/marcioAlmada/embree/types"
)

// PacketWidth is the number of rays traced together by the packet
// intersectors.
const PacketWidth = 8

// Packet holds PacketWidth rays in structure-of-arrays form so the
// intersectors can test all lanes against a triangle at once. Lane
// validity is not part of the packet; traversal threads an activity
// mask through the intersector calls instead.
type Packet struct {
	Org   simd.Vec3x8
	Dir   simd.Vec3x8
	TNear simd.Float8
	TFar  simd.Float8
	Time  simd.Float8
	Mask  [PacketWidth]uint32

	// Per-lane hit attributes, valid where GeomID != InvalidID.
	Ng     simd.Vec3x8
	U      simd.Float8
	V      simd.Float8
	GeomID [PacketWidth]uint32
	PrimID [PacketWidth]uint32
	InstID [PacketWidth]uint32
}

// NewPacket creates a packet with every lane holding an unbounded,
// hitless ray and a fully open geometry mask.
func NewPacket() Packet {
	var p Packet
	p.TFar = simd.Splat[simd.Float8](math32.Inf(1))
	for k := 0; k < PacketWidth; k++ {
		p.Mask[k] = ^uint32(0)
		p.GeomID[k] = InvalidID
		p.PrimID[k] = InvalidID
		p.InstID[k] = InvalidID
	}
	return p
}

// SetRay scatters a scalar ray into lane k.
func (p *Packet) SetRay(k int, r Ray) {
	p.Org.X[k], p.Org.Y[k], p.Org.Z[k] = r.Org[0], r.Org[1], r.Org[2]
	p.Dir.X[k], p.Dir.Y[k], p.Dir.Z[k] = r.Dir[0], r.Dir[1], r.Dir[2]
	p.TNear[k] = r.TNear
	p.TFar[k] = r.TFar
	p.Time[k] = r.Time
	p.Mask[k] = r.Mask
	p.Ng.X[k], p.Ng.Y[k], p.Ng.Z[k] = r.Ng[0], r.Ng[1], r.Ng[2]
	p.U[k] = r.U
	p.V[k] = r.V
	p.GeomID[k] = r.GeomID
	p.PrimID[k] = r.PrimID
	p.InstID[k] = r.InstID
}

// Lane gathers lane k back into a scalar ray, hit attributes included.
func (p *Packet) Lane(k int) Ray {
	return Ray{
		Org:    types.Vec3{p.Org.X[k], p.Org.Y[k], p.Org.Z[k]},
		Dir:    types.Vec3{p.Dir.X[k], p.Dir.Y[k], p.Dir.Z[k]},
		TNear:  p.TNear[k],
		TFar:   p.TFar[k],
		Time:   p.Time[k],
		Mask:   p.Mask[k],
		Ng:     types.Vec3{p.Ng.X[k], p.Ng.Y[k], p.Ng.Z[k]},
		U:      p.U[k],
		V:      p.V[k],
		GeomID: p.GeomID[k],
		PrimID: p.PrimID[k],
		InstID: p.InstID[k],
	}
}

// HasHit reports whether lane k has committed a hit.
func (p *Packet) HasHit(k int) bool {
	return p.GeomID[k] != InvalidID
}
