package scene

import (
	"github.com/ajroetker/go-highway/hwy"
	"github.com/chewxy/math32"

	"github.com/marcioAlmada/embree/geometry"
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/types"
)

// faceStreams holds one mesh worth of per-face vertex data in SoA
// layout together with the derived edge and normal streams. The
// contiguous component slices are what lets the batch compiler run
// the edge setup over whole registers instead of one face at a time.
type faceStreams struct {
	v0x, v0y, v0z []float32
	v1x, v1y, v1z []float32
	v2x, v2y, v2z []float32

	e1x, e1y, e1z []float32
	e2x, e2y, e2z []float32
	ngx, ngy, ngz []float32
}

// gatherStreams de-interleaves the indexed faces into component
// streams backed by a single allocation.
func gatherStreams(vertices []types.Vec3, faces [][3]uint32) *faceStreams {
	n := len(faces)
	buf := make([]float32, 18*n)
	next := func() []float32 {
		s := buf[:n:n]
		buf = buf[n:]
		return s
	}
	st := &faceStreams{
		v0x: next(), v0y: next(), v0z: next(),
		v1x: next(), v1y: next(), v1z: next(),
		v2x: next(), v2y: next(), v2z: next(),
		e1x: next(), e1y: next(), e1z: next(),
		e2x: next(), e2y: next(), e2z: next(),
		ngx: next(), ngy: next(), ngz: next(),
	}
	for i, face := range faces {
		v0 := vertices[face[0]]
		v1 := vertices[face[1]]
		v2 := vertices[face[2]]
		st.v0x[i], st.v0y[i], st.v0z[i] = v0[0], v0[1], v0[2]
		st.v1x[i], st.v1y[i], st.v1z[i] = v1[0], v1[1], v1[2]
		st.v2x[i], st.v2y[i], st.v2z[i] = v2[0], v2[1], v2[2]
	}
	return st
}

// computeEdges fills the edge and geometry normal streams:
// e1 = v0-v1, e2 = v2-v0, Ng = e1 x e2. The arithmetic sticks to
// plain subtract and multiply so the result is identical to the
// scalar packer, lane for lane.
func (st *faceStreams) computeEdges() {
	hwy.ProcessWithTail[float32](len(st.v0x),
		func(offset int) {
			v0x := hwy.Load(st.v0x[offset:])
			v0y := hwy.Load(st.v0y[offset:])
			v0z := hwy.Load(st.v0z[offset:])
			v1x := hwy.Load(st.v1x[offset:])
			v1y := hwy.Load(st.v1y[offset:])
			v1z := hwy.Load(st.v1z[offset:])
			v2x := hwy.Load(st.v2x[offset:])
			v2y := hwy.Load(st.v2y[offset:])
			v2z := hwy.Load(st.v2z[offset:])

			e1x := hwy.Sub(v0x, v1x)
			e1y := hwy.Sub(v0y, v1y)
			e1z := hwy.Sub(v0z, v1z)
			e2x := hwy.Sub(v2x, v0x)
			e2y := hwy.Sub(v2y, v0y)
			e2z := hwy.Sub(v2z, v0z)

			ngx := hwy.Sub(hwy.Mul(e1y, e2z), hwy.Mul(e1z, e2y))
			ngy := hwy.Sub(hwy.Mul(e1z, e2x), hwy.Mul(e1x, e2z))
			ngz := hwy.Sub(hwy.Mul(e1x, e2y), hwy.Mul(e1y, e2x))

			hwy.Store(e1x, st.e1x[offset:])
			hwy.Store(e1y, st.e1y[offset:])
			hwy.Store(e1z, st.e1z[offset:])
			hwy.Store(e2x, st.e2x[offset:])
			hwy.Store(e2y, st.e2y[offset:])
			hwy.Store(e2z, st.e2z[offset:])
			hwy.Store(ngx, st.ngx[offset:])
			hwy.Store(ngy, st.ngy[offset:])
			hwy.Store(ngz, st.ngz[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[float32](count)

			v0x := hwy.MaskLoad(mask, st.v0x[offset:])
			v0y := hwy.MaskLoad(mask, st.v0y[offset:])
			v0z := hwy.MaskLoad(mask, st.v0z[offset:])
			v1x := hwy.MaskLoad(mask, st.v1x[offset:])
			v1y := hwy.MaskLoad(mask, st.v1y[offset:])
			v1z := hwy.MaskLoad(mask, st.v1z[offset:])
			v2x := hwy.MaskLoad(mask, st.v2x[offset:])
			v2y := hwy.MaskLoad(mask, st.v2y[offset:])
			v2z := hwy.MaskLoad(mask, st.v2z[offset:])

			e1x := hwy.Sub(v0x, v1x)
			e1y := hwy.Sub(v0y, v1y)
			e1z := hwy.Sub(v0z, v1z)
			e2x := hwy.Sub(v2x, v0x)
			e2y := hwy.Sub(v2y, v0y)
			e2z := hwy.Sub(v2z, v0z)

			ngx := hwy.Sub(hwy.Mul(e1y, e2z), hwy.Mul(e1z, e2y))
			ngy := hwy.Sub(hwy.Mul(e1z, e2x), hwy.Mul(e1x, e2z))
			ngz := hwy.Sub(hwy.Mul(e1x, e2y), hwy.Mul(e1y, e2x))

			hwy.MaskStore(mask, e1x, st.e1x[offset:])
			hwy.MaskStore(mask, e1y, st.e1y[offset:])
			hwy.MaskStore(mask, e1z, st.e1z[offset:])
			hwy.MaskStore(mask, e2x, st.e2x[offset:])
			hwy.MaskStore(mask, e2y, st.e2y[offset:])
			hwy.MaskStore(mask, e2z, st.e2z[offset:])
			hwy.MaskStore(mask, ngx, st.ngx[offset:])
			hwy.MaskStore(mask, ngy, st.ngy[offset:])
			hwy.MaskStore(mask, ngz, st.ngz[offset:])
		},
	)
}

// squaredNormalLengths computes |Ng|^2 per face into dst.
func (st *faceStreams) squaredNormalLengths(dst []float32) {
	hwy.ProcessWithTail[float32](len(dst),
		func(offset int) {
			ngx := hwy.Load(st.ngx[offset:])
			ngy := hwy.Load(st.ngy[offset:])
			ngz := hwy.Load(st.ngz[offset:])

			sq := hwy.Mul(ngx, ngx)
			sq = hwy.FMA(ngy, ngy, sq)
			sq = hwy.FMA(ngz, ngz, sq)

			hwy.Store(sq, dst[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[float32](count)
			ngx := hwy.MaskLoad(mask, st.ngx[offset:])
			ngy := hwy.MaskLoad(mask, st.ngy[offset:])
			ngz := hwy.MaskLoad(mask, st.ngz[offset:])

			sq := hwy.Mul(ngx, ngx)
			sq = hwy.FMA(ngy, ngy, sq)
			sq = hwy.FMA(ngz, ngz, sq)

			hwy.MaskStore(mask, sq, dst[offset:])
		},
	)
}

// area returns the summed triangle area of the gathered faces. The
// cross product length of each face is twice its area.
func (st *faceStreams) area() float32 {
	sq := make([]float32, len(st.ngx))
	st.squaredNormalLengths(sq)
	var sum float32
	for _, s := range sq {
		sum += math32.Sqrt(s)
	}
	return 0.5 * sum
}

// scatterBatches distributes the streams into 4-wide leaf batches,
// padding the tail batch with invalid lanes.
func scatterBatches(st *faceStreams, geomID uint32) []geometry.Triangle4 {
	n := len(st.v0x)
	batches := make([]geometry.Triangle4, (n+geometry.BatchWidth-1)/geometry.BatchWidth)
	for i := range batches {
		b := &batches[i]
		for l := 0; l < geometry.BatchWidth; l++ {
			f := i*geometry.BatchWidth + l
			if f >= n {
				b.GeomID[l] = ray.InvalidID
				b.PrimID[l] = ray.InvalidID
				continue
			}
			b.V0.X[l], b.V0.Y[l], b.V0.Z[l] = st.v0x[f], st.v0y[f], st.v0z[f]
			b.E1.X[l], b.E1.Y[l], b.E1.Z[l] = st.e1x[f], st.e1y[f], st.e1z[f]
			b.E2.X[l], b.E2.Y[l], b.E2.Z[l] = st.e2x[f], st.e2y[f], st.e2z[f]
			b.Ng.X[l], b.Ng.Y[l], b.Ng.Z[l] = st.ngx[f], st.ngy[f], st.ngz[f]
			b.GeomID[l] = geomID
			b.PrimID[l] = uint32(f)
		}
	}
	return batches
}

// scatterMotionBatches distributes position and velocity streams into
// motion blur leaf batches. Motion batches keep raw vertices; the
// edge setup happens at intersection time after interpolation.
func scatterMotionBatches(pos, vel *faceStreams, geomID uint32) []geometry.MotionTriangle4 {
	n := len(pos.v0x)
	batches := make([]geometry.MotionTriangle4, (n+geometry.BatchWidth-1)/geometry.BatchWidth)
	for i := range batches {
		b := &batches[i]
		for l := 0; l < geometry.BatchWidth; l++ {
			f := i*geometry.BatchWidth + l
			if f >= n {
				b.GeomID[l] = ray.InvalidID
				b.PrimID[l] = ray.InvalidID
				continue
			}
			b.V0.X[l], b.V0.Y[l], b.V0.Z[l] = pos.v0x[f], pos.v0y[f], pos.v0z[f]
			b.V1.X[l], b.V1.Y[l], b.V1.Z[l] = pos.v1x[f], pos.v1y[f], pos.v1z[f]
			b.V2.X[l], b.V2.Y[l], b.V2.Z[l] = pos.v2x[f], pos.v2y[f], pos.v2z[f]
			b.DV0.X[l], b.DV0.Y[l], b.DV0.Z[l] = vel.v0x[f], vel.v0y[f], vel.v0z[f]
			b.DV1.X[l], b.DV1.Y[l], b.DV1.Z[l] = vel.v1x[f], vel.v1y[f], vel.v1z[f]
			b.DV2.X[l], b.DV2.Y[l], b.DV2.Z[l] = vel.v2x[f], vel.v2y[f], vel.v2z[f]
			b.GeomID[l] = geomID
			b.PrimID[l] = uint32(f)
		}
	}
	return batches
}
