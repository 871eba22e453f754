package cmd

import (
	"bytes"
	"fmt"
	"math/rand"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/marcioAlmada/embree/geometry"
	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/scene"
	"github.com/marcioAlmada/embree/simd"
	"github.com/marcioAlmada/embree/types"
)

const benchBatchCount = 64

// benchSoup builds deterministic static and motion batches in front
// of the benchmark rays.
func benchSoup() ([]geometry.Triangle4, []geometry.MotionTriangle4) {
	rng := rand.New(rand.NewSource(1))
	randOffset := func() types.Vec3 {
		return types.XYZ(rng.Float32()-0.5, rng.Float32()-0.5, rng.Float32()-0.5)
	}

	n := benchBatchCount * geometry.BatchWidth
	tris := make([]geometry.Triangle, n)
	moving := make([]geometry.MotionTriangle, n)
	for i := range tris {
		c := types.XYZ(4*rng.Float32()-2, 4*rng.Float32()-2, -1-3*rng.Float32())
		tris[i] = geometry.Triangle{
			V0:     c,
			V1:     c.Add(randOffset()),
			V2:     c.Add(randOffset()),
			GeomID: 1,
			PrimID: uint32(i),
		}
		dv := randOffset()
		moving[i] = geometry.MotionTriangle{
			V0: tris[i].V0, V1: tris[i].V1, V2: tris[i].V2,
			DV0: dv, DV1: dv, DV2: dv,
			GeomID: 1, PrimID: uint32(i),
		}
	}

	batches := make([]geometry.Triangle4, benchBatchCount)
	motionBatches := make([]geometry.MotionTriangle4, benchBatchCount)
	for i := 0; i < benchBatchCount; i++ {
		batches[i] = geometry.PackTriangle4(tris[i*geometry.BatchWidth : (i+1)*geometry.BatchWidth])
		motionBatches[i] = geometry.PackMotionTriangle4(moving[i*geometry.BatchWidth : (i+1)*geometry.BatchWidth])
	}
	return batches, motionBatches
}

type benchResult struct {
	path    string
	rays    int64
	elapsed time.Duration
}

func measure(path string, raysPerIter, iters int, fn func()) benchResult {
	start := time.Now()
	for i := 0; i < iters; i++ {
		fn()
	}
	return benchResult{
		path:    path,
		rays:    int64(raysPerIter) * int64(iters),
		elapsed: time.Since(start),
	}
}

// Benchmark every intersector adapter path against a synthetic
// triangle soup.
func Bench(ctx *cli.Context) error {
	setupLogging(ctx)
	iters := ctx.Int("iterations")

	batches, motionBatches := benchSoup()
	sc := scene.New()
	static := geometry.NewIntersector4(sc, geometry.Config{})
	motion := geometry.NewMotionIntersector4(sc, geometry.Config{})

	newRay := func(tm float32) ray.Ray {
		r := ray.New(types.XYZ(0, 0, 1), types.XYZ(0, 0, -1))
		r.Time = tm
		return r
	}
	newPacket := func(tm float32) ray.Packet {
		p := ray.NewPacket()
		for k := 0; k < ray.PacketWidth; k++ {
			dx := float32(k%4)*0.2 - 0.3
			dy := float32(k/4)*0.2 - 0.1
			r := ray.New(types.XYZ(0, 0, 1), types.XYZ(dx, dy, -1))
			r.Time = tm
			p.SetRay(k, r)
		}
		return p
	}
	valid := simd.LaneMask(ray.PacketWidth)

	logger.Noticef("benchmarking %d adapter paths over %d batches, %d iterations each", 12, benchBatchCount, iters)
	results := []benchResult{
		measure("static/intersect1", 1, iters, func() {
			r := newRay(0)
			pre := geometry.Precompute(&r)
			for i := range batches {
				static.Intersect(pre, &r, &batches[i])
			}
		}),
		measure("static/occluded1", 1, iters, func() {
			r := newRay(0)
			pre := geometry.Precompute(&r)
			for i := range batches {
				if static.Occluded(pre, &r, &batches[i]) {
					break
				}
			}
		}),
		measure("static/intersectK", ray.PacketWidth, iters, func() {
			p := newPacket(0)
			pre := geometry.PrecomputePacket(valid, &p)
			for i := range batches {
				static.IntersectPacket(valid, pre, &p, &batches[i])
			}
		}),
		measure("static/occludedK", ray.PacketWidth, iters, func() {
			p := newPacket(0)
			pre := geometry.PrecomputePacket(valid, &p)
			alive := valid
			for i := range batches {
				alive &^= static.OccludedPacket(alive, pre, &p, &batches[i])
				if alive.None() {
					break
				}
			}
		}),
		measure("static/intersect1K", 1, iters, func() {
			p := newPacket(0)
			pre := geometry.PrecomputePacket(valid, &p)
			for i := range batches {
				static.IntersectLane(pre, &p, 0, &batches[i])
			}
		}),
		measure("static/occluded1K", 1, iters, func() {
			p := newPacket(0)
			pre := geometry.PrecomputePacket(valid, &p)
			for i := range batches {
				if static.OccludedLane(pre, &p, 0, &batches[i]) {
					break
				}
			}
		}),
		measure("motion/intersect1", 1, iters, func() {
			r := newRay(0.5)
			pre := geometry.Precompute(&r)
			for i := range motionBatches {
				motion.Intersect(pre, &r, &motionBatches[i])
			}
		}),
		measure("motion/occluded1", 1, iters, func() {
			r := newRay(0.5)
			pre := geometry.Precompute(&r)
			for i := range motionBatches {
				if motion.Occluded(pre, &r, &motionBatches[i]) {
					break
				}
			}
		}),
		measure("motion/intersectK", ray.PacketWidth, iters, func() {
			p := newPacket(0.5)
			pre := geometry.PrecomputePacket(valid, &p)
			for i := range motionBatches {
				motion.IntersectPacket(valid, pre, &p, &motionBatches[i])
			}
		}),
		measure("motion/occludedK", ray.PacketWidth, iters, func() {
			p := newPacket(0.5)
			pre := geometry.PrecomputePacket(valid, &p)
			alive := valid
			for i := range motionBatches {
				alive &^= motion.OccludedPacket(alive, pre, &p, &motionBatches[i])
				if alive.None() {
					break
				}
			}
		}),
		measure("motion/intersect1K", 1, iters, func() {
			p := newPacket(0.5)
			pre := geometry.PrecomputePacket(valid, &p)
			for i := range motionBatches {
				motion.IntersectLane(pre, &p, 0, &motionBatches[i])
			}
		}),
		measure("motion/occluded1K", 1, iters, func() {
			p := newPacket(0.5)
			pre := geometry.PrecomputePacket(valid, &p)
			for i := range motionBatches {
				if motion.OccludedLane(pre, &p, 0, &motionBatches[i]) {
					break
				}
			}
		}),
	}

	displayBenchStats(results)
	return nil
}

func displayBenchStats(results []benchResult) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Path", "Rays", "Time", "Mrays/s"})
	for _, res := range results {
		table.Append([]string{
			res.path,
			fmt.Sprintf("%d", res.rays),
			res.elapsed.String(),
			fmt.Sprintf("%.2f", float64(res.rays)/res.elapsed.Seconds()/1e6),
		})
	}
	table.Render()
	logger.Noticef("benchmark results\n%s", buf.String())
}
