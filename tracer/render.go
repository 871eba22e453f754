package tracer

import (
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"

	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/simd"
	"github.com/marcioAlmada/embree/types"
)

// Offset applied to shadow ray origins to keep them off the surface
// they start from.
const shadowBias float32 = 1e-3

// RenderOptions control the demo frame renderer.
type RenderOptions struct {
	// Frame dims.
	FrameW int
	FrameH int

	// Trace 8-wide packets of horizontally adjacent pixels instead of
	// individual rays.
	Packets bool

	// Shutter time in [0, 1] applied to every primary ray.
	Time float32

	// Point light position for the shadow pass.
	Light types.Vec3

	// Number of render workers. Defaults to the number of CPUs.
	NumWorkers int
}

// WorkerStat describes the share of the frame one worker rendered.
type WorkerStat struct {
	Rows       int
	RenderTime time.Duration
}

// FrameStats aggregates counters across a frame render. Shadow rays
// are not counted as rays; they show up in Occluded.
type FrameStats struct {
	Rays       int64
	Hits       int64
	Occluded   int64
	Workers    []WorkerStat
	RenderTime time.Duration
}

// RenderFrame renders the scene into an RGBA frame, splitting rows
// across a worker pool. Hits are shaded by their barycentrics scaled
// with the normal cosine and darkened when the hit point is shadowed
// from the light.
func (t *Tracer) RenderFrame(cam *Camera, opts RenderOptions) (*image.RGBA, FrameStats, error) {
	var stats FrameStats
	if cam == nil {
		return nil, stats, ErrNoCamera
	}
	if opts.FrameW <= 0 || opts.FrameH <= 0 {
		return nil, stats, ErrInvalidFrameSize
	}
	workers := opts.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.FrameW, opts.FrameH))
	rows := make(chan int, opts.FrameH)
	for y := 0; y < opts.FrameH; y++ {
		rows <- y
	}
	close(rows)

	var rays, hits, occluded int64
	stats.Workers = make([]WorkerStat, workers)
	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			workerStart := time.Now()
			var nRays, nHits, nOccluded int64
			nRows := 0
			for y := range rows {
				var r, h, o int64
				if opts.Packets {
					r, h, o = t.renderRowPackets(img, cam, y, opts)
				} else {
					r, h, o = t.renderRow(img, cam, y, opts)
				}
				nRays += r
				nHits += h
				nOccluded += o
				nRows++
			}
			atomic.AddInt64(&rays, nRays)
			atomic.AddInt64(&hits, nHits)
			atomic.AddInt64(&occluded, nOccluded)
			stats.Workers[w] = WorkerStat{Rows: nRows, RenderTime: time.Since(workerStart)}
		}(w)
	}
	wg.Wait()

	stats.Rays = rays
	stats.Hits = hits
	stats.Occluded = occluded
	stats.RenderTime = time.Since(start)
	t.logger.Debugf("rendered %dx%d frame with %d workers in %d ms", opts.FrameW, opts.FrameH, workers, stats.RenderTime.Nanoseconds()/1e6)
	return img, stats, nil
}

func (t *Tracer) renderRow(img *image.RGBA, cam *Camera, y int, opts RenderOptions) (rays, hits, occluded int64) {
	for x := 0; x < opts.FrameW; x++ {
		r := cam.RayThrough(x, y, opts.FrameW, opts.FrameH)
		r.Time = opts.Time
		rays++
		if !t.Intersect(&r) {
			img.SetRGBA(x, y, color.RGBA{A: 255})
			continue
		}
		hits++

		shadowed := t.Occluded(shadowRay(&r, opts.Light))
		if shadowed {
			occluded++
		}
		img.SetRGBA(x, y, shadeHit(&r, shadowed))
	}
	return rays, hits, occluded
}

func (t *Tracer) renderRowPackets(img *image.RGBA, cam *Camera, y int, opts RenderOptions) (rays, hits, occluded int64) {
	for x := 0; x < opts.FrameW; x += ray.PacketWidth {
		n := opts.FrameW - x
		if n > ray.PacketWidth {
			n = ray.PacketWidth
		}
		p := ray.NewPacket()
		for k := 0; k < n; k++ {
			r := cam.RayThrough(x+k, y, opts.FrameW, opts.FrameH)
			r.Time = opts.Time
			p.SetRay(k, r)
		}
		rays += int64(n)
		t.IntersectPacket(simd.LaneMask(n), &p)

		// One shadow packet for the lanes that hit.
		var hitMask simd.Mask
		shadow := ray.NewPacket()
		for k := 0; k < n; k++ {
			if !p.HasHit(k) {
				continue
			}
			hitMask |= simd.Mask(1) << uint(k)
			lane := p.Lane(k)
			shadow.SetRay(k, *shadowRay(&lane, opts.Light))
		}
		var blocked simd.Mask
		if hitMask.Any() {
			blocked = t.OccludedPacket(hitMask, &shadow)
		}

		for k := 0; k < n; k++ {
			if !p.HasHit(k) {
				img.SetRGBA(x+k, y, color.RGBA{A: 255})
				continue
			}
			hits++
			if blocked.Has(k) {
				occluded++
			}
			lane := p.Lane(k)
			img.SetRGBA(x+k, y, shadeHit(&lane, blocked.Has(k)))
		}
	}
	return rays, hits, occluded
}

// shadowRay builds the segment from the committed hit point of r to
// the light. The light sits at t=1, outside the strict interval, so
// it never occludes itself.
func shadowRay(r *ray.Ray, light types.Vec3) *ray.Ray {
	hitP := r.Org.Add(r.Dir.Mul(r.TFar))
	s := ray.New(hitP, light.Sub(hitP))
	s.TNear = shadowBias
	s.TFar = 1
	s.Time = r.Time
	return &s
}

func shadeHit(r *ray.Ray, shadowed bool) color.RGBA {
	cos := math32.Abs(r.Ng.Normalize().Dot(r.Dir.Normalize()))
	scale := cos * 255
	if shadowed {
		scale *= 0.25
	}
	w := 1 - r.U - r.V
	return color.RGBA{
		R: channel(r.U * scale),
		G: channel(r.V * scale),
		B: channel(w * scale),
		A: 255,
	}
}

func channel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
