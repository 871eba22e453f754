package tracer

import (
	"github.com/chewxy/math32"

	"github.com/marcioAlmada/embree/ray"
	"github.com/marcioAlmada/embree/types"
)

// Camera shoots primary rays through a pinhole projection. The four
// frustum corner directions are precomputed once; per pixel rays are
// interpolated between them.
type Camera struct {
	Position types.Vec3

	// Frustum corner ray directions: TL, TR, BL, BR.
	frustum [4]types.Vec3
}

// NewCamera creates a pinhole camera at position looking at lookAt.
// fov is the vertical field of view in degrees.
func NewCamera(position, lookAt, up types.Vec3, fov, aspect float32) *Camera {
	fwd := lookAt.Sub(position).Normalize()
	right := fwd.Cross(up).Normalize()
	trueUp := right.Cross(fwd)

	halfH := math32.Tan(0.5 * fov * math32.Pi / 180)
	halfW := halfH * aspect

	c := &Camera{Position: position}
	c.frustum[0] = fwd.Sub(right.Mul(halfW)).Add(trueUp.Mul(halfH))
	c.frustum[1] = fwd.Add(right.Mul(halfW)).Add(trueUp.Mul(halfH))
	c.frustum[2] = fwd.Sub(right.Mul(halfW)).Sub(trueUp.Mul(halfH))
	c.frustum[3] = fwd.Add(right.Mul(halfW)).Sub(trueUp.Mul(halfH))
	return c
}

// RayThrough returns the primary ray through the center of pixel
// (x, y) of a w by h frame.
func (c *Camera) RayThrough(x, y, w, h int) ray.Ray {
	sx := (float32(x) + 0.5) / float32(w)
	sy := (float32(y) + 0.5) / float32(h)

	top := c.frustum[0].Add(c.frustum[1].Sub(c.frustum[0]).Mul(sx))
	bottom := c.frustum[2].Add(c.frustum[3].Sub(c.frustum[2]).Mul(sx))
	dir := top.Add(bottom.Sub(top).Mul(sy))
	return ray.New(c.Position, dir)
}
