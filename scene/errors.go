package scene

import "errors"

var (
	ErrNoFaces          = errors.New("scene: mesh defines no faces")
	ErrFaceIndex        = errors.New("scene: face references vertex out of range")
	ErrVelocityMismatch = errors.New("scene: velocity count does not match vertex count")
)
