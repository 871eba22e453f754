package tracer

import "errors"

var (
	ErrNoCamera         = errors.New("tracer: no camera defined")
	ErrInvalidFrameSize = errors.New("tracer: invalid frame dimensions")
)
