package clouds

import "errors"

var (
	// ErrInvalidSize is returned for a frame or target with a non-positive dimension.
	ErrInvalidSize = errors.New("clouds: invalid size")

	// ErrIndexOutOfRange is returned when a mesh index references a missing vertex
	// or the index count is not a multiple of three.
	ErrIndexOutOfRange = errors.New("clouds: index out of range")

	// ErrEmptyShader is returned when the embedded shader source is empty.
	ErrEmptyShader = errors.New("clouds: shader source is empty")
)
