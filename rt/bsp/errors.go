package bsp

import "errors"

var (
	ErrOutOfMemory = errors.New("bsp: triangle arena budget exceeded")
	ErrCorrupted   = errors.New("bsp: internal build queue corrupted")
	ErrUnknown     = errors.New("bsp: unclassified triangle/plane colocation")
)
