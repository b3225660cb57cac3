package rt

import "errors"

var (
	ErrBadState    = errors.New("rt: no scene bound")
	ErrCancelled   = errors.New("rt: processing cancelled")
	ErrOutOfMemory = errors.New("rt: task budget exceeded")
	ErrCorrupted   = errors.New("rt: internal state corrupted")
)
