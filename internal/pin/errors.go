package pin

import "errors"

// State-machine violations. Both are recoverable: the caller should re-check
// List() and retry the intended transition.
var (
	ErrAlreadyPinned = errors.New("window is already pinned")
	ErrNotPinned     = errors.New("window is not pinned")
)
