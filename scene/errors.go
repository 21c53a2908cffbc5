package scene

import (
	"errors"
)

// Sentinel errors
var (
	ErrTooManySources = errors.New("scene: source limit reached")
	ErrNotRetired     = errors.New("scene: release of a source that is not retired")
)
