package sim

import (
	"errors"
)

// Sentinel errors
var (
	ErrUnknownCurve = errors.New("sim: unknown attenuation curve")
)
