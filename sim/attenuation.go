package sim

import (
	"fmt"
)

// Curve selects the distance attenuation model
type Curve int

const (
	// CurveInverse is inverse-distance rolloff: gain = min/d
	CurveInverse Curve = iota
	// CurveInverseSquare is inverse-square rolloff: gain = (min/d)^2
	CurveInverseSquare
)

// ParseCurve maps a configuration string to a Curve
func ParseCurve(name string) (Curve, error) {
	switch name {
	case "inverse", "inverse-linear":
		return CurveInverse, nil
	case "inverse-square":
		return CurveInverseSquare, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurve, name)
	}
}

func (c Curve) String() string {
	switch c {
	case CurveInverse:
		return "inverse"
	case CurveInverseSquare:
		return "inverse-square"
	default:
		return "unknown"
	}
}

// Gain evaluates the curve at distance dist with the given minimum-distance
// clamp. The result is monotonic non-increasing in dist, equals 1.0 at or
// inside minDist, and stays in (0, 1].
func (c Curve) Gain(dist, minDist float64) float64 {
	if minDist <= 0 {
		minDist = defaultMinDistance
	}
	if dist < minDist {
		dist = minDist
	}
	g := minDist / dist
	if c == CurveInverseSquare {
		g *= g
	}
	return g
}

const defaultMinDistance = 1.0
