package sim

import (
	"github.com/lixenwraith/binaural/vmath"
)

// Geometry is the optional acoustic-geometry capability. When configured,
// the simulator queries it once per source per pass. Absence of the
// capability is a valid configuration: every source then plays unoccluded.
type Geometry interface {
	// Occlusion returns how much direct sound passes from source to
	// listener: 1 fully audible, 0 fully blocked. Values outside [0,1]
	// are clamped by the simulator.
	Occlusion(listener, source vmath.Vec3) float64
}

// ReflectionEstimator is an optional extension of Geometry for coarse
// early-reflection energy. Implementations that cannot estimate reflections
// simply do not implement it; descriptors then carry no reflection data at
// all rather than a misleading zero.
type ReflectionEstimator interface {
	// ReflectionEnergy returns an energy gain in [0,1] for early
	// reflections arriving at the listener from this source.
	ReflectionEnergy(listener, source vmath.Vec3) float64
}
