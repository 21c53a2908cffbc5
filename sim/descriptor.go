package sim

import (
	"github.com/lixenwraith/binaural/scene"
	"github.com/lixenwraith/binaural/vmath"
)

// Descriptor carries the spatialization parameters for one source, derived
// from exactly one scene snapshot
type Descriptor struct {
	Source scene.SourceID

	// Direction is the unit vector from listener to source in the
	// listener's local frame (+Z ahead)
	Direction vmath.Vec3

	// Distance in world units between listener and source
	Distance float64

	// Attenuation is the distance gain in (0, 1]
	Attenuation float64

	// Occlusion is the direct-path transmission factor in [0, 1];
	// 1 when no geometry capability is configured
	Occlusion float64

	// HRTFBin is the azimuth bin the renderer should filter with, valid
	// when the simulator was configured with AzimuthBins > 0
	HRTFBin int

	// ReflectionGain is meaningful only when HasReflections is set
	HasReflections bool
	ReflectionGain float64
}

// DescriptorSet is the complete simulation output for one snapshot version.
// Sets are immutable after publication and always replaced wholesale; a set
// never mixes descriptors from different snapshot versions.
type DescriptorSet struct {
	Version uint64
	ByID    map[scene.SourceID]Descriptor
}

// Lookup returns the descriptor for id, if the set contains it
func (ds *DescriptorSet) Lookup(id scene.SourceID) (Descriptor, bool) {
	d, ok := ds.ByID[id]
	return d, ok
}
