package scene

import (
	"github.com/lixenwraith/binaural/vmath"
)

// Emitter is one entry of the per-frame scene feed: a stable application
// key plus the emitter's current pose
type Emitter struct {
	Key       EmitterKey
	Transform vmath.Transform
}

// SourcePose is a resolved source inside a snapshot
type SourcePose struct {
	ID        SourceID
	Transform vmath.Transform
}

// Snapshot is an immutable capture of the scene at one game frame.
// Version is strictly increasing across snapshots from one synchronizer.
// A snapshot is never mutated after publication; consumers hold the pointer
// for as long as they need a consistent view.
type Snapshot struct {
	Version  uint64
	Listener vmath.Transform
	Sources  []SourcePose
}

// Lookup returns the pose for id, if present
func (s *Snapshot) Lookup(id SourceID) (SourcePose, bool) {
	for _, sp := range s.Sources {
		if sp.ID == id {
			return sp, true
		}
	}
	return SourcePose{}, false
}
