package scene

import (
	"fmt"
	"sync/atomic"

	"github.com/lixenwraith/binaural/vmath"
)

// Synchronizer diffs the authoritative game-side scene once per frame and
// publishes immutable snapshots for the acoustic simulation.
//
// Thread assignment:
//   - Sync, Forget: game thread only (single writer)
//   - Release: game thread only; completion tokens from the render side are
//     ferried to it by the engine
//   - Latest: any thread (atomic pointer load)
//
// Removal is two-phase: a source that vanishes from the frame set stops
// appearing in snapshots immediately, but its slot stays retired until the
// renderer confirms completion via Release. Released slots then sit in
// quarantine for a configurable number of frames before reuse, so no
// in-flight descriptor can alias a recycled slot.
type Synchronizer struct {
	maxSources       int
	quarantineFrames uint64

	latest atomic.Pointer[Snapshot]

	version uint64
	frame   uint64

	byKey map[EmitterKey]SourceID
	byID  map[SourceID]EmitterKey
	gens  []uint32 // per-slot generation, index = slot

	retired    map[SourceID]struct{} // removed, awaiting render-side confirmation
	quarantine []quarantinedSlot
	free       []uint32

	seen map[EmitterKey]bool // scratch, reused across frames
}

type quarantinedSlot struct {
	slot  uint32
	frame uint64 // frame at which the slot entered quarantine
}

// SyncResult reports the per-frame diff alongside the published snapshot
type SyncResult struct {
	Snapshot *Snapshot
	Added    []Emitter  // emitters that appeared this frame, keys resolved in Snapshot
	AddedIDs []SourceID // IDs assigned to Added, index-aligned
	Removed  []SourceID // sources that vanished this frame (now retired)
}

// NewSynchronizer creates a synchronizer for at most maxSources concurrent
// sources. Released slots are reusable after quarantineFrames further Sync
// calls.
func NewSynchronizer(maxSources, quarantineFrames int) *Synchronizer {
	if maxSources < 1 {
		maxSources = 1
	}
	if quarantineFrames < 0 {
		quarantineFrames = 0
	}
	return &Synchronizer{
		maxSources:       maxSources,
		quarantineFrames: uint64(quarantineFrames),
		byKey:            make(map[EmitterKey]SourceID, maxSources),
		byID:             make(map[SourceID]EmitterKey, maxSources),
		retired:          make(map[SourceID]struct{}),
		seen:             make(map[EmitterKey]bool, maxSources),
	}
}

// Sync ingests one game frame worth of emitters plus the listener pose,
// assigns IDs to new emitters, retires vanished ones, and publishes a fresh
// snapshot. ErrTooManySources is returned when a new emitter cannot be
// admitted; admitted emitters are still published in that case.
func (s *Synchronizer) Sync(emitters []Emitter, listener vmath.Transform) (SyncResult, error) {
	s.frame++
	s.reclaimQuarantine()

	var res SyncResult
	var err error

	clear(s.seen)
	poses := make([]SourcePose, 0, len(emitters))

	for _, em := range emitters {
		if s.seen[em.Key] {
			// Duplicate key within one frame: first occurrence wins
			continue
		}
		s.seen[em.Key] = true

		id, known := s.byKey[em.Key]
		if !known {
			var ok bool
			id, ok = s.allocate(em.Key)
			if !ok {
				if err == nil {
					err = fmt.Errorf("%w: limit %d", ErrTooManySources, s.maxSources)
				}
				continue
			}
			res.Added = append(res.Added, em)
			res.AddedIDs = append(res.AddedIDs, id)
		}
		poses = append(poses, SourcePose{ID: id, Transform: em.Transform})
	}

	// Emitters that were live last frame but absent now are retired
	for key, id := range s.byKey {
		if !s.seen[key] {
			delete(s.byKey, key)
			delete(s.byID, id)
			s.retired[id] = struct{}{}
			res.Removed = append(res.Removed, id)
		}
	}

	s.version++
	snap := &Snapshot{
		Version:  s.version,
		Listener: listener,
		Sources:  poses,
	}
	s.latest.Store(snap)
	res.Snapshot = snap
	return res, err
}

// Latest returns the most recently published snapshot, or nil before the
// first Sync
func (s *Synchronizer) Latest() *Snapshot {
	return s.latest.Load()
}

// Release confirms the render side has finished with a retired source.
// The slot enters quarantine and becomes reusable after the configured
// number of frames, with a bumped generation.
func (s *Synchronizer) Release(id SourceID) error {
	if _, ok := s.retired[id]; !ok {
		return fmt.Errorf("%w: %v", ErrNotRetired, id)
	}
	delete(s.retired, id)
	s.gens[id.Slot]++
	s.quarantine = append(s.quarantine, quarantinedSlot{slot: id.Slot, frame: s.frame})
	return nil
}

// Forget removes a just-admitted source whose feed could not be opened,
// before any descriptor or voice exists for it. The slot goes straight to
// quarantine.
func (s *Synchronizer) Forget(key EmitterKey) {
	id, ok := s.byKey[key]
	if !ok {
		return
	}
	delete(s.byKey, key)
	delete(s.byID, id)
	s.gens[id.Slot]++
	s.quarantine = append(s.quarantine, quarantinedSlot{slot: id.Slot, frame: s.frame})
}

// Live returns the number of currently live sources
func (s *Synchronizer) Live() int {
	return len(s.byKey)
}

// Retired returns the number of sources awaiting render-side confirmation
func (s *Synchronizer) Retired() int {
	return len(s.retired)
}

func (s *Synchronizer) allocate(key EmitterKey) (SourceID, bool) {
	if len(s.byKey) >= s.maxSources {
		return SourceID{}, false
	}

	var slot uint32
	if n := len(s.free); n > 0 {
		slot = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		slot = uint32(len(s.gens))
		s.gens = append(s.gens, 1) // generation 0 is reserved for the zero ID
	}

	id := SourceID{Slot: slot, Gen: s.gens[slot]}
	s.byKey[key] = id
	s.byID[id] = key
	return id, true
}

func (s *Synchronizer) reclaimQuarantine() {
	n := 0
	for _, q := range s.quarantine {
		if s.frame-q.frame > s.quarantineFrames {
			s.free = append(s.free, q.slot)
		} else {
			s.quarantine[n] = q
			n++
		}
	}
	s.quarantine = s.quarantine[:n]
}
