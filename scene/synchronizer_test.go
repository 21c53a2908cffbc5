package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/lixenwraith/binaural/vmath"
)

func pose(x, y, z float64) vmath.Transform {
	tr := vmath.IdentityTransform()
	tr.Position = vmath.Vec3{X: x, Y: y, Z: z}
	return tr
}

func TestSyncAssignsIDs(t *testing.T) {
	s := NewSynchronizer(8, 1)

	res, err := s.Sync([]Emitter{
		{Key: "door", Transform: pose(1, 0, 0)},
		{Key: "radio", Transform: pose(0, 0, 5)},
	}, vmath.IdentityTransform())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Added) != 2 || len(res.AddedIDs) != 2 {
		t.Fatalf("expected 2 added sources, got %d/%d", len(res.Added), len(res.AddedIDs))
	}
	if res.AddedIDs[0] == res.AddedIDs[1] {
		t.Fatal("distinct emitters share a SourceID")
	}
	for _, id := range res.AddedIDs {
		if id.IsZero() {
			t.Fatal("assigned ID is the zero ID")
		}
	}

	// Second frame with the same keys adds nothing
	res, err = s.Sync([]Emitter{
		{Key: "door", Transform: pose(2, 0, 0)},
		{Key: "radio", Transform: pose(0, 0, 5)},
	}, vmath.IdentityTransform())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Added) != 0 || len(res.Removed) != 0 {
		t.Fatalf("steady frame produced diff: added=%d removed=%d", len(res.Added), len(res.Removed))
	}
}

func TestSnapshotVersionsStrictlyIncrease(t *testing.T) {
	s := NewSynchronizer(4, 0)

	var last uint64
	for i := 0; i < 100; i++ {
		res, _ := s.Sync(nil, vmath.IdentityTransform())
		if res.Snapshot.Version <= last {
			t.Fatalf("version not strictly increasing: %d after %d", res.Snapshot.Version, last)
		}
		last = res.Snapshot.Version
	}
}

func TestSnapshotIsConsistent(t *testing.T) {
	s := NewSynchronizer(4, 0)

	res, _ := s.Sync([]Emitter{{Key: "a", Transform: pose(1, 2, 3)}}, pose(9, 9, 9))
	snap := res.Snapshot

	// Later frames must not mutate an already published snapshot
	s.Sync([]Emitter{{Key: "a", Transform: pose(7, 7, 7)}}, pose(0, 0, 0))

	if snap.Listener.Position != (vmath.Vec3{X: 9, Y: 9, Z: 9}) {
		t.Fatal("published snapshot listener mutated")
	}
	sp, ok := snap.Lookup(res.AddedIDs[0])
	if !ok || sp.Transform.Position != (vmath.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatal("published snapshot source pose mutated")
	}
}

func TestRemovalIsTwoPhase(t *testing.T) {
	s := NewSynchronizer(4, 0)

	res, _ := s.Sync([]Emitter{{Key: "a", Transform: pose(0, 0, 1)}}, vmath.IdentityTransform())
	id := res.AddedIDs[0]

	res, _ = s.Sync(nil, vmath.IdentityTransform())
	if len(res.Removed) != 1 || res.Removed[0] != id {
		t.Fatalf("expected removal of %v, got %v", id, res.Removed)
	}
	if len(res.Snapshot.Sources) != 0 {
		t.Fatal("removed source still present in snapshot")
	}
	if s.Retired() != 1 {
		t.Fatalf("expected 1 retired source, got %d", s.Retired())
	}

	// Until Release, the slot must not come back even under pressure
	for i := 0; i < 10; i++ {
		res, _ = s.Sync([]Emitter{{Key: EmitterKey(fmt.Sprintf("k%d", i)), Transform: pose(0, 0, 1)}}, vmath.IdentityTransform())
		for _, nid := range res.AddedIDs {
			if nid.Slot == id.Slot && nid.Gen == id.Gen {
				t.Fatal("retired SourceID reused before Release")
			}
		}
		s.Sync(nil, vmath.IdentityTransform())
	}

	if err := s.Release(id); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := s.Release(id); !errors.Is(err, ErrNotRetired) {
		t.Fatalf("double release should fail with ErrNotRetired, got %v", err)
	}
}

func TestReuseBumpsGeneration(t *testing.T) {
	s := NewSynchronizer(1, 0)

	res, _ := s.Sync([]Emitter{{Key: "a", Transform: pose(0, 0, 1)}}, vmath.IdentityTransform())
	first := res.AddedIDs[0]

	s.Sync(nil, vmath.IdentityTransform())
	if err := s.Release(first); err != nil {
		t.Fatal(err)
	}

	// One more frame lets the slot clear quarantine (quarantineFrames=0
	// still defers reuse to the next frame)
	s.Sync(nil, vmath.IdentityTransform())

	res, err := s.Sync([]Emitter{{Key: "b", Transform: pose(0, 0, 1)}}, vmath.IdentityTransform())
	if err != nil {
		t.Fatalf("slot should be free again: %v", err)
	}
	second := res.AddedIDs[0]

	if second.Slot != first.Slot {
		t.Fatalf("expected slot reuse with maxSources=1, got slot %d then %d", first.Slot, second.Slot)
	}
	if second.Gen <= first.Gen {
		t.Fatalf("generation not bumped on reuse: %d then %d", first.Gen, second.Gen)
	}
}

func TestQuarantineDelaysReuse(t *testing.T) {
	const quarantine = 3
	s := NewSynchronizer(1, quarantine)

	res, _ := s.Sync([]Emitter{{Key: "a", Transform: pose(0, 0, 1)}}, vmath.IdentityTransform())
	id := res.AddedIDs[0]
	s.Sync(nil, vmath.IdentityTransform())
	s.Release(id)

	// While quarantined, the only slot is unavailable
	for i := 0; i < quarantine; i++ {
		_, err := s.Sync([]Emitter{{Key: "b", Transform: pose(0, 0, 1)}}, vmath.IdentityTransform())
		if !errors.Is(err, ErrTooManySources) {
			t.Fatalf("frame %d: expected ErrTooManySources during quarantine, got %v", i, err)
		}
		// "b" was rejected, so it must not linger as a live source
		if s.Live() != 0 {
			t.Fatalf("rejected emitter counted as live")
		}
	}

	_, err := s.Sync([]Emitter{{Key: "b", Transform: pose(0, 0, 1)}}, vmath.IdentityTransform())
	if err != nil {
		t.Fatalf("slot should leave quarantine after %d frames: %v", quarantine, err)
	}
}

func TestSourceLimitRejects(t *testing.T) {
	s := NewSynchronizer(2, 0)

	emitters := []Emitter{
		{Key: "a", Transform: pose(0, 0, 1)},
		{Key: "b", Transform: pose(0, 0, 2)},
		{Key: "c", Transform: pose(0, 0, 3)},
	}
	res, err := s.Sync(emitters, vmath.IdentityTransform())
	if !errors.Is(err, ErrTooManySources) {
		t.Fatalf("expected ErrTooManySources, got %v", err)
	}
	if len(res.Added) != 2 || len(res.Snapshot.Sources) != 2 {
		t.Fatalf("admitted sources should still publish: added=%d snapshot=%d",
			len(res.Added), len(res.Snapshot.Sources))
	}
}

func TestForgetFreesSlot(t *testing.T) {
	s := NewSynchronizer(1, 0)

	s.Sync([]Emitter{{Key: "a", Transform: pose(0, 0, 1)}}, vmath.IdentityTransform())
	s.Forget("a")
	if s.Live() != 0 {
		t.Fatalf("forgotten source still live")
	}

	s.Sync(nil, vmath.IdentityTransform())
	_, err := s.Sync([]Emitter{{Key: "b", Transform: pose(0, 0, 1)}}, vmath.IdentityTransform())
	if err != nil {
		t.Fatalf("slot should be reusable after Forget: %v", err)
	}
}

// TestChurnNeverAliasesRetiredIDs hammers the add/remove/release cycle the
// way a busy game scene would, with a fake render side confirming removals
// out of band, and asserts a recycled slot never resurrects a retired ID.
func TestChurnNeverAliasesRetiredIDs(t *testing.T) {
	const (
		maxSources = 16
		frames     = 5000
	)

	s := NewSynchronizer(maxSources, 2)
	rng := rand.New(rand.NewSource(42))

	live := map[EmitterKey]SourceID{}
	pendingRelease := []SourceID{}
	everIssued := map[SourceID]bool{}

	for frame := 0; frame < frames; frame++ {
		// Random frame composition: keep some, drop some, add some
		emitters := make([]Emitter, 0, maxSources)
		for key := range live {
			if rng.Float64() < 0.85 {
				emitters = append(emitters, Emitter{Key: key, Transform: pose(rng.Float64(), 0, rng.Float64())})
			}
		}
		for i := 0; rng.Float64() < 0.5 && i < 4; i++ {
			key := EmitterKey(fmt.Sprintf("src-%d-%d", frame, i))
			emitters = append(emitters, Emitter{Key: key, Transform: pose(1, 0, 1)})
		}

		res, err := s.Sync(emitters, vmath.IdentityTransform())
		if err != nil && !errors.Is(err, ErrTooManySources) {
			t.Fatalf("frame %d: %v", frame, err)
		}

		for i, em := range res.Added {
			id := res.AddedIDs[i]
			if everIssued[id] {
				t.Fatalf("frame %d: SourceID %v issued twice", frame, id)
			}
			everIssued[id] = true
			live[em.Key] = id
		}
		for _, id := range res.Removed {
			for key, lid := range live {
				if lid == id {
					delete(live, key)
				}
			}
			pendingRelease = append(pendingRelease, id)
		}

		// The fake renderer confirms a random prefix of pending removals,
		// lagging behind like a real fade-out would
		n := rng.Intn(len(pendingRelease) + 1)
		for _, id := range pendingRelease[:n] {
			if err := s.Release(id); err != nil {
				t.Fatalf("frame %d: release %v: %v", frame, id, err)
			}
		}
		pendingRelease = pendingRelease[n:]

		// Every snapshot entry must be a currently live ID
		for _, sp := range res.Snapshot.Sources {
			found := false
			for _, lid := range live {
				if lid == sp.ID {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("frame %d: snapshot references non-live source %v", frame, sp.ID)
			}
		}
	}
}
