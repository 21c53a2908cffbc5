package sim

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/binaural/scene"
	"github.com/lixenwraith/binaural/vmath"
)

// SnapshotSource supplies the latest published scene snapshot.
// *scene.Synchronizer satisfies it.
type SnapshotSource interface {
	Latest() *scene.Snapshot
}

// Config holds the propagation parameters
type Config struct {
	// MinDistance clamps the attenuation curve to avoid the near-zero
	// singularity; also the reference distance for gain 1.0
	MinDistance float64

	// Curve selects the rolloff model
	Curve Curve

	// AzimuthBins is the HRTF bank resolution the renderer uses; 0 when
	// panning is used instead, leaving Descriptor.HRTFBin at zero
	AzimuthBins int
}

// Stats are the simulator's observable counters
type Stats struct {
	Passes        uint64 // completed simulation passes
	DroppedPasses uint64 // passes discarded because a newer snapshot arrived mid-pass
}

// Simulator turns scene snapshots into descriptor sets. It is the bridge
// between the game rate and the audio rate: it may lag behind either side,
// but it never publishes a torn or mixed-version set.
//
// Run it on a dedicated goroutine via Start/Stop, or step it inline from
// the render loop with Step.
type Simulator struct {
	cfg Config
	src SnapshotSource
	geo Geometry

	out         atomic.Pointer[DescriptorSet]
	lastVersion uint64 // only touched by the stepping goroutine

	passes  atomic.Uint64
	dropped atomic.Uint64

	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// New creates a simulator reading snapshots from src. geo may be nil, in
// which case every source is fully unoccluded and no reflection data is
// produced.
func New(cfg Config, src SnapshotSource, geo Geometry) *Simulator {
	if cfg.MinDistance <= 0 {
		cfg.MinDistance = defaultMinDistance
	}
	return &Simulator{
		cfg:      cfg,
		src:      src,
		geo:      geo,
		stopChan: make(chan struct{}),
	}
}

// Descriptors returns the latest complete descriptor set, or nil before the
// first pass. Safe from any thread.
func (s *Simulator) Descriptors() *DescriptorSet {
	return s.out.Load()
}

// Stats returns the pass counters. Safe from any thread.
func (s *Simulator) Stats() Stats {
	return Stats{
		Passes:        s.passes.Load(),
		DroppedPasses: s.dropped.Load(),
	}
}

// Step runs at most one simulation pass against the latest snapshot.
// Returns true when a new descriptor set was published. A pass overtaken by
// a newer snapshot is dropped wholesale and counted, never partially
// applied.
func (s *Simulator) Step() bool {
	snap := s.src.Latest()
	if snap == nil || snap.Version == s.lastVersion {
		return false
	}

	set := &DescriptorSet{
		Version: snap.Version,
		ByID:    make(map[scene.SourceID]Descriptor, len(snap.Sources)),
	}

	refl, hasRefl := s.geo.(ReflectionEstimator)
	for _, sp := range snap.Sources {
		d := s.describe(snap.Listener, sp)
		if hasRefl {
			d.HasReflections = true
			d.ReflectionGain = vmath.Clamp(refl.ReflectionEnergy(snap.Listener.Position, sp.Transform.Position), 0, 1)
		}
		set.ByID[sp.ID] = d
	}

	// A newer snapshot racing past this pass invalidates the whole set:
	// publishing it would hand the renderer stale poses as fresh data
	if latest := s.src.Latest(); latest != nil && latest.Version != snap.Version {
		s.dropped.Add(1)
		return false
	}

	s.out.Store(set)
	s.lastVersion = snap.Version
	s.passes.Add(1)
	return true
}

// describe computes one source's descriptor from the listener pose
func (s *Simulator) describe(listener vmath.Transform, sp scene.SourcePose) Descriptor {
	local := listener.ToLocal(sp.Transform.Position)
	dist := vmath.V3Mag(local)

	dir := vmath.Vec3{Z: 1} // source at the listener position plays as "ahead"
	if dist > 0 {
		dir = vmath.V3Scale(local, 1/dist)
	}

	occl := 1.0
	if s.geo != nil {
		occl = vmath.Clamp(s.geo.Occlusion(listener.Position, sp.Transform.Position), 0, 1)
	}

	d := Descriptor{
		Source:      sp.ID,
		Direction:   dir,
		Distance:    dist,
		Attenuation: s.cfg.Curve.Gain(dist, s.cfg.MinDistance),
		Occlusion:   occl,
	}
	if s.cfg.AzimuthBins > 0 {
		d.HRTFBin = AzimuthBin(dir, s.cfg.AzimuthBins)
	}
	return d
}

// AzimuthBin maps a listener-local unit direction to one of n azimuth bins.
// Bin 0 starts at -pi (directly behind, toward the left half plane); the
// center of bin n/2 is straight ahead.
func AzimuthBin(dir vmath.Vec3, n int) int {
	az := math.Atan2(dir.X, dir.Z) // 0 ahead, +pi/2 right, ±pi behind
	bin := int((az + math.Pi) / (2 * math.Pi) * float64(n))
	if bin < 0 {
		bin = 0
	}
	if bin >= n {
		bin = n - 1
	}
	return bin
}

// Start launches a worker that steps the simulator every interval.
// Use when the simulation runs at its own rate rather than being driven
// from the render loop. A stopped simulator can be started again.
func (s *Simulator) Start(interval time.Duration) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	// Fresh channel per cycle; the previous one is closed and stays closed
	s.stopChan = make(chan struct{})
	s.stopOnce = sync.Once{}
	s.interval = interval
	s.wg.Add(1)
	go s.loop()
}

// Stop halts the worker. Idempotent.
func (s *Simulator) Stop() {
	if !s.running.Load() {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.running.Store(false)
}

func (s *Simulator) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Step()
		}
	}
}
