package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/lixenwraith/binaural/feed"
	"github.com/lixenwraith/binaural/scene"
	"github.com/lixenwraith/binaural/sim"
	"github.com/lixenwraith/binaural/vmath"
)

// FeedProvider is the decode-layer boundary. The engine asks it for a
// mono sample feed whenever a new emitter key appears in a scene sync.
// Feeds must match the engine sample rate; the engine never resamples.
type FeedProvider interface {
	OpenFeed(key scene.EmitterKey) (feed.Feed, error)
}

// FeedProviderFunc adapts a function to the FeedProvider interface
type FeedProviderFunc func(key scene.EmitterKey) (feed.Feed, error)

func (f FeedProviderFunc) OpenFeed(key scene.EmitterKey) (feed.Feed, error) {
	return f(key)
}

// Engine is the public entry point of the pipeline. The game thread calls
// SyncScene once per frame; the audio sink drains rendered stereo blocks
// through Stream or Read. All cross-thread traffic goes through the
// command queue, atomic snapshot pointers and the block ring, so neither
// side ever blocks on the other.
type Engine struct {
	cfg      *Config
	provider FeedProvider

	sync     *scene.Synchronizer
	sim      *sim.Simulator
	renderer *Renderer
	metrics  *Metrics

	// Sink-goroutine private partial-block cursor
	cur    *Block
	curOff int

	readBuf   [][2]float64
	byteBuf   []byte
	byteFill  int
	byteTotal int

	logger  *slog.Logger
	running atomic.Bool
}

// NewEngine validates cfg (nil selects DefaultConfig) and wires the
// pipeline. geo may be nil when no occlusion geometry is available;
// provider may be nil for an engine that never attaches live sources.
func NewEngine(cfg *Config, provider FeedProvider, geo sim.Geometry) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		provider: provider,
		metrics:  &Metrics{},
		logger:   slog.Default(),
	}

	e.sync = scene.NewSynchronizer(cfg.MaxSources, cfg.QuarantineFrames)

	simCfg := sim.Config{
		MinDistance: cfg.MinDistance,
		Curve:       cfg.curve(),
	}
	if cfg.HRTF {
		simCfg.AzimuthBins = cfg.HRTFAzimuthBins
	}
	e.sim = sim.New(simCfg, e.sync, geo)

	var bank *hrtfBank
	if cfg.HRTF {
		bank = newHRTFBank(cfg.HRTFAzimuthBins, cfg.HRTFTaps, cfg.SampleRate)
	}
	e.renderer = newRenderer(cfg, e.metrics, e.sim, bank)
	if cfg.SimEveryNBlocks > 0 {
		e.renderer.simStep = e.sim.Step
		e.renderer.simEvery = cfg.SimEveryNBlocks
	}

	e.readBuf = make([][2]float64, cfg.BlockSize)
	e.byteBuf = make([]byte, cfg.BlockSize*4)

	return e, nil
}

// SetLogger replaces the control-path logger. The render path never logs.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Start launches the render loop and, unless the simulation is configured
// to run inline with rendering, the simulation worker
func (e *Engine) Start() error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrEngineRunning
	}
	e.renderer.Start()
	if e.cfg.SimEveryNBlocks == 0 {
		e.sim.Start(e.cfg.SimInterval)
	}
	e.logger.Info("audio engine started",
		"sample_rate", e.cfg.SampleRate,
		"block_size", e.cfg.BlockSize,
		"hrtf", e.cfg.HRTF)
	return nil
}

// Stop halts the workers. Blocks rendered but not yet consumed are
// discarded.
func (e *Engine) Stop() error {
	if !e.running.CompareAndSwap(true, false) {
		return ErrEngineNotRunning
	}
	if e.cfg.SimEveryNBlocks == 0 {
		e.sim.Stop()
	}
	e.renderer.Stop()
	e.logger.Info("audio engine stopped")
	return nil
}

// SyncScene publishes the frame's emitter poses and listener transform.
// New emitter keys get a feed opened and a voice created; vanished keys
// begin the retire handshake. Call it from one goroutine only, once per
// game frame.
//
// Per-emitter failures are joined into the returned error; the rest of
// the sync still takes effect.
func (e *Engine) SyncScene(emitters []scene.Emitter, listener vmath.Transform) error {
	e.collectReleased()

	res, err := e.sync.Sync(emitters, listener)
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}

	for i, em := range res.Added {
		id := res.AddedIDs[i]
		if err := e.attach(em, id); err != nil {
			e.sync.Forget(em.Key)
			e.logger.Warn("source rejected", "key", em.Key, "error", err)
			errs = append(errs, fmt.Errorf("emitter %q: %w", em.Key, err))
		}
	}

	for _, id := range res.Removed {
		// Best effort: if the queue is full the voice still fades out
		// on its own once the descriptor set stops carrying the source
		_ = e.renderer.enqueue(voiceCommand{op: opRemove, id: id})
	}

	return errors.Join(errs...)
}

func (e *Engine) attach(em scene.Emitter, id scene.SourceID) error {
	if e.provider == nil {
		return ErrNoFeedProvider
	}
	src, err := e.provider.OpenFeed(em.Key)
	if err != nil {
		return err
	}
	if src == nil {
		return ErrNilFeed
	}
	f := src.Format()
	if f.SampleRate != e.cfg.SampleRate {
		return fmt.Errorf("%w: feed %d Hz, engine %d Hz",
			ErrSampleRateMismatch, f.SampleRate, e.cfg.SampleRate)
	}
	if f.Channels != 1 {
		return fmt.Errorf("%w: feed has %d channels, want mono",
			ErrChannelMismatch, f.Channels)
	}
	if err := e.renderer.enqueue(voiceCommand{op: opAdd, id: id, src: src}); err != nil {
		return err
	}
	return nil
}

// collectReleased ferries removal-complete tokens from the render thread
// back to the synchronizer so retired slots can be recycled
func (e *Engine) collectReleased() {
	for {
		select {
		case id := <-e.renderer.Released():
			if err := e.sync.Release(id); err != nil {
				e.logger.Warn("release failed", "slot", id.Slot, "gen", id.Gen, "error", err)
			}
		default:
			return
		}
	}
}

// Metrics returns a point-in-time snapshot of the pipeline counters
func (e *Engine) Metrics() MetricsSnapshot {
	s := e.metrics.snapshot()
	st := e.sim.Stats()
	s.SimPasses = st.Passes
	s.SimPassesDropped = st.DroppedPasses
	return s
}

// Live reports sources currently present in the latest snapshot
func (e *Engine) Live() int {
	return e.sync.Live()
}
