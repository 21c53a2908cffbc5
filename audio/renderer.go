package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/binaural/feed"
	"github.com/lixenwraith/binaural/scene"
	"github.com/lixenwraith/binaural/sim"
)

// descriptorSource supplies the latest complete descriptor set.
// *sim.Simulator satisfies it.
type descriptorSource interface {
	Descriptors() *sim.DescriptorSet
}

type commandOp int

const (
	opAdd commandOp = iota
	opRemove
)

type voiceCommand struct {
	op  commandOp
	id  scene.SourceID
	src feed.Feed
}

// Renderer owns the audio-thread half of the pipeline: it drains control
// commands, advances every voice's state machine against one descriptor
// set per tick, mixes the block, soft-limits it and pushes it into the
// output ring.
//
// The render loop self-paces against ring occupancy: it renders ahead
// until the ring is full and resumes as the sink drains blocks. Nothing on
// this path blocks, locks or allocates.
type Renderer struct {
	cfg     *Config
	metrics *Metrics

	pool *blockPool
	ring *blockRing
	bank *hrtfBank // nil selects equal-power panning

	descs descriptorSource

	cmds     chan voiceCommand
	released chan scene.SourceID

	// Render-goroutine private state
	voices     map[scene.SourceID]*voice
	done       []scene.SourceID
	outL, outR []float64
	blockCount int

	// simStep is set when the simulation runs inline every N blocks
	// instead of on a worker
	simStep  func() bool
	simEvery int

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

func newRenderer(cfg *Config, metrics *Metrics, descs descriptorSource, bank *hrtfBank) *Renderer {
	ring := newBlockRing(cfg.RingBlocks)
	return &Renderer{
		cfg:      cfg,
		metrics:  metrics,
		pool:     newBlockPool(poolBlocks(ring.Cap()), cfg.BlockSize),
		ring:     ring,
		bank:     bank,
		descs:    descs,
		cmds:     make(chan voiceCommand, commandQueueDepth),
		released: make(chan scene.SourceID, commandQueueDepth),
		voices:   make(map[scene.SourceID]*voice, cfg.MaxSources),
		outL:     make([]float64, cfg.BlockSize),
		outR:     make([]float64, cfg.BlockSize),
		stopChan: make(chan struct{}),
	}
}

const commandQueueDepth = 256

// poolBlocks sizes the pool from the ring's actual (rounded-up) capacity:
// every ring slot plus blocks in flight at the renderer and the sink. A
// pool smaller than the ring would starve production before the ring ever
// reports full.
func poolBlocks(ringCap int) int {
	return ringCap + 2
}

// Start launches the render loop. A stopped renderer can be started again.
func (r *Renderer) Start() {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	// Fresh channel per cycle; the previous one is closed and stays closed
	r.stopChan = make(chan struct{})
	r.stopOnce = sync.Once{}
	r.wg.Add(1)
	go r.loop()
}

// Stop halts the render loop. Idempotent.
func (r *Renderer) Stop() {
	if !r.running.Load() {
		return
	}
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
	r.wg.Wait()
	r.running.Store(false)
}

// Released exposes completion tokens for sources that reached the removed
// state; the engine ferries them back to the synchronizer
func (r *Renderer) Released() <-chan scene.SourceID {
	return r.released
}

func (r *Renderer) loop() {
	defer r.wg.Done()

	// Half a block period keeps the ring topped up without busy-waiting
	ticker := time.NewTicker(r.cfg.BlockDuration() / 2)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			for !r.ring.Full() {
				if !r.renderBlock() {
					break
				}
			}
		}
	}
}

// renderBlock produces exactly one block. Returns false when no pool block
// was available (the tick degrades, it never blocks).
func (r *Renderer) renderBlock() bool {
	b := r.pool.Get()
	if b == nil {
		r.metrics.poolExhausted.Add(1)
		return false
	}
	start := time.Now()

	r.drainCommands()

	if r.simEvery > 0 {
		if r.blockCount%r.simEvery == 0 {
			r.simStep()
		}
		r.blockCount++
	}

	// One set pointer for the whole tick: every voice renders against the
	// same simulation version
	set := r.descs.Descriptors()

	r.done = r.done[:0]
	for id, v := range r.voices {
		v.observe(set, r.cfg.StalenessBound, r.cfg.FadeBlocks)
		if !v.render(b.Samples, r.bank, r.outL, r.outR, r.cfg.FadeBlocks) {
			r.done = append(r.done, id)
		}
	}

	for _, id := range r.done {
		delete(r.voices, id)
		select {
		case r.released <- id:
		default:
			// Token queue full: the slot stays retired until the game
			// thread catches up, which is safe, just slower to recycle
		}
	}
	r.metrics.activeVoices.Store(int32(len(r.voices)))

	softLimit(b.Samples)

	if evicted := r.ring.Push(b); evicted != nil {
		r.pool.Put(evicted)
		r.metrics.droppedBlocks.Add(1)
	}
	r.metrics.observeRender(time.Since(start).Nanoseconds())
	return true
}

func (r *Renderer) drainCommands() {
	for {
		select {
		case c := <-r.cmds:
			switch c.op {
			case opAdd:
				histLen := 0
				if r.bank != nil {
					histLen = r.bank.historyLen()
				}
				r.voices[c.id] = newVoice(c.id, c.src, r.cfg.BlockSize, histLen)
			case opRemove:
				if v, ok := r.voices[c.id]; ok {
					v.beginFade(r.cfg.FadeBlocks)
				}
			}
		default:
			return
		}
	}
}

// enqueue hands a control command to the render goroutine without blocking
func (r *Renderer) enqueue(c voiceCommand) error {
	select {
	case r.cmds <- c:
		return nil
	default:
		return ErrCommandBacklog
	}
}
