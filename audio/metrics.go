package audio

import (
	"sync/atomic"
)

// Metrics are the pipeline's observable counters. The render path only
// ever increments atomics here; nothing on the audio thread logs or
// returns errors.
type Metrics struct {
	underruns     atomic.Uint64
	droppedBlocks atomic.Uint64
	rendered      atomic.Uint64
	poolExhausted atomic.Uint64
	activeVoices  atomic.Int32
	renderNanos   atomic.Int64
	maxRenderNano atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of all counters
type MetricsSnapshot struct {
	Underruns        uint64 // sink pulls that found the ring empty
	DroppedBlocks    uint64 // oldest blocks evicted from a full ring
	BlocksRendered   uint64
	PoolExhausted    uint64 // render ticks skipped for lack of a free block
	ActiveVoices     int32
	SimPasses        uint64
	SimPassesDropped uint64
	LastRenderNanos  int64
	MaxRenderNanos   int64
}

func (m *Metrics) observeRender(nanos int64) {
	m.rendered.Add(1)
	m.renderNanos.Store(nanos)
	for {
		prev := m.maxRenderNano.Load()
		if nanos <= prev || m.maxRenderNano.CompareAndSwap(prev, nanos) {
			return
		}
	}
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Underruns:       m.underruns.Load(),
		DroppedBlocks:   m.droppedBlocks.Load(),
		BlocksRendered:  m.rendered.Load(),
		PoolExhausted:   m.poolExhausted.Load(),
		ActiveVoices:    m.activeVoices.Load(),
		LastRenderNanos: m.renderNanos.Load(),
		MaxRenderNanos:  m.maxRenderNano.Load(),
	}
}
