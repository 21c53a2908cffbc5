package audio

import (
	"sync/atomic"
)

// blockRing is a bounded lock-free FIFO of rendered blocks between the
// render goroutine (producer) and the platform sink (consumer).
//
// Two monotonically increasing counters index a power-of-2 slot array.
// The producer owns writePos; readPos is advanced by the consumer on Pop
// and, only when the ring is full, by the producer to evict the oldest
// block. Both sides advance readPos with CAS so the eviction path cannot
// race a concurrent Pop.
type blockRing struct {
	writePos atomic.Uint64
	_        [56]byte // keep producer and consumer counters on separate cache lines
	readPos  atomic.Uint64
	_        [56]byte

	slots []atomic.Pointer[Block]
	mask  uint64
}

// newBlockRing creates a ring with capacity rounded up to a power of two
func newBlockRing(minBlocks int) *blockRing {
	size := 2
	for size < minBlocks {
		size <<= 1
	}
	return &blockRing{
		slots: make([]atomic.Pointer[Block], size),
		mask:  uint64(size - 1),
	}
}

// Cap returns the ring capacity in blocks
func (r *blockRing) Cap() int {
	return len(r.slots)
}

// Len returns the number of unread blocks
func (r *blockRing) Len() int {
	return int(r.writePos.Load() - r.readPos.Load())
}

// Full reports whether a Push would evict
func (r *blockRing) Full() bool {
	return r.Len() >= len(r.slots)
}

// Push appends b. When the ring is full the oldest unread block is evicted
// and returned so the producer can recycle it; evicted is nil otherwise.
// Producer goroutine only.
func (r *blockRing) Push(b *Block) (evicted *Block) {
	w := r.writePos.Load()

	for {
		rp := r.readPos.Load()
		if w-rp < uint64(len(r.slots)) {
			break
		}
		// Ring full: reclaim the oldest slot. A racing Pop may win the
		// CAS, in which case the slot freed itself and we retry.
		if r.readPos.CompareAndSwap(rp, rp+1) {
			evicted = r.slots[rp&r.mask].Load()
			break
		}
	}

	r.slots[w&r.mask].Store(b)
	r.writePos.Store(w + 1)
	return evicted
}

// Pop removes and returns the oldest block, or nil when the ring is empty.
// Consumer goroutine only.
func (r *blockRing) Pop() *Block {
	for {
		rp := r.readPos.Load()
		if rp == r.writePos.Load() {
			return nil
		}
		b := r.slots[rp&r.mask].Load()
		if r.readPos.CompareAndSwap(rp, rp+1) {
			return b
		}
		// Producer evicted this slot first; try the next one
	}
}
