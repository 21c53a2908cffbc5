package audio

// Block is one render tick's worth of stereo frames. Blocks cycle between
// the pool, the renderer, the output ring and the sink; they are never
// allocated on the render path.
type Block struct {
	Samples [][2]float64
}

func newBlock(frames int) *Block {
	return &Block{Samples: make([][2]float64, frames)}
}

// zero silences the block in place
func (b *Block) zero() {
	for i := range b.Samples {
		b.Samples[i] = [2]float64{}
	}
}

// blockPool is a fixed set of reusable blocks backed by a buffered
// channel, so Get and Put are allocation-free and safe across the render
// and sink goroutines.
type blockPool struct {
	free chan *Block
}

// newBlockPool pre-allocates n blocks of the given frame count
func newBlockPool(n, frames int) *blockPool {
	p := &blockPool{free: make(chan *Block, n)}
	for i := 0; i < n; i++ {
		p.free <- newBlock(frames)
	}
	return p
}

// Get returns a zeroed block, or nil when the pool is exhausted. The
// caller degrades (skips the tick) rather than allocating.
func (p *blockPool) Get() *Block {
	select {
	case b := <-p.free:
		b.zero()
		return b
	default:
		return nil
	}
}

// Put returns a block to the pool. Excess blocks are discarded, which only
// happens if a block was double-released.
func (p *blockPool) Put(b *Block) {
	if b == nil {
		return
	}
	select {
	case p.free <- b:
	default:
	}
}
