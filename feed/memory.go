package feed

// MemoryFeed serves pre-decoded mono samples from memory, optionally
// looping. The sample slice is borrowed read-only; callers must not mutate
// it while the feed is attached to a live source.
type MemoryFeed struct {
	samples []float64
	rate    int
	loop    bool
	pos     int
}

// NewMemoryFeed wraps samples recorded at rate Hz. With loop set the feed
// wraps around instead of exhausting.
func NewMemoryFeed(samples []float64, rate int, loop bool) (*MemoryFeed, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyBuffer
	}
	return &MemoryFeed{
		samples: samples,
		rate:    rate,
		loop:    loop,
	}, nil
}

// Format implements Feed
func (f *MemoryFeed) Format() Format {
	return Format{SampleRate: f.rate, Channels: 1}
}

// Pull implements Feed
func (f *MemoryFeed) Pull(dst []float64) (int, bool) {
	n := 0
	for n < len(dst) {
		if f.pos >= len(f.samples) {
			if !f.loop {
				return n, false
			}
			f.pos = 0
		}
		c := copy(dst[n:], f.samples[f.pos:])
		f.pos += c
		n += c
	}
	return n, true
}

// Rewind resets the read cursor to the start
func (f *MemoryFeed) Rewind() {
	f.pos = 0
}
