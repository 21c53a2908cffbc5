package feed

import (
	"github.com/gopxl/beep"
)

// StreamerFeed adapts a beep.Streamer into a Feed, downmixing beep's
// stereo frames to mono. It lets any beep decoder or generator back a
// spatialized source without the engine knowing about beep.
type StreamerFeed struct {
	streamer beep.Streamer
	rate     int
	scratch  [][2]float64
	done     bool
}

// NewStreamerFeed wraps streamer, which must produce samples at rate. The
// scratch buffer is sized once for blockSize so Pull never allocates.
func NewStreamerFeed(streamer beep.Streamer, rate beep.SampleRate, blockSize int) *StreamerFeed {
	if blockSize < 1 {
		blockSize = 1
	}
	return &StreamerFeed{
		streamer: streamer,
		rate:     int(rate),
		scratch:  make([][2]float64, blockSize),
	}
}

// Format implements Feed
func (f *StreamerFeed) Format() Format {
	return Format{SampleRate: f.rate, Channels: 1}
}

// Pull implements Feed
func (f *StreamerFeed) Pull(dst []float64) (int, bool) {
	if f.done {
		return 0, false
	}

	n := 0
	for n < len(dst) {
		want := len(dst) - n
		if want > len(f.scratch) {
			want = len(f.scratch)
		}

		got, ok := f.streamer.Stream(f.scratch[:want])
		for i := 0; i < got; i++ {
			dst[n+i] = 0.5 * (f.scratch[i][0] + f.scratch[i][1])
		}
		n += got

		if !ok {
			f.done = true
			return n, false
		}
	}
	return n, true
}
