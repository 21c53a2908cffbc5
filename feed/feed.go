// Package feed defines the boundary between the spatial-audio engine and
// the decode layer. A Feed yields mono PCM frames on demand; decoding,
// file formats and resampling live entirely on the far side of this
// interface.
package feed

import (
	"errors"
)

// Format fixes a feed's sample layout at creation time
type Format struct {
	SampleRate int
	Channels   int
}

// Feed is a pull interface for decoded mono PCM.
//
// Pull fills dst with up to len(dst) frames and returns the number written.
// A false result means the feed is exhausted after those n frames; a
// looping feed never exhausts.
// Pull is called from the audio thread: implementations must not block or
// allocate per call.
type Feed interface {
	Format() Format
	Pull(dst []float64) (n int, ok bool)
}

// Sentinel errors
var (
	ErrEmptyBuffer = errors.New("feed: empty sample buffer")
)
