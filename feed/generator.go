package feed

import (
	"math"
)

// SineFeed is an endless sine oscillator, handy for tests and demos where
// no decoded material is needed
type SineFeed struct {
	rate      int
	amplitude float64
	phase     float64
	step      float64
}

// NewSineFeed creates an oscillator at freq Hz with peak amplitude amp
func NewSineFeed(rate int, freq, amp float64) *SineFeed {
	return &SineFeed{
		rate:      rate,
		amplitude: amp,
		step:      freq / float64(rate),
	}
}

// Format implements Feed
func (f *SineFeed) Format() Format {
	return Format{SampleRate: f.rate, Channels: 1}
}

// Pull implements Feed
func (f *SineFeed) Pull(dst []float64) (int, bool) {
	for i := range dst {
		dst[i] = math.Sin(2*math.Pi*f.phase) * f.amplitude
		f.phase += f.step
		if f.phase >= 1.0 {
			f.phase -= 1.0
		}
	}
	return len(dst), true
}
