package audio

import (
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/window"
)

// Synthetic HRTF model constants. The bank approximates a measured HRTF
// with two direction-dependent cues: interaural time difference (Woodworth
// sphere model) and head-shadow low-pass filtering of the far ear.
const (
	headRadiusMeters  = 0.0875
	speedOfSoundMps   = 343.0
	shadowMinCutoffHz = 1500.0 // far-ear cutoff at full shadow
	nearEarCutoffFrac = 0.45   // near-ear cutoff as a fraction of sample rate
)

// earFilter is the per-ear directional filter: an integer sample delay and
// a windowed-sinc FIR
type earFilter struct {
	delay int
	taps  []float64
}

// hrtfBank holds per-azimuth-bin filters for both ears. Bins follow
// sim.AzimuthBin: bin 0 at -pi, center bin straight ahead. Elevation is
// collapsed; the vertical component only reduces the lateral cues.
type hrtfBank struct {
	bins     int
	taps     int
	maxDelay int
	left     []earFilter
	right    []earFilter
}

// newHRTFBank synthesizes the filter bank. Called once at engine
// construction; all allocation happens here, never during rendering.
func newHRTFBank(bins, taps, sampleRate int) *hrtfBank {
	b := &hrtfBank{
		bins:  bins,
		taps:  taps,
		left:  make([]earFilter, bins),
		right: make([]earFilter, bins),
	}

	maxITD := headRadiusMeters / speedOfSoundMps * (1 + math.Pi/2)

	for i := 0; i < bins; i++ {
		az := -math.Pi + (float64(i)+0.5)*2*math.Pi/float64(bins)

		// lateral is how far the source sits toward +X (right);
		// folding the rear hemisphere onto the front keeps the cues
		// symmetric around the interaural axis
		lateral := math.Sin(az)

		itd := maxITD * lateral // positive: source right, left ear late
		delaySamples := int(math.Round(math.Abs(itd) * float64(sampleRate)))

		// The shadowed (far) ear gets a lower cutoff as the source moves
		// to the side
		shadow := math.Abs(lateral)
		nearCut := nearEarCutoffFrac * float64(sampleRate)
		farCut := nearCut + shadow*(shadowMinCutoffHz-nearCut)

		nearTaps := lowpassTaps(taps, nearCut, sampleRate)
		farTaps := lowpassTaps(taps, farCut, sampleRate)

		if itd >= 0 { // source on the right
			b.right[i] = earFilter{delay: 0, taps: nearTaps}
			b.left[i] = earFilter{delay: delaySamples, taps: farTaps}
		} else {
			b.left[i] = earFilter{delay: 0, taps: nearTaps}
			b.right[i] = earFilter{delay: delaySamples, taps: farTaps}
		}
		if delaySamples > b.maxDelay {
			b.maxDelay = delaySamples
		}
	}
	return b
}

// historyLen is how many past input samples a voice must retain for the
// longest delay plus FIR tail
func (b *hrtfBank) historyLen() int {
	return b.maxDelay + b.taps - 1
}

// lowpassTaps designs a unity-DC-gain windowed-sinc low-pass FIR
func lowpassTaps(n int, cutoffHz float64, sampleRate int) []float64 {
	fc := cutoffHz / float64(sampleRate)
	if fc > 0.5 {
		fc = 0.5
	}

	taps := make([]float64, n)
	center := float64(n-1) / 2
	for i := range taps {
		x := float64(i) - center
		if x == 0 {
			taps[i] = 2 * fc
			continue
		}
		taps[i] = math.Sin(2*math.Pi*fc*x) / (math.Pi * x)
	}

	window.Hamming(taps)

	// Normalize to unity gain at DC
	if sum := f64.Sum(taps); sum != 0 {
		f64.Scale(taps, taps, 1/sum)
	}
	return taps
}
