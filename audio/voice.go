package audio

import (
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/lixenwraith/binaural/feed"
	"github.com/lixenwraith/binaural/scene"
	"github.com/lixenwraith/binaural/sim"
	"github.com/lixenwraith/binaural/vmath"
)

// voiceState is the render-side lifecycle of one source
type voiceState int

const (
	// voicePending: source registered, no descriptor published yet; silent
	voicePending voiceState = iota
	// voiceActive: rendering with a fresh or held-but-fresh-enough descriptor
	voiceActive
	// voiceFading: gain ramping to zero over a fixed number of blocks
	// (staleness exceeded, removal requested, or feed exhausted)
	voiceFading
	// voiceRemoved: finished; buffer recycled, slot release pending
	voiceRemoved
)

// voice is the renderer's private state for one source. Everything here is
// touched only by the render goroutine.
type voice struct {
	id  scene.SourceID
	src feed.Feed

	state       voiceState
	desc        sim.Descriptor
	descVersion uint64 // set version the held descriptor came from
	staleBlocks int    // blocks rendered since the descriptor was fresh

	fadeLeft  int
	fadeTotal int
	fadeScale float64 // fade envelope value at the end of the previous block

	gainL, gainR float64 // applied gains at the end of the previous block

	exhausted bool

	// work is the mono input line: histLen samples of history followed by
	// the current block, sized once at voice creation
	work    []float64
	histLen int
}

func newVoice(id scene.SourceID, src feed.Feed, blockSize, histLen int) *voice {
	return &voice{
		id:        id,
		src:       src,
		fadeScale: 1,
		work:      make([]float64, histLen+blockSize),
		histLen:   histLen,
	}
}

// beginFade starts the ramp to silence; harmless if already fading
func (v *voice) beginFade(fadeBlocks int) {
	switch v.state {
	case voicePending:
		// Nothing audible yet, nothing to ramp
		v.state = voiceRemoved
	case voiceActive:
		v.state = voiceFading
		v.fadeLeft = fadeBlocks
		v.fadeTotal = fadeBlocks
	}
}

// observe advances the state machine against the descriptor set chosen for
// this tick. set may be nil before the first simulation pass.
func (v *voice) observe(set *sim.DescriptorSet, stalenessBound, fadeBlocks int) {
	switch v.state {
	case voicePending:
		if set == nil {
			return
		}
		if d, ok := set.Lookup(v.id); ok {
			v.desc = d
			v.descVersion = set.Version
			v.staleBlocks = 0
			v.state = voiceActive
		}

	case voiceActive:
		if set == nil || set.Version == v.descVersion {
			// Simulation lagging: hold the previous descriptor
			v.staleBlocks++
			if v.staleBlocks > stalenessBound {
				v.beginFade(fadeBlocks)
			}
			return
		}
		if d, ok := set.Lookup(v.id); ok {
			v.desc = d
			v.descVersion = set.Version
			v.staleBlocks = 0
			return
		}
		// A newer set no longer carries this source: scene removed it
		v.beginFade(fadeBlocks)
	}
}

// render pulls one block of input and accumulates the spatialized result
// into dst. scratch buffers belong to the renderer. Returns false when the
// voice reached voiceRemoved.
func (v *voice) render(dst [][2]float64, bank *hrtfBank, outL, outR []float64, fadeBlocks int) bool {
	switch v.state {
	case voicePending:
		return true
	case voiceRemoved:
		return false
	}

	bs := len(dst)
	mono := v.work[v.histLen:]

	n := 0
	if !v.exhausted {
		var ok bool
		n, ok = v.src.Pull(mono[:bs])
		if !ok {
			v.exhausted = true
			v.beginFade(fadeBlocks)
		}
	}
	for i := n; i < bs; i++ {
		mono[i] = 0
	}

	// Fade envelope for this block: ramp from the previous block's value
	// toward the next step so no tick jumps by more than 1/fadeTotal
	targetFade := v.fadeScale
	if v.state == voiceFading {
		targetFade = float64(v.fadeLeft-1) / float64(v.fadeTotal)
		if targetFade < 0 {
			targetFade = 0
		}
	}

	base := v.desc.Attenuation * v.desc.Occlusion
	var targetL, targetR float64
	if bank != nil {
		targetL = base * targetFade
		targetR = base * targetFade
		v.renderHRTF(dst, bank, outL, outR, targetL, targetR)
	} else {
		pl, pr := panGains(v.desc.Direction)
		targetL = base * targetFade * pl
		targetR = base * targetFade * pr
		v.renderPanned(dst, mono[:bs], targetL, targetR)
	}

	if v.desc.HasReflections && v.desc.ReflectionGain > 0 {
		v.renderReflections(dst, mono[:bs], targetFade)
	}

	// Slide history left by one block
	copy(v.work[:v.histLen], v.work[bs:])

	v.gainL = targetL
	v.gainR = targetR
	v.fadeScale = targetFade

	if v.state == voiceFading {
		v.fadeLeft--
		if v.fadeLeft <= 0 {
			v.state = voiceRemoved
			return false
		}
	}
	return true
}

// renderPanned applies equal-power stereo panning with a per-sample gain
// ramp from the previous block's gains
func (v *voice) renderPanned(dst [][2]float64, mono []float64, targetL, targetR float64) {
	inv := 1.0 / float64(len(dst))
	for i, s := range mono {
		t := float64(i+1) * inv
		gl := v.gainL + (targetL-v.gainL)*t
		gr := v.gainR + (targetR-v.gainR)*t
		dst[i][0] += s * gl
		dst[i][1] += s * gr
	}
}

// renderHRTF filters each ear through its azimuth-bin FIR (with interaural
// delay baked into the signal offset) and accumulates with ramped gains
func (v *voice) renderHRTF(dst [][2]float64, bank *hrtfBank, outL, outR []float64, targetL, targetR float64) {
	bs := len(dst)
	bin := v.desc.HRTFBin
	if bin < 0 || bin >= bank.bins {
		bin = bank.bins / 2
	}

	convolveEar(outL[:bs], v.work, v.histLen, bank.left[bin])
	convolveEar(outR[:bs], v.work, v.histLen, bank.right[bin])

	inv := 1.0 / float64(bs)
	for i := 0; i < bs; i++ {
		t := float64(i+1) * inv
		gl := v.gainL + (targetL-v.gainL)*t
		gr := v.gainR + (targetR-v.gainR)*t
		dst[i][0] += outL[i] * gl
		dst[i][1] += outR[i] * gr
	}
}

// renderReflections adds a crude diffuse early-reflection tail equally to
// both ears, scaled well below the direct path
func (v *voice) renderReflections(dst [][2]float64, mono []float64, fade float64) {
	g := v.desc.Attenuation * v.desc.ReflectionGain * reflectionMix * fade
	for i, s := range mono {
		dst[i][0] += s * g
		dst[i][1] += s * g
	}
}

const reflectionMix = 0.25

// panGains maps a listener-local direction to equal-power stereo gains
func panGains(dir vmath.Vec3) (l, r float64) {
	pan := vmath.Clamp(dir.X, -1, 1)
	theta := (pan + 1) * math.Pi / 4
	return math.Cos(theta), math.Sin(theta)
}

// convolveEar runs one ear's FIR over the delayed input line.
// work[histLen+i] is the current block's sample i; the ear hears it
// f.delay samples late, filtered by f.taps.
func convolveEar(dst []float64, work []float64, histLen int, f earFilter) {
	start := histLen - f.delay - (len(f.taps) - 1)
	end := histLen - f.delay + len(dst)
	f64.ConvolveValid(dst, work[start:end], f.taps)
}
