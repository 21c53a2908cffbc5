package audio

import (
	"encoding/binary"
)

// softLimit tames the summed mix in place so overlapping loud sources do
// not hard-clip. Gentle knee above |0.8|, hard ceiling at |1.0|.
func softLimit(samples [][2]float64) {
	for i := range samples {
		for ch := 0; ch < 2; ch++ {
			v := samples[i][ch]

			if v > 0.8 {
				v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
			} else if v < -0.8 {
				v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
			}

			if v > 1.0 {
				v = 1.0
			} else if v < -1.0 {
				v = -1.0
			}

			samples[i][ch] = v
		}
	}
}

// framesToBytes converts stereo float frames to interleaved int16 LE, the
// layout the oto sink consumes. out must hold 4 bytes per frame; returns
// the number of bytes written.
func framesToBytes(in [][2]float64, out []byte) int {
	for i, frame := range in {
		l := int16(clampSample(frame[0]) * 32767)
		r := int16(clampSample(frame[1]) * 32767)
		idx := i * 4
		binary.LittleEndian.PutUint16(out[idx:], uint16(l))
		binary.LittleEndian.PutUint16(out[idx+2:], uint16(r))
	}
	return len(in) * 4
}

func clampSample(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}
