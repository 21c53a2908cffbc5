package audio

// Stream fills samples with rendered stereo frames. It satisfies the
// beep.Streamer contract: call it from the sink goroutine only.
//
// An empty ring yields silence and counts one underrun; the stream keeps
// going so the device never starves. Only a stopped engine with a drained
// ring ends the stream.
func (e *Engine) Stream(samples [][2]float64) (int, bool) {
	n := 0
	for n < len(samples) {
		if e.cur == nil {
			e.cur = e.renderer.ring.Pop()
			if e.cur == nil {
				if !e.running.Load() {
					for i := n; i < len(samples); i++ {
						samples[i] = [2]float64{}
					}
					return n, n > 0
				}
				e.metrics.underruns.Add(1)
				for i := n; i < len(samples); i++ {
					samples[i] = [2]float64{}
				}
				return len(samples), true
			}
			e.curOff = 0
		}
		c := copy(samples[n:], e.cur.Samples[e.curOff:])
		n += c
		e.curOff += c
		if e.curOff >= len(e.cur.Samples) {
			e.renderer.pool.Put(e.cur)
			e.cur = nil
		}
	}
	return n, true
}

// Err satisfies beep.Streamer. The render path reports trouble through
// Metrics, never through the stream.
func (e *Engine) Err() error {
	return nil
}

// Read satisfies io.Reader with interleaved little-endian int16 stereo,
// the layout oto players consume. Same single-goroutine rule as Stream.
func (e *Engine) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if e.byteFill < e.byteTotal {
			c := copy(p[n:], e.byteBuf[e.byteFill:e.byteTotal])
			n += c
			e.byteFill += c
			continue
		}
		frames := (len(p) - n) / 4
		if frames == 0 {
			// Caller's buffer ends mid-frame: stage one frame and carry
			// the remainder
			e.Stream(e.readBuf[:1])
			e.byteTotal = framesToBytes(e.readBuf[:1], e.byteBuf)
			e.byteFill = 0
			continue
		}
		if frames > len(e.readBuf) {
			frames = len(e.readBuf)
		}
		e.Stream(e.readBuf[:frames])
		n += framesToBytes(e.readBuf[:frames], p[n:])
	}
	return n, nil
}
