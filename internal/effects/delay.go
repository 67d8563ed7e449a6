package effects

// Delay is a stereo echo. cross routes feedback to the opposite channel,
// so cross=1 gives a ping-pong echo. damp lowpasses the feedback path.
type Delay struct {
	bufL, bufR []float32
	pos        int
	feedback   float32
	cross      float32
	damp       float32
	wet        float32
	lpL, lpR   float32
}

func NewDelay(sampleRate int, delayMs float64, feedback, cross, damp, wet float32) *Delay {
	samples := max(int(delayMs*float64(sampleRate)/1000.0), 1)
	return &Delay{
		bufL:     make([]float32, samples),
		bufR:     make([]float32, samples),
		feedback: clamp(feedback, 0, 0.95),
		cross:    clamp(cross, 0, 1),
		damp:     clamp(damp, 0, 0.99),
		wet:      clamp(wet, 0, 1),
	}
}

func (d *Delay) Process(l, r float32) (float32, float32) {
	delL := d.bufL[d.pos]
	delR := d.bufR[d.pos]
	d.lpL += (1 - d.damp) * (delL - d.lpL)
	d.lpR += (1 - d.damp) * (delR - d.lpR)
	fbL := d.feedback * (d.lpL*(1-d.cross) + d.lpR*d.cross)
	fbR := d.feedback * (d.lpR*(1-d.cross) + d.lpL*d.cross)
	d.bufL[d.pos] = l + fbL
	d.bufR[d.pos] = r + fbR
	if d.pos++; d.pos >= len(d.bufL) {
		d.pos = 0
	}
	return l*(1-d.wet) + delL*d.wet, r*(1-d.wet) + delR*d.wet
}

func (d *Delay) Reset() {
	clear(d.bufL)
	clear(d.bufR)
	d.pos = 0
	d.lpL, d.lpR = 0, 0
}
