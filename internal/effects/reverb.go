package effects

// Reverb is a Schroeder reverb: four parallel damped combs into two series
// allpasses per channel. The right channel's delay lines are stretched by
// spread for width.
type Reverb struct {
	left, right reverbChannel
	wet         float32
}

type reverbChannel struct {
	combs   [4]combFilter
	allpass [2]allpassFilter
}

type combFilter struct {
	buf  []float32
	pos  int
	fb   float32
	damp float32
	lp   float32
}

type allpassFilter struct {
	buf []float32
	pos int
}

var (
	combRatios    = [4]int{1000, 1117, 1271, 1437}
	allpassRatios = [2]int{347, 213}
)

const reverbDamping = 0.2

// NewReverb creates a reverb. room scales the delay lengths and decay sets
// comb feedback; both are 0..1.
func NewReverb(sampleRate int, room, decay, spread, wet float32) *Reverb {
	base := max(int(float32(sampleRate)*clamp(room, 0, 1)*0.05), 10)
	fb := clamp(decay, 0, 0.95)
	spread = clamp(spread, 0, 1)
	r := &Reverb{wet: clamp(wet, 0, 1)}
	r.left.init(base, fb)
	r.right.init(base+int(float32(base)*spread*0.05)+1, fb)
	return r
}

func (c *reverbChannel) init(base int, fb float32) {
	for i := range c.combs {
		c.combs[i] = combFilter{buf: make([]float32, base*combRatios[i]/1000), fb: fb, damp: reverbDamping}
	}
	for i := range c.allpass {
		c.allpass[i] = allpassFilter{buf: make([]float32, max(base*allpassRatios[i]/1000, 1))}
	}
}

func (c *reverbChannel) process(in float32) float32 {
	var out float32
	for i := range c.combs {
		out += c.combs[i].process(in)
	}
	out *= 0.25
	for i := range c.allpass {
		out = c.allpass[i].process(out)
	}
	return out
}

func (c *reverbChannel) reset() {
	for i := range c.combs {
		clear(c.combs[i].buf)
		c.combs[i].pos = 0
		c.combs[i].lp = 0
	}
	for i := range c.allpass {
		clear(c.allpass[i].buf)
		c.allpass[i].pos = 0
	}
}

func (r *Reverb) Process(l, rr float32) (float32, float32) {
	mono := (l + rr) * 0.5
	outL := r.left.process(mono)
	outR := r.right.process(mono)
	return l*(1-r.wet) + outL*r.wet, rr*(1-r.wet) + outR*r.wet
}

func (r *Reverb) Reset() {
	r.left.reset()
	r.right.reset()
}

func (c *combFilter) process(in float32) float32 {
	out := c.buf[c.pos]
	c.lp += (1 - c.damp) * (out - c.lp)
	c.buf[c.pos] = in + c.lp*c.fb
	if c.pos++; c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*0.5
	if a.pos++; a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}
