package noise

// RateTicker plays a Generator back at a fractional rate: rate is the
// number of source samples consumed per output sample. Output is linearly
// interpolated between consecutive source samples, so small rates produce a
// slowly wandering signal.
type RateTicker struct {
	src     *Generator
	current float64
	next    float64
	frac    float64
	last    float64
}

func NewRateTicker(src *Generator) *RateTicker {
	r := &RateTicker{src: src}
	r.current = src.Next()
	r.next = src.Next()
	r.last = r.current
	return r
}

// Tick returns the next output sample. A non-positive rate holds position.
func (r *RateTicker) Tick(rate float64) float64 {
	r.last = r.current + r.frac*(r.next-r.current)
	if rate > 0 {
		r.frac += rate
		for r.frac >= 1 {
			r.frac--
			r.current = r.next
			r.next = r.src.Next()
		}
	}
	return r.last
}

// Last returns the most recent output.
func (r *RateTicker) Last() float64 { return r.last }

// Generator returns the wrapped source.
func (r *RateTicker) Generator() *Generator { return r.src }
