package ramp

// Ramp is a time-bounded linear interpolator. It is re-armed from its own
// current value on every parameter change so repeated changes never jump.
type Ramp struct {
	from     float64
	to       float64
	current  float64
	duration float64 // seconds
	elapsed  float64 // seconds
	dt       float64 // seconds per sample
}

// New returns a settled ramp holding value.
func New(value float64) Ramp {
	return Ramp{from: value, to: value, current: value}
}

// SetSampleRate sets the per-tick time step. Non-positive rates freeze the ramp.
func (r *Ramp) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		r.dt = 0
		return
	}
	r.dt = 1.0 / sampleRate
}

// Activate arms the ramp to move from -> to over duration seconds.
// A non-positive duration jumps straight to the end value.
func (r *Ramp) Activate(duration, from, to float64) {
	r.from = from
	r.to = to
	r.elapsed = 0
	if duration <= 0 {
		r.duration = 0
		r.current = to
		return
	}
	r.duration = duration
	r.current = from
}

// Retarget arms the ramp from its current value.
func (r *Ramp) Retarget(duration, to float64) {
	r.Activate(duration, r.current, to)
}

// Tick advances one sample and returns the new value.
func (r *Ramp) Tick() float64 {
	if r.duration <= 0 || r.elapsed >= r.duration {
		r.current = r.to
		return r.current
	}
	r.elapsed += r.dt
	t := r.elapsed / r.duration
	if t >= 1 {
		r.current = r.to
	} else {
		r.current = r.from + (r.to-r.from)*t
	}
	return r.current
}

// Value returns the current value without advancing.
func (r *Ramp) Value() float64 { return r.current }

// Target returns the value the ramp is heading to.
func (r *Ramp) Target() float64 { return r.to }

// Done reports whether the ramp has reached its end value.
func (r *Ramp) Done() bool {
	return r.duration <= 0 || r.elapsed >= r.duration
}
