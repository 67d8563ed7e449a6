package envelope

// State is the current ADSR stage.
type State int

const (
	StateOff State = iota
	StateAttack
	StateDecay
	StateSustain
	StateRelease
)

func (s State) String() string {
	switch s {
	case StateAttack:
		return "attack"
	case StateDecay:
		return "decay"
	case StateSustain:
		return "sustain"
	case StateRelease:
		return "release"
	default:
		return "off"
	}
}

// ADSR is a single, last-note-priority amplitude envelope. All segments are
// linear in elapsed time.
type ADSR struct {
	state       State
	autoRelease bool
	amp         float64 // peak
	attack      float64 // seconds
	decay       float64 // seconds
	sustain     float64 // fraction of amp
	release     float64 // seconds
	time        float64
	step        float64
	last        float64
}

// SetSampleRate sets the per-tick time step.
func (e *ADSR) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		e.step = 0
		return
	}
	e.step = 1.0 / sampleRate
}

// NoteOn restarts the envelope. Zero-length attack and decay stages are skipped.
func (e *ADSR) NoteOn(amp, attack, decay, sustain, release float64) {
	e.time = 0
	e.amp = amp
	e.attack = attack
	e.decay = decay
	e.sustain = clamp(sustain, 0, 1)
	e.release = release
	e.autoRelease = false

	switch {
	case e.attack > 0:
		e.state = StateAttack
	case e.decay > 0:
		e.state = StateDecay
	default:
		e.state = StateSustain
	}
}

// NoteOff enters release from sustain, or flags release for when sustain is reached.
func (e *ADSR) NoteOff() {
	if e.state == StateSustain {
		e.state = StateRelease
		e.time = 0
		return
	}
	e.autoRelease = true
}

// Stop is a hard cut to Off with zero amplitude.
func (e *ADSR) Stop() {
	e.state = StateOff
	e.amp = 0
	e.last = 0
	e.autoRelease = false
}

// IsOn reports whether the envelope is in attack, decay or sustain.
func (e *ADSR) IsOn() bool {
	return e.state == StateAttack || e.state == StateDecay || e.state == StateSustain
}

func (e *ADSR) State() State { return e.state }

// Release returns the release time of the current note in seconds.
func (e *ADSR) Release() float64 { return e.release }

// Amplitude returns the most recent output of Tick.
func (e *ADSR) Amplitude() float64 { return e.last }

// Tick advances one sample and returns the amplitude multiplier.
func (e *ADSR) Tick() float64 {
	amp := 0.0
	switch e.state {
	case StateAttack:
		if e.time >= e.attack {
			amp = e.amp
			e.state = StateDecay
			e.time = 0
		} else {
			amp = e.amp * (e.time / e.attack)
		}
	case StateDecay:
		target := e.amp * e.sustain
		if e.time >= e.decay {
			amp = target
			e.state = StateSustain
		} else {
			t := e.time / e.decay
			amp = e.amp + t*(target-e.amp)
		}
	case StateSustain:
		amp = e.amp * e.sustain
		if e.autoRelease {
			e.state = StateRelease
			e.time = 0
		}
	case StateRelease:
		level := e.amp * e.sustain
		if e.time >= e.release {
			amp = 0
			e.state = StateOff
		} else {
			t := e.time / e.release
			amp = level - t*level
		}
	}
	e.time += e.step
	e.last = amp
	return amp
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
