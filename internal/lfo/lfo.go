// Package lfo is the sine oscillator that modulates the scrub width.
package lfo

import "math"

// LFO is a low-frequency sine oscillator producing per-sample modulation.
// Rate and depth may be changed every sample, which is how ramped controls
// drive it.
type LFO struct {
	depth  float64 // output scale
	rateHz float64 // oscillation rate in Hz
	phase  float64 // current phase [0, 1)
}

// Set configures depth and rate.
func (l *LFO) Set(depth, rateHz float64) {
	l.depth = depth
	l.rateHz = rateHz
}

func (l *LFO) SetDepth(depth float64) { l.depth = depth }
func (l *LFO) SetRate(rateHz float64) { l.rateHz = rateHz }

// SetPhase moves the oscillator to phase (in cycles, wrapped into [0, 1)).
func (l *LFO) SetPhase(phase float64) {
	l.phase = phase - math.Floor(phase)
}

func (l *LFO) Phase() float64 { return l.phase }

// Sample returns a value in [-depth, +depth] and advances by one sample.
// A zero rate holds the current phase, so a sine parked at a quarter cycle
// outputs a steady +depth.
func (l *LFO) Sample(sampleRate float64) float64 {
	var v float64
	if l.depth != 0 {
		v = math.Sin(2*math.Pi*l.phase) * l.depth
	}
	if l.rateHz != 0 && sampleRate > 0 {
		l.phase += l.rateHz / sampleRate
		l.phase -= math.Floor(l.phase)
	}
	return v
}
