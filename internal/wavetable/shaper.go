package wavetable

import "math"

// Shaper maps an input signal in [-1, 1] to a table position and returns the
// table value there. mapAmp scales the input before mapping, so it sets how
// much of the table one unit of input sweeps across.
type Shaper struct {
	outAmp  float64
	mapAmp  float64
	wrap    bool
	lastMap float64
}

// NewShaper returns a shaper with the given output and map amplitudes.
// With wrap set, positions outside the table wrap around; otherwise they clamp.
func NewShaper(outAmp, mapAmp float64, wrap bool) Shaper {
	return Shaper{outAmp: outAmp, mapAmp: mapAmp, wrap: wrap, lastMap: 0.5}
}

func (s *Shaper) SetMapAmplitude(a float64) { s.mapAmp = a }
func (s *Shaper) MapAmplitude() float64     { return s.mapAmp }

// Process shapes one input sample through table.
func (s *Shaper) Process(table *Table, in float64) float64 {
	pos := s.mapAmp*in/2 + 0.5
	if s.wrap {
		pos -= math.Floor(pos)
	} else {
		pos = math.Max(0, math.Min(1, pos))
	}
	s.lastMap = pos
	return s.outAmp * table.At(pos)
}

// LastMapValue is the most recent normalized lookup position in [0, 1].
func (s *Shaper) LastMapValue() float64 { return s.lastMap }
