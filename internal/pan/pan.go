// Package pan places mono signals in the stereo field.
package pan

import "math"

// Law selects how gains are distributed across the two channels.
type Law int

const (
	// ConstantPower uses sine/cosine gains so L²+R² stays at 1.
	ConstantPower Law = iota
	// Linear splits the signal linearly; the centre sits 6 dB down.
	Linear
)

// Gains returns the left and right gains for pos in [-1, 1]
// (-1 hard left, 0 centre, +1 hard right). pos is clamped.
func Gains(pos float64, law Law) (left, right float64) {
	if pos < -1 {
		pos = -1
	} else if pos > 1 {
		pos = 1
	}
	if law == Linear {
		return (1 - pos) * 0.5, (1 + pos) * 0.5
	}
	angle := (pos + 1) * math.Pi / 4
	return math.Cos(angle), math.Sin(angle)
}

// Panner is a fixed-position pan node. Gains are computed once at
// construction so Process costs two multiplies.
type Panner struct {
	pos   float64
	left  float64
	right float64
}

func New(pos float64, law Law) Panner {
	l, r := Gains(pos, law)
	return Panner{pos: pos, left: l, right: r}
}

func (p Panner) Position() float64 { return p.pos }

// Process spreads in across the stereo pair.
func (p Panner) Process(in float64) (left, right float64) {
	return in * p.left, in * p.right
}

// Sum adds two stereo frames.
func Sum(l1, r1, l2, r2 float64) (float64, float64) {
	return l1 + l2, r1 + r2
}
