// Package noise provides tinted noise sources for the scrub position.
package noise

import "math/rand"

// Tint is the spectral coloration of the noise.
type Tint int

const (
	TintWhite Tint = iota
	TintPink
	TintBrown
)

// Names are the display names of the tints, indexed by Tint.
var Names = [...]string{"White", "Pink", "Red"}

func (t Tint) String() string {
	if t < 0 || int(t) >= len(Names) {
		return "Unknown"
	}
	return Names[t]
}

// Valid reports whether t is a known tint.
func (t Tint) Valid() bool { return t >= TintWhite && t <= TintBrown }

// Generator produces noise in [-1, 1]. The tint may change between samples
// without resetting the filter state.
type Generator struct {
	tint Tint
	rnd  *rand.Rand

	// Voss-McCartney rows for pink
	pinkRows  [16]float64
	pinkSum   float64
	pinkIndex int

	brown float64
}

// NewGenerator creates a generator with a fixed seed.
func NewGenerator(tint Tint, seed int64) *Generator {
	g := &Generator{tint: tint, rnd: rand.New(rand.NewSource(seed))}
	for i := range g.pinkRows {
		g.pinkRows[i] = g.white()
		g.pinkSum += g.pinkRows[i]
	}
	return g
}

func (g *Generator) SetTint(t Tint) {
	if !t.Valid() {
		t = TintWhite
	}
	g.tint = t
}

func (g *Generator) Tint() Tint { return g.tint }

// Next returns the next sample.
func (g *Generator) Next() float64 {
	switch g.tint {
	case TintPink:
		return g.pink()
	case TintBrown:
		return g.brownian()
	default:
		return g.white()
	}
}

func (g *Generator) white() float64 {
	return g.rnd.Float64()*2 - 1
}

func (g *Generator) pink() float64 {
	g.pinkIndex = (g.pinkIndex + 1) & 0xFFFF
	if g.pinkIndex != 0 {
		// update the row picked by the number of trailing zeros
		row := 0
		for n := g.pinkIndex; n&1 == 0 && row < len(g.pinkRows)-1; n >>= 1 {
			row++
		}
		g.pinkSum -= g.pinkRows[row]
		g.pinkRows[row] = g.white()
		g.pinkSum += g.pinkRows[row]
	}
	return clamp((g.pinkSum+g.white())/5, -1, 1)
}

func (g *Generator) brownian() float64 {
	g.brown = (g.brown + 0.02*g.white()) / 1.02
	return clamp(g.brown*3.5, -1, 1)
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
