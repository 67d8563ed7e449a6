// Package wavetable holds the loaded audio as lookup tables and the
// waveshapers that scrub through them.
package wavetable

import "math"

// Table is an immutable lookup table. The zero value is an empty table that
// reads as silence.
type Table struct {
	samples []float32
}

// NewTable copies samples into a new table.
func NewTable(samples []float32) *Table {
	cp := make([]float32, len(samples))
	copy(cp, samples)
	return &Table{samples: cp}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.samples)
}

// At reads the table at a normalized position, wrapping at both ends and
// interpolating linearly between neighbours. Empty tables return 0.
func (t *Table) At(pos float64) float64 {
	n := t.Len()
	if n == 0 {
		return 0
	}
	pos -= math.Floor(pos)
	idx := pos * float64(n)
	i0 := int(idx)
	if i0 >= n {
		i0 = n - 1
	}
	frac := idx - float64(i0)
	i1 := i0 + 1
	if i1 >= n {
		i1 = 0
	}
	return float64(t.samples[i0])*(1-frac) + float64(t.samples[i1])*frac
}

// Pair is the left/right table set published to the audio thread as a unit.
type Pair struct {
	Left  *Table
	Right *Table
}

// NewPair builds tables from per-channel data. A single channel is shared by
// both sides; channels are truncated to the shortest so sizes always agree.
func NewPair(channels [][]float32) *Pair {
	switch len(channels) {
	case 0:
		return &Pair{Left: &Table{}, Right: &Table{}}
	case 1:
		t := NewTable(channels[0])
		return &Pair{Left: t, Right: t}
	}
	n := len(channels[0])
	if len(channels[1]) < n {
		n = len(channels[1])
	}
	return &Pair{
		Left:  NewTable(channels[0][:n]),
		Right: NewTable(channels[1][:n]),
	}
}

// Size returns the per-channel length.
func (p *Pair) Size() int {
	if p == nil {
		return 0
	}
	return p.Left.Len()
}
