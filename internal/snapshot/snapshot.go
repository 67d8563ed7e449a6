// Package snapshot stores the noise-control presets and blends between them
// along a continuous dial.
package snapshot

import (
	"math"
	"sync"

	"github.com/pkg/errors"
)

const (
	// Count is the number of snapshot slots.
	Count = 8
	// Max is the highest slot index and the top of the blend dial.
	Max = Count - 1
)

var ErrInvalidSnapshot = errors.New("snapshot index out of range")

// Snapshot is one saved set of the four noise controls.
type Snapshot struct {
	AmpMod float64 `yaml:"amp_mod"`
	Rate   float64 `yaml:"rate"`
	Range  float64 `yaml:"range"`
	Shape  float64 `yaml:"shape"`
}

// Lerp blends a toward b by t.
func Lerp(a, b Snapshot, t float64) Snapshot {
	return Snapshot{
		AmpMod: a.AmpMod + (b.AmpMod-a.AmpMod)*t,
		Rate:   a.Rate + (b.Rate-a.Rate)*t,
		Range:  a.Range + (b.Range-a.Range)*t,
		Shape:  a.Shape + (b.Shape-a.Shape)*t,
	}
}

// Bounds are the ranges used by Bank.Normalized.
type Bounds struct {
	Min, Max Snapshot
}

func norm(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return math.Max(0, math.Min(1, (v-lo)/(hi-lo)))
}

// Normalize maps each field of s into [0, 1] using b.
func (b Bounds) Normalize(s Snapshot) Snapshot {
	return Snapshot{
		AmpMod: norm(s.AmpMod, b.Min.AmpMod, b.Max.AmpMod),
		Rate:   norm(s.Rate, b.Min.Rate, b.Max.Rate),
		Range:  norm(s.Range, b.Min.Range, b.Max.Range),
		Shape:  norm(s.Shape, b.Min.Shape, b.Max.Shape),
	}
}

// Bank is the fixed set of snapshot slots. It is used from control
// goroutines only.
type Bank struct {
	mu     sync.Mutex
	slots  [Count]Snapshot
	bounds Bounds
}

// NewBank fills every slot with initial.
func NewBank(initial Snapshot, bounds Bounds) *Bank {
	b := &Bank{bounds: bounds}
	for i := range b.slots {
		b.slots[i] = initial
	}
	return b
}

// Update stores s in slot idx.
func (b *Bank) Update(idx int, s Snapshot) error {
	if idx < 0 || idx > Max {
		return errors.Wrapf(ErrInvalidSnapshot, "update %d", idx)
	}
	b.mu.Lock()
	b.slots[idx] = s
	b.mu.Unlock()
	return nil
}

func (b *Bank) Get(idx int) (Snapshot, error) {
	if idx < 0 || idx > Max {
		return Snapshot{}, errors.Wrapf(ErrInvalidSnapshot, "get %d", idx)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slots[idx], nil
}

// Normalized returns slot idx with each field scaled to [0, 1], for
// drawing the snapshot grid.
func (b *Bank) Normalized(idx int) (Snapshot, error) {
	s, err := b.Get(idx)
	if err != nil {
		return Snapshot{}, err
	}
	return b.bounds.Normalize(s), nil
}

// Blend resolves a dial value in [0, Max] to the interpolation of the two
// bracketing slots. Values outside the range are clamped; at Max the top
// slot blends with itself.
func (b *Bank) Blend(value float64) Snapshot {
	if math.IsNaN(value) || value < 0 {
		value = 0
	} else if value > Max {
		value = Max
	}
	i := int(math.Floor(value))
	t := value - float64(i)
	j := i + 1
	if j > Max {
		j = Max
	}

	b.mu.Lock()
	lo, hi := b.slots[i], b.slots[j]
	b.mu.Unlock()
	if t == 0 {
		return lo
	}
	return Lerp(lo, hi, t)
}

// All returns a copy of every slot.
func (b *Bank) All() [Count]Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slots
}
