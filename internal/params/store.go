package params

import (
	"math"
	"sync/atomic"
)

// Store holds the current plain value of every parameter. Values are read
// and written atomically so the audio goroutine may read them while a
// control goroutine writes.
type Store struct {
	values [Count]atomic.Uint64
}

func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset restores every parameter to its default.
func (s *Store) Reset() {
	for i := range specs {
		s.values[i].Store(math.Float64bits(specs[i].Default))
	}
}

// Set clamps plain into range, stores it and returns the stored value.
func (s *Store) Set(id ID, plain float64) float64 {
	if !id.Valid() {
		return 0
	}
	v := specs[id].Clamp(plain)
	s.values[id].Store(math.Float64bits(v))
	return v
}

func (s *Store) Get(id ID) float64 {
	if !id.Valid() {
		return 0
	}
	return math.Float64frombits(s.values[id].Load())
}

// SetNormalized stores a [0, 1] value and returns the plain result.
func (s *Store) SetNormalized(id ID, norm float64) float64 {
	if !id.Valid() {
		return 0
	}
	return s.Set(id, specs[id].Denormalize(norm))
}

func (s *Store) Normalized(id ID) float64 {
	if !id.Valid() {
		return 0
	}
	return specs[id].Normalize(s.Get(id))
}

// Changed lists the parameters whose value differs from the default.
func (s *Store) Changed() []ID {
	var out []ID
	for i := range specs {
		if s.Get(ID(i)) != specs[i].Default {
			out = append(out, ID(i))
		}
	}
	return out
}
