package params

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Unmapped is returned by Controller for parameters without a binding.
const Unmapped = 128

// CCMap binds MIDI controller numbers to parameters. Lookups load an
// immutable map and never block; Bind and Unbind publish a modified copy.
type CCMap struct {
	mu      sync.Mutex
	current atomic.Pointer[map[ID]uint8]
}

func NewCCMap() *CCMap {
	m := &CCMap{}
	empty := map[ID]uint8{}
	m.current.Store(&empty)
	return m
}

func (m *CCMap) load() map[ID]uint8 {
	if p := m.current.Load(); p != nil {
		return *p
	}
	return nil
}

func (m *CCMap) update(fn func(map[ID]uint8)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.load()
	next := make(map[ID]uint8, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	fn(next)
	m.current.Store(&next)
}

// Bind maps controller cc to id. A parameter has at most one controller;
// a controller may drive several parameters.
func (m *CCMap) Bind(id ID, cc uint8) {
	if !id.Valid() || cc >= Unmapped {
		return
	}
	m.update(func(next map[ID]uint8) { next[id] = cc })
}

func (m *CCMap) Unbind(id ID) {
	m.update(func(next map[ID]uint8) { delete(next, id) })
}

// Controller returns the controller bound to id, or Unmapped.
func (m *CCMap) Controller(id ID) uint8 {
	if cc, ok := m.load()[id]; ok {
		return cc
	}
	return Unmapped
}

// Targets appends to dst the parameters bound to cc, in id order.
func (m *CCMap) Targets(dst []ID, cc uint8) []ID {
	start := len(dst)
	for id, c := range m.load() {
		if c == cc {
			dst = append(dst, id)
		}
	}
	slices.Sort(dst[start:])
	return dst
}

// Bindings returns a copy of the current mapping.
func (m *CCMap) Bindings() map[ID]uint8 {
	cur := m.load()
	out := make(map[ID]uint8, len(cur))
	for k, v := range cur {
		out[k] = v
	}
	return out
}
