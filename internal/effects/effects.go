// Package effects is the optional stereo post-processing chain applied to
// the instrument output.
package effects

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownEffect is returned by Build for an unrecognised effect type.
var ErrUnknownEffect = errors.New("effects: unknown effect type")

// Effector processes one stereo frame.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(l, r float32) (float32, float32) {
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

// ProcessInterleaved runs every stereo frame of buf through the chain.
func (c *Chain) ProcessInterleaved(buf []float32) {
	if c == nil || len(c.effects) == 0 {
		return
	}
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = c.Process(buf[i], buf[i+1])
	}
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.effects)
}

// Spec describes one effect in a scene file.
type Spec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

func (s Spec) param(key string, def float64) float64 {
	if v, ok := s.Params[key]; ok {
		return v
	}
	return def
}

// Build constructs a chain from specs. Missing params take the defaults
// listed per type.
func Build(sampleRate int, specs []Spec) (*Chain, error) {
	c := NewChain()
	for i, s := range specs {
		var e Effector
		switch strings.ToLower(strings.TrimSpace(s.Type)) {
		case "delay":
			e = NewDelay(sampleRate, s.param("time_ms", 250), float32(s.param("feedback", 0.35)),
				float32(s.param("cross", 0.5)), float32(s.param("damp", 0.3)), float32(s.param("wet", 0.3)))
		case "reverb":
			e = NewReverb(sampleRate, float32(s.param("room", 0.5)), float32(s.param("decay", 0.7)),
				float32(s.param("spread", 0.3)), float32(s.param("wet", 0.25)))
		case "eq":
			eq := NewEQ5Band(sampleRate)
			for band, key := range bandKeys {
				eq.SetGainDB(band, float32(s.param(key, 0)))
			}
			e = eq
		case "drive":
			e = NewDrive(sampleRate, float32(s.param("gain", 4)), float32(s.param("tone_hz", 6000)),
				float32(s.param("wet", 1)))
		case "limiter":
			e = NewLimiter(sampleRate, float32(s.param("ceiling_db", -1)), float32(s.param("release_ms", 80)))
		default:
			return nil, errors.Wrapf(ErrUnknownEffect, "effect %d %q", i, s.Type)
		}
		c.Add(e)
	}
	return c, nil
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
