package engine

import (
	"github.com/cbegin/waveshaper-go/internal/envelope"
	"github.com/cbegin/waveshaper-go/internal/lfo"
	"github.com/cbegin/waveshaper-go/internal/noise"
	"github.com/cbegin/waveshaper-go/internal/pan"
	"github.com/cbegin/waveshaper-go/internal/ramp"
	"github.com/cbegin/waveshaper-go/internal/wavetable"
)

// chain is the per-sample signal graph. Nodes are plain values owned by the
// chain and wired by direct calls in tick.
//
//	rate ramp -> noise ticker --x-- + range ramp -> shaper L -> pan L --+
//	mod/shape ramps -> sine osc -^                 -> shaper R -> pan R --+-> env -> volume
type chain struct {
	sampleRate float64

	gen   *noise.Generator
	noise *noise.RateTicker
	osc   lfo.LFO

	modRamp   ramp.Ramp
	rateRamp  ramp.Ramp
	rangeRamp ramp.Ramp
	shapeRamp ramp.Ramp

	shaperL wavetable.Shaper
	shaperR wavetable.Shaper
	panL    pan.Panner
	panR    pan.Panner

	env envelope.ADSR
}

func newChain(tint noise.Tint, seed int64, mod, rng, shape float64) chain {
	gen := noise.NewGenerator(tint, seed)
	c := chain{
		gen:       gen,
		noise:     noise.NewRateTicker(gen),
		modRamp:   ramp.New(mod),
		rateRamp:  ramp.New(0),
		rangeRamp: ramp.New(rng),
		shapeRamp: ramp.New(shape),
		shaperL:   wavetable.NewShaper(1, 1, true),
		shaperR:   wavetable.NewShaper(1, 1, true),
		panL:      pan.New(-1, pan.ConstantPower),
		panR:      pan.New(1, pan.ConstantPower),
	}
	// A quarter cycle in, a stopped oscillator sits at its peak so pausing
	// the modulation holds the window at full width.
	c.osc.Set(shape, mod)
	c.osc.SetPhase(0.25)
	return c
}

func (c *chain) setSampleRate(sr float64) {
	c.sampleRate = sr
	c.modRamp.SetSampleRate(sr)
	c.rateRamp.SetSampleRate(sr)
	c.rangeRamp.SetSampleRate(sr)
	c.shapeRamp.SetSampleRate(sr)
	c.env.SetSampleRate(sr)
}

// scrubPosition advances the modulation sources one sample and returns the
// read position fed to both shapers.
func (c *chain) scrubPosition() float64 {
	n := c.noise.Tick(c.rateRamp.Tick())
	c.osc.SetRate(c.modRamp.Tick())
	c.osc.SetDepth(c.shapeRamp.Tick())
	return n*c.osc.Sample(c.sampleRate) + c.rangeRamp.Tick()
}

// tick renders one stereo frame before volume is applied.
func (c *chain) tick(tables *wavetable.Pair) (float64, float64) {
	pos := c.scrubPosition()
	ll, lr := c.panL.Process(c.shaperL.Process(tables.Left, pos))
	rl, rr := c.panR.Process(c.shaperR.Process(tables.Right, pos))
	l, r := pan.Sum(ll, lr, rl, rr)
	amp := c.env.Tick()
	return l * amp, r * amp
}
