// Package engine is the WaveShaper DSP core: noise-driven wavetable
// scrubbing with an ADSR envelope, ramped controls and snapshot blending.
//
// ProcessMidiMsg, ProcessBlock and Reset belong to the audio goroutine.
// Every other method may be called from any goroutine; parameter changes
// are picked up at the start of the next block.
package engine

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/waveshaper-go/internal/midi"
	"github.com/cbegin/waveshaper-go/internal/noise"
	"github.com/cbegin/waveshaper-go/internal/params"
	"github.com/cbegin/waveshaper-go/internal/snapshot"
	"github.com/cbegin/waveshaper-go/internal/wavetable"
)

// Smoothing times for parameter changes, in seconds.
const (
	ModSmoothing   = 0.01
	RateSmoothing  = 0.01
	RangeSmoothing = 0.1
	ShapeSmoothing = 0.1
)

const (
	dirtyMod uint32 = 1 << iota
	dirtyRate
	dirtyRange
	dirtyShape
)

type Params struct {
	Channels int
	Seed     int64
	// OnParamChange is told about parameter values the engine changes by
	// itself, such as the four noise controls moved by the snapshot dial.
	OnParamChange func(id params.ID, plain float64)
}

func DefaultParams() Params {
	return Params{Channels: 2, Seed: 1}
}

type atomicFloat struct{ bits atomic.Uint64 }

func (f *atomicFloat) Load() float64   { return math.Float64frombits(f.bits.Load()) }
func (f *atomicFloat) Store(v float64) { f.bits.Store(math.Float64bits(v)) }

type Engine struct {
	channels   int
	sampleRate float64
	blockSize  int
	listener   func(params.ID, float64)

	// audio goroutine only
	queue   *midi.Queue
	notes   midi.NoteStack
	chain   chain
	scratch [][]float32

	// written by setters, read at block start
	volume  atomicFloat // linear
	attack  atomicFloat
	decay   atomicFloat
	sustain atomicFloat // fraction
	release atomicFloat
	tint    atomic.Int32
	mod     atomicFloat
	rate    atomicFloat
	rng     atomicFloat
	shape   atomicFloat
	dirty   atomic.Uint32
	tables  atomic.Pointer[wavetable.Pair]

	// written by the audio goroutine for visualisation
	visOffset atomicFloat
	visRate   atomicFloat
	visShape  atomicFloat
	visMap    atomicFloat
	visEnv    atomicFloat
	noteOn    atomic.Bool

	snapshots *snapshot.Bank
}

// New builds an engine with every parameter at its default. Reset must be
// called before the first ProcessBlock.
func New(p Params) *Engine {
	if p.Channels <= 0 {
		p.Channels = 2
	}
	e := &Engine{
		channels: p.Channels,
		listener: p.OnParamChange,
		queue:    midi.NewQueue(512),
	}
	e.volume.Store(1)
	e.attack.Store(params.EnvAttack.Spec().Default)
	e.decay.Store(params.EnvDecay.Spec().Default)
	e.sustain.Store(params.EnvSustain.Spec().Default / 100)
	e.release.Store(params.EnvRelease.Spec().Default)
	e.tint.Store(int32(params.NoiseTint.Spec().Default))
	e.mod.Store(params.NoiseAmpMod.Spec().Default)
	e.rate.Store(params.NoiseRate.Spec().Default)
	e.rng.Store(params.NoiseRange.Spec().Default)
	e.shape.Store(params.NoiseShape.Spec().Default)
	e.tables.Store(wavetable.NewPair(nil))

	e.chain = newChain(noise.Tint(e.tint.Load()), p.Seed, e.mod.Load(), e.rng.Load(), e.shape.Load())
	e.visShape.Store(e.shape.Load())
	e.visOffset.Store(e.rng.Load())
	e.visMap.Store(0.5)

	e.snapshots = snapshot.NewBank(e.liveSnapshot(), snapshotBounds())
	return e
}

func (e *Engine) Channels() int       { return e.channels }
func (e *Engine) SampleRate() float64 { return e.sampleRate }
func (e *Engine) BlockSize() int      { return e.blockSize }

// DBToAmp converts decibels to linear gain. Anything at or below the bottom
// of the volume range is silence.
func DBToAmp(db float64) float64 {
	if db <= params.Volume.Spec().Min {
		return 0
	}
	return math.Pow(10, db/20)
}

// SetVolume sets the output level in dB.
func (e *Engine) SetVolume(db float64) { e.volume.Store(DBToAmp(db)) }

// The envelope times are read when a note starts.
func (e *Engine) SetAttack(seconds float64)  { e.attack.Store(math.Max(0, seconds)) }
func (e *Engine) SetDecay(seconds float64)   { e.decay.Store(math.Max(0, seconds)) }
func (e *Engine) SetRelease(seconds float64) { e.release.Store(math.Max(0, seconds)) }

// SetSustain sets the sustain level as a fraction of the note amplitude.
func (e *Engine) SetSustain(level float64) {
	e.sustain.Store(math.Max(0, math.Min(1, level)))
}

func (e *Engine) SetNoiseTint(t noise.Tint) {
	if !t.Valid() {
		t = noise.TintWhite
	}
	e.tint.Store(int32(t))
}

// SetNoiseMod sets the modulation oscillator frequency in Hz.
func (e *Engine) SetNoiseMod(hz float64) {
	e.mod.Store(hz)
	e.dirty.Or(dirtyMod)
}

// SetNoiseRate sets the scrub rate. While notes are held the change is
// ramped in; otherwise it takes effect with the next note.
func (e *Engine) SetNoiseRate(rate float64) {
	e.rate.Store(rate)
	e.dirty.Or(dirtyRate)
}

func (e *Engine) SetNoiseRange(v float64) {
	e.rng.Store(v)
	e.dirty.Or(dirtyRange)
}

func (e *Engine) SetNoiseShape(v float64) {
	e.shape.Store(v)
	e.dirty.Or(dirtyShape)
}

// SetWavetables replaces the lookup tables with per-channel sample data.
// The tables are built here and published whole; the audio goroutine picks
// them up at its next block.
func (e *Engine) SetWavetables(channels [][]float32) {
	e.tables.Store(wavetable.NewPair(channels))
}

// NoiseOffset is the current scrub centre (the ramped range control).
func (e *Engine) NoiseOffset() float64 { return e.visOffset.Load() }

// NoiseRate is the effective scrub rate, including note on/off ramps.
func (e *Engine) NoiseRate() float64 { return e.visRate.Load() }

// Shape is the current ramped shape (scrub window width).
func (e *Engine) Shape() float64 { return e.visShape.Load() }

// ShaperSize is the per-channel length of the current wavetables.
func (e *Engine) ShaperSize() int { return e.tables.Load().Size() }

// ShaperMapValue is the left shaper's last lookup position in [0, 1].
func (e *Engine) ShaperMapValue() float64 { return e.visMap.Load() }

// Envelope is the last envelope amplitude.
func (e *Engine) Envelope() float64 { return e.visEnv.Load() }

// NoteHeld reports whether any note was held at the end of the last block.
func (e *Engine) NoteHeld() bool { return e.noteOn.Load() }
