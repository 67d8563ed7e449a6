// Package waveshaper is a noise-driven wavetable instrument: a loaded
// audio file is scrubbed by tinted noise and an oscillator, shaped by an
// ADSR envelope and played from MIDI notes.
package waveshaper

import (
	"log/slog"
	"math"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/pkg/errors"

	"github.com/cbegin/waveshaper-go/internal/effects"
	"github.com/cbegin/waveshaper-go/internal/engine"
	"github.com/cbegin/waveshaper-go/internal/midi"
	"github.com/cbegin/waveshaper-go/internal/noise"
	"github.com/cbegin/waveshaper-go/internal/params"
	"github.com/cbegin/waveshaper-go/internal/sample"
	"github.com/cbegin/waveshaper-go/internal/snapshot"
)

type (
	ParamID    = params.ID
	ParamSpec  = params.Spec
	Snapshot   = snapshot.Snapshot
	Buffer     = sample.Buffer
	Event      = midi.Event
	EffectSpec = effects.Spec
)

const (
	ParamVolume        = params.Volume
	ParamNoiseTint     = params.NoiseTint
	ParamNoiseAmpMod   = params.NoiseAmpMod
	ParamNoiseRate     = params.NoiseRate
	ParamNoiseRange    = params.NoiseRange
	ParamNoiseShape    = params.NoiseShape
	ParamNoiseSnapshot = params.NoiseSnapshot
	ParamAttack        = params.EnvAttack
	ParamDecay         = params.EnvDecay
	ParamSustain       = params.EnvSustain
	ParamRelease       = params.EnvRelease
)

const (
	KindNoteOn        = midi.KindNoteOn
	KindNoteOff       = midi.KindNoteOff
	KindControlChange = midi.KindControlChange
)

// SnapshotCount is the number of snapshot slots behind the snapshot dial.
const SnapshotCount = snapshot.Count

var (
	ErrInvalidSampleRate   = errors.New("waveshaper: sample rate must be positive")
	ErrNoAudioData         = sample.ErrNoAudioData
	ErrUnsupportedChannels = sample.ErrUnsupportedChannels
	ErrInvalidSnapshot     = snapshot.ErrInvalidSnapshot
	ErrUnknownParam        = params.ErrUnknownParam
)

const (
	auditionNote     = 60
	auditionVelocity = 127
	inboxSize        = 256
	ccAllNotesOff    = 123
)

// Host is what an editor needs from the instrument: the visualisation
// getters, parameter access, snapshot slots and MIDI learn.
type Host interface {
	NoiseOffset() float64
	NoiseRate() float64
	Shape() float64
	ShaperSize() int
	ShaperMapValue() float64
	ScrubWindow() (start, end float64)

	Param(id ParamID) float64
	OnParamChange(id ParamID, value float64) error

	UpdateNoiseSnapshot(idx int) error
	NoiseSnapshot(idx int) (Snapshot, error)
	NoiseSnapshotNormalized(idx int) (Snapshot, error)

	BeginMIDILearn(ids ...ParamID) error
	Audition(on bool)
}

var _ Host = (*Instrument)(nil)

type Option func(*config)

type config struct {
	channels  int
	seed      int64
	listener  func(ParamID, float64)
	midiOut   func(gomidi.Message)
	logger    *slog.Logger
	sampleTap func([]float32)
	effects   []effects.Spec
}

func defaultConfig() config {
	p := engine.DefaultParams()
	return config{channels: p.Channels, seed: p.Seed}
}

// WithChannelCount sets the number of output channels ProcessBlock fills.
func WithChannelCount(n int) Option {
	return func(cfg *config) {
		cfg.channels = n
	}
}

// WithSeed makes the noise sequence reproducible.
func WithSeed(seed int64) Option {
	return func(cfg *config) {
		cfg.seed = seed
	}
}

// WithParamListener is told about parameter values the instrument changes
// itself: snapshot blending and mapped MIDI controllers.
func WithParamListener(fn func(id ParamID, value float64)) Option {
	return func(cfg *config) {
		cfg.listener = fn
	}
}

// WithMidiOut receives a control change whenever a MIDI-mapped parameter is
// moved through OnParamChange, so external controllers can follow.
func WithMidiOut(fn func(gomidi.Message)) Option {
	return func(cfg *config) {
		cfg.midiOut = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) Option {
	return func(cfg *config) {
		cfg.sampleTap = tap
	}
}

// WithEffects adds a post-processing chain, built when Prepare is called.
func WithEffects(specs ...effects.Spec) Option {
	return func(cfg *config) {
		cfg.effects = append(cfg.effects, specs...)
	}
}

// Instrument wraps the engine with parameter state, MIDI mapping and an
// optional effect chain.
//
// Prepare, Process and QueueEvent run on the audio goroutine. Everything
// else is safe from any goroutine.
type Instrument struct {
	cfg    config
	log    *slog.Logger
	engine *engine.Engine
	store  *params.Store
	ccmap  *params.CCMap
	inbox  chan midi.Event

	// pending is the inbox event the engine queue had no room for.
	pending    midi.Event
	hasPending bool

	learnMu  sync.Mutex
	learning []ParamID

	mu         sync.Mutex
	buffer     *sample.Buffer
	samplePath string
	sampleRate int

	fx *effects.Chain
}

func New(opts ...Option) *Instrument {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	in := &Instrument{
		cfg:   cfg,
		log:   logger,
		store: params.NewStore(),
		ccmap: params.NewCCMap(),
		inbox: make(chan midi.Event, inboxSize),
	}
	in.engine = engine.New(engine.Params{
		Channels:      cfg.channels,
		Seed:          cfg.seed,
		OnParamChange: in.engineChanged,
	})
	return in
}

// engineChanged mirrors values the engine moved by itself into the store.
func (in *Instrument) engineChanged(id ParamID, value float64) {
	v := in.store.Set(id, value)
	if in.cfg.listener != nil {
		in.cfg.listener(id, v)
	}
}

// Prepare sets the sample rate and maximum block size, rebuilds the effect
// chain and drops pending notes.
func (in *Instrument) Prepare(sampleRate, blockSize int) error {
	if sampleRate <= 0 {
		return errors.Wrapf(ErrInvalidSampleRate, "got %d", sampleRate)
	}
	fx, err := effects.Build(sampleRate, in.cfg.effects)
	if err != nil {
		return err
	}
	for len(in.inbox) > 0 {
		<-in.inbox
	}
	in.hasPending = false
	in.engine.Reset(float64(sampleRate), blockSize)
	in.fx = fx
	in.mu.Lock()
	in.sampleRate = sampleRate
	in.mu.Unlock()
	in.log.Debug("instrument prepared", "sample_rate", sampleRate, "block_size", blockSize, "effects", fx.Len())
	return nil
}

func (in *Instrument) SampleRate() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.sampleRate
}

func (in *Instrument) BlockSize() int { return in.engine.BlockSize() }
func (in *Instrument) Channels() int  { return in.engine.Channels() }

// LoadSample reads a WAV file and installs it as the wavetable.
func (in *Instrument) LoadSample(path string) error {
	buf, err := sample.Load(path, in.log)
	if err != nil {
		return err
	}
	in.SetSample(buf)
	in.mu.Lock()
	in.samplePath = path
	in.mu.Unlock()
	in.log.Info("sample loaded", "path", path, "frames", buf.Frames(), "channels", buf.NumChannels())
	return nil
}

// SetSample installs decoded audio as the wavetable. A nil buffer clears
// it, which silences the output.
func (in *Instrument) SetSample(buf *sample.Buffer) {
	var channels [][]float32
	if buf != nil {
		channels = buf.Channels
	}
	in.engine.SetWavetables(channels)
	in.mu.Lock()
	in.buffer = buf
	in.samplePath = ""
	in.mu.Unlock()
}

// Sample returns the installed audio, or nil.
func (in *Instrument) Sample() *sample.Buffer {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.buffer
}

// SamplePath is the file the installed audio was loaded from, if any.
func (in *Instrument) SamplePath() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.samplePath
}

// Peaks summarises the installed audio for a waveform overview.
func (in *Instrument) Peaks(buckets int) []float32 {
	return sample.Peaks(in.Sample(), buckets)
}

// Param returns the current plain value of id.
func (in *Instrument) Param(id ParamID) float64 { return in.store.Get(id) }

// ParamNormalized returns the current value of id mapped to [0, 1].
func (in *Instrument) ParamNormalized(id ParamID) float64 { return in.store.Normalized(id) }

// OnParamChange sets a parameter from its plain value and applies it to
// the engine. A mapped controller is echoed to the MIDI output.
func (in *Instrument) OnParamChange(id ParamID, value float64) error {
	if !id.Valid() {
		return errors.Wrapf(ErrUnknownParam, "id %d", int(id))
	}
	v := in.store.Set(id, value)
	in.apply(id, v)
	if cc := in.ccmap.Controller(id); cc != params.Unmapped && in.cfg.midiOut != nil {
		in.cfg.midiOut(gomidi.ControlChange(0, cc, uint8(math.Round(id.Spec().Normalize(v)*127))))
	}
	return nil
}

// SetParamNormalized sets a parameter from a [0, 1] value.
func (in *Instrument) SetParamNormalized(id ParamID, norm float64) error {
	if !id.Valid() {
		return errors.Wrapf(ErrUnknownParam, "id %d", int(id))
	}
	return in.OnParamChange(id, id.Spec().Denormalize(norm))
}

func (in *Instrument) apply(id ParamID, v float64) {
	switch id {
	case params.Volume:
		in.engine.SetVolume(v)
	case params.NoiseTint:
		in.engine.SetNoiseTint(noise.Tint(v))
	case params.NoiseAmpMod:
		in.engine.SetNoiseMod(v)
	case params.NoiseRate:
		in.engine.SetNoiseRate(v)
	case params.NoiseRange:
		in.engine.SetNoiseRange(v)
	case params.NoiseShape:
		in.engine.SetNoiseShape(v)
	case params.NoiseSnapshot:
		in.engine.SetNoiseSnapshot(v)
	case params.EnvAttack:
		in.engine.SetAttack(v)
	case params.EnvDecay:
		in.engine.SetDecay(v)
	case params.EnvSustain:
		in.engine.SetSustain(v / 100)
	case params.EnvRelease:
		in.engine.SetRelease(v)
	}
}

// ProcessMidiMsg accepts a raw MIDI message from any goroutine. Notes and
// all-notes-off are handed to the audio goroutine for the next block;
// other control changes drive MIDI learn and mapped parameters. It reports
// whether the message was used.
func (in *Instrument) ProcessMidiMsg(msg gomidi.Message, offset int) bool {
	ev, ok := midi.Decode(msg, offset)
	if !ok {
		return false
	}
	if ev.Kind == midi.KindControlChange && ev.Controller != ccAllNotesOff {
		return in.controlChange(ev.Controller, ev.Value)
	}
	return in.Post(ev)
}

// Post hands an event to the audio goroutine. It reports false when the
// inbox is full.
func (in *Instrument) Post(ev midi.Event) bool {
	select {
	case in.inbox <- ev:
		return true
	default:
		return false
	}
}

// QueueEvent schedules ev directly in the current block. Audio goroutine
// only.
func (in *Instrument) QueueEvent(ev midi.Event) bool {
	return in.engine.ProcessMidiMsg(ev)
}

// Audition starts or stops middle C at full velocity.
func (in *Instrument) Audition(on bool) {
	var msg gomidi.Message = gomidi.NoteOff(0, auditionNote)
	if on {
		msg = gomidi.NoteOn(0, auditionNote, auditionVelocity)
	}
	in.ProcessMidiMsg(msg, 0)
}

// BeginMIDILearn arms ids so the next control change binds its controller
// to them.
func (in *Instrument) BeginMIDILearn(ids ...ParamID) error {
	if len(ids) == 0 {
		return errors.New("waveshaper: MIDI learn needs at least one parameter")
	}
	for _, id := range ids {
		if !id.Valid() {
			return errors.Wrapf(ErrUnknownParam, "id %d", int(id))
		}
	}
	in.learnMu.Lock()
	in.learning = append(in.learning[:0], ids...)
	in.learnMu.Unlock()
	in.log.Info("midi learn armed", "params", ids)
	return nil
}

func (in *Instrument) CancelMIDILearn() {
	in.learnMu.Lock()
	in.learning = in.learning[:0]
	in.learnMu.Unlock()
}

// Learning reports whether MIDI learn is waiting for a controller.
func (in *Instrument) Learning() bool {
	in.learnMu.Lock()
	defer in.learnMu.Unlock()
	return len(in.learning) > 0
}

// MapController binds cc to id directly.
func (in *Instrument) MapController(id ParamID, cc uint8) error {
	if !id.Valid() {
		return errors.Wrapf(ErrUnknownParam, "id %d", int(id))
	}
	in.ccmap.Bind(id, cc)
	return nil
}

func (in *Instrument) UnmapController(id ParamID) { in.ccmap.Unbind(id) }

// ControllerMap returns the current parameter to controller bindings.
func (in *Instrument) ControllerMap() map[ParamID]uint8 { return in.ccmap.Bindings() }

func (in *Instrument) controlChange(cc, value uint8) bool {
	in.learnMu.Lock()
	learned := len(in.learning) > 0
	for _, id := range in.learning {
		in.ccmap.Bind(id, cc)
	}
	if learned {
		in.log.Info("midi learn bound", "cc", cc, "params", in.learning)
		in.learning = in.learning[:0]
	}
	in.learnMu.Unlock()

	var buf [params.Count]ParamID
	targets := in.ccmap.Targets(buf[:0], cc)
	for _, id := range targets {
		v := in.store.SetNormalized(id, float64(value)/127)
		in.apply(id, v)
		if in.cfg.listener != nil {
			in.cfg.listener(id, v)
		}
	}
	return learned || len(targets) > 0
}

// Process renders len(dst)/2 interleaved stereo frames: pending notes from
// other goroutines first, then the engine, effects and sample tap.
func (in *Instrument) Process(dst []float32) {
	in.drainInbox()
	in.engine.ProcessInterleaved(dst)
	in.fx.ProcessInterleaved(dst)
	if in.cfg.sampleTap != nil {
		in.cfg.sampleTap(dst)
	}
}

// drainInbox moves posted events into the engine queue until it is full.
// An event that does not fit waits for the next block.
func (in *Instrument) drainInbox() {
	if in.hasPending {
		if !in.queue(in.pending) {
			return
		}
		in.hasPending = false
	}
	for {
		select {
		case ev := <-in.inbox:
			if !in.queue(ev) {
				in.pending, in.hasPending = ev, true
				return
			}
		default:
			return
		}
	}
}

// queue reports false only when ev was refused for lack of room.
func (in *Instrument) queue(ev midi.Event) bool {
	return in.engine.ProcessMidiMsg(ev) || !in.engine.QueueFull()
}

// ProcessBlock renders nFrames into per-channel outputs, bypassing the
// effect chain. Audio goroutine only.
func (in *Instrument) ProcessBlock(inputs, outputs [][]float32, nFrames int) {
	in.engine.ProcessBlock(inputs, outputs, nFrames)
}

// Sounding reports whether a note is held or still releasing.
func (in *Instrument) Sounding() bool {
	return in.engine.NoteHeld() || in.engine.Envelope() > 0
}

func (in *Instrument) NoiseOffset() float64    { return in.engine.NoiseOffset() }
func (in *Instrument) NoiseRate() float64      { return in.engine.NoiseRate() }
func (in *Instrument) Shape() float64          { return in.engine.Shape() }
func (in *Instrument) ShaperSize() int         { return in.engine.ShaperSize() }
func (in *Instrument) ShaperMapValue() float64 { return in.engine.ShaperMapValue() }
func (in *Instrument) Envelope() float64       { return in.engine.Envelope() }

// ScrubWindow is the span of the table, as fractions of its length, that
// the scrub position currently covers. The ends may fall outside [0, 1];
// lookups wrap.
func (in *Instrument) ScrubWindow() (start, end float64) {
	offset, shape := in.engine.NoiseOffset(), in.engine.Shape()
	return (offset-shape)/2 + 0.5, (offset+shape)/2 + 0.5
}

func (in *Instrument) UpdateNoiseSnapshot(idx int) error {
	return in.engine.UpdateNoiseSnapshot(idx)
}

func (in *Instrument) StoreNoiseSnapshot(idx int, s Snapshot) error {
	return in.engine.StoreNoiseSnapshot(idx, s)
}

func (in *Instrument) NoiseSnapshot(idx int) (Snapshot, error) {
	return in.engine.NoiseSnapshot(idx)
}

func (in *Instrument) NoiseSnapshotNormalized(idx int) (Snapshot, error) {
	return in.engine.NoiseSnapshotNormalized(idx)
}

func (in *Instrument) NoiseSnapshots() [SnapshotCount]Snapshot {
	return in.engine.NoiseSnapshots()
}
