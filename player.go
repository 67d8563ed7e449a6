package waveshaper

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	intaudio "github.com/cbegin/waveshaper-go/internal/audio"
	intseq "github.com/cbegin/waveshaper-go/internal/sequencer"
)

type (
	Score = intseq.Score
	Note  = intseq.Note
)

// PlaybackEvent carries playback events from Watch().
type PlaybackEvent struct {
	Kind int // EventLoopCompleted or EventPlaybackEnded
}

const (
	EventLoopCompleted int = iota
	EventPlaybackEnded
)

// DefaultBlockSize is the block length used when none is configured.
const DefaultBlockSize = 512

type PlayerOption func(*playerConfig)

type playerConfig struct {
	blockSize    int
	latency      time.Duration
	loopPlayback bool
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{blockSize: DefaultBlockSize, latency: 20 * time.Millisecond}
}

func WithBlockSize(frames int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.blockSize = frames
	}
}

// WithLatency sets the output buffer duration. Zero keeps the driver default.
func WithLatency(d time.Duration) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.latency = d
	}
}

func WithLoopPlayback(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.loopPlayback = enabled
	}
}

// Player streams an Instrument to the system audio output, either live
// (notes arrive through ProcessMidiMsg or NoteOn/NoteOff) or from a Score.
type Player struct {
	mu           sync.Mutex
	inst         *Instrument
	sampleRate   int
	blockSize    int
	latency      time.Duration
	loopPlayback bool
	transpose    int
	audio        *intaudio.Player
	done         chan struct{}
	eventCh      chan PlaybackEvent
	eventChMu    sync.Mutex
}

// scoreSource wraps a sequencer and implements SampleSource + FinishingSource
// to signal when non-looping playback ends.
type scoreSource struct {
	seq      *intseq.Sequencer
	finished atomic.Bool
}

func (s *scoreSource) Process(dst []float32) { s.seq.Process(dst) }
func (s *scoreSource) Finished() bool        { return s.finished.Load() }

func NewPlayer(inst *Instrument, sampleRate int, opts ...PlayerOption) (*Player, error) {
	if inst == nil {
		return nil, errors.New("waveshaper: nil instrument")
	}
	if sampleRate <= 0 {
		return nil, errors.Wrapf(ErrInvalidSampleRate, "got %d", sampleRate)
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.blockSize <= 0 {
		cfg.blockSize = DefaultBlockSize
	}
	return &Player{
		inst:         inst,
		sampleRate:   sampleRate,
		blockSize:    cfg.blockSize,
		latency:      cfg.latency,
		loopPlayback: cfg.loopPlayback,
	}, nil
}

func (p *Player) Instrument() *Instrument { return p.inst }

// Live starts streaming the instrument with no score. It plays until Stop.
func (p *Player) Live() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.start(p.inst, nil)
}

// Play streams score through the instrument.
func (p *Player) Play(score *Score) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	src := &scoreSource{}
	onEvent := func(kind intseq.EventKind) {
		if kind == intseq.EventPlaybackEnded {
			src.finished.Store(true)
		}
		p.sendEvent(PlaybackEvent{Kind: int(kind)})
		if kind == intseq.EventPlaybackEnded {
			p.signalDone()
		}
	}
	src.seq = intseq.NewWithOptions(score, p.inst, p.sampleRate, intseq.Options{
		LoopWholeScore:  p.loopPlayback,
		OnEvent:         onEvent,
		MasterTranspose: p.transpose,
	})
	return p.start(src, make(chan struct{}))
}

// start replaces any running stream. Callers hold p.mu.
func (p *Player) start(src intaudio.SampleSource, done chan struct{}) error {
	// Signal any existing Wait() that the previous playback was replaced
	if p.done != nil {
		close(p.done)
		p.done = nil
	}
	if p.audio != nil {
		_ = p.audio.Stop()
		p.audio = nil
	}
	if err := p.inst.Prepare(p.sampleRate, p.blockSize); err != nil {
		return err
	}
	backend, err := intaudio.NewPlayer(p.sampleRate, src, p.latency)
	if err != nil {
		return err
	}
	p.done = done
	p.audio = backend
	p.audio.Play()
	p.inst.log.Info("playback started", "sample_rate", p.sampleRate, "block_size", p.blockSize, "score", done != nil)
	return nil
}

// NoteOn sends a note to the instrument from any goroutine.
func (p *Player) NoteOn(key, velocity uint8) bool {
	return p.inst.Post(Event{Kind: KindNoteOn, Note: key, Velocity: velocity})
}

func (p *Player) NoteOff(key uint8) bool {
	return p.inst.Post(Event{Kind: KindNoteOff, Note: key})
}

// AllNotesOff releases every held note.
func (p *Player) AllNotesOff() bool {
	return p.inst.Post(Event{Kind: KindControlChange, Controller: ccAllNotesOff})
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full or closed; drop event
		}
	}
}

func (p *Player) signalDone() {
	p.mu.Lock()
	done := p.done
	p.done = nil
	p.mu.Unlock()
	if done != nil {
		close(done)
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	done := p.done
	p.done = nil
	p.mu.Unlock()
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	if done != nil {
		close(done)
	}
	return err
}

// Wait blocks until the current score ends. Live playback and looping
// scores end only with Stop.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel that receives playback events. Events are sent when:
//   - EventLoopCompleted: a whole-score loop iteration finished (when looping)
//   - EventPlaybackEnded: playback finished (when not looping) or Stop was called
//
// The channel is buffered (cap 8). Only the most recent Watch() channel
// receives events; call Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// SetTranspose sets the master octave shift applied to score notes.
// Takes effect on the next Play call.
func (p *Player) SetTranspose(octaves int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transpose = octaves
}

func (p *Player) Transpose() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transpose
}

// PlaybackPosition returns the current output position of the audio driver,
// i.e. what the listener actually hears right now. Returns 0 if not playing.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return int64(a.Position().Seconds() * float64(p.sampleRate))
}
