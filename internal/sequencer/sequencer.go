// Package sequencer plays a timed note list into a block-based instrument,
// scheduling each note on and off at its exact frame.
package sequencer

import (
	"math"
	"sort"

	"github.com/cbegin/waveshaper-go/internal/midi"
)

// Instrument is what the sequencer drives.
type Instrument interface {
	// QueueEvent schedules ev for the next rendered block.
	QueueEvent(ev midi.Event) bool
	// Process renders interleaved stereo frames.
	Process(dst []float32)
	// BlockSize is the largest number of frames Process handles per block.
	BlockSize() int
	// Sounding reports whether a note is held or still releasing.
	Sounding() bool
}

// EventKind identifies sequencer lifecycle events.
type EventKind int

const (
	EventLoopCompleted EventKind = iota
	EventPlaybackEnded
)

// Note is one note of a score, timed in seconds.
type Note struct {
	Key      uint8   `yaml:"key"`
	Velocity uint8   `yaml:"velocity"`
	Start    float64 `yaml:"start"`
	Length   float64 `yaml:"length"`
}

// Score is a note list. Length, when longer than the last note, pads the
// end of each loop pass with silence.
type Score struct {
	Notes  []Note  `yaml:"notes"`
	Length float64 `yaml:"length"`
}

// End is the time in seconds at which one pass of the score finishes.
func (sc *Score) End() float64 {
	end := sc.Length
	for _, n := range sc.Notes {
		end = math.Max(end, n.Start+n.Length)
	}
	return end
}

type Options struct {
	LoopWholeScore    bool
	OnEvent           func(EventKind)
	ReleaseTailFrames int // extra frames to render after the instrument falls silent (0 = 0.1s default)
	MasterTranspose   int // master octave shift applied to all notes (e.g. -2..+2)
}

type timedEvent struct {
	frame int
	ev    midi.Event
}

type Sequencer struct {
	inst               Instrument
	sampleRate         int
	events             []timedEvent
	passFrames         int
	cursor             int
	pos                int // frames into the current pass
	loopWholeScore     bool
	onEvent            func(EventKind)
	releaseTailFrames  int
	playbackEndedFired bool
}

func New(score *Score, inst Instrument, sampleRate int) *Sequencer {
	return NewWithOptions(score, inst, sampleRate, Options{})
}

func NewWithOptions(score *Score, inst Instrument, sampleRate int, opts Options) *Sequencer {
	tailFrames := opts.ReleaseTailFrames
	if tailFrames <= 0 {
		tailFrames = sampleRate / 10
	}
	s := &Sequencer{
		inst:              inst,
		sampleRate:        sampleRate,
		loopWholeScore:    opts.LoopWholeScore,
		onEvent:           opts.OnEvent,
		releaseTailFrames: tailFrames,
	}
	s.events, s.passFrames = compile(score, sampleRate, opts.MasterTranspose*12)
	return s
}

// compile turns notes into frame-stamped on/off events. Offs sort before
// ons at the same frame so a repeated key retriggers.
func compile(score *Score, sampleRate, transpose int) ([]timedEvent, int) {
	if score == nil {
		return nil, 0
	}
	toFrame := func(sec float64) int {
		return int(math.Round(math.Max(0, sec) * float64(sampleRate)))
	}
	var events []timedEvent
	for _, n := range score.Notes {
		key := int(n.Key) + transpose
		if key < 0 || key > 127 || n.Length <= 0 {
			continue
		}
		vel := n.Velocity
		if vel == 0 {
			vel = 100
		}
		on, off := toFrame(n.Start), toFrame(n.Start+n.Length)
		if off <= on {
			off = on + 1
		}
		events = append(events,
			timedEvent{frame: on, ev: midi.Event{Kind: midi.KindNoteOn, Note: uint8(key), Velocity: min(vel, 127)}},
			timedEvent{frame: off, ev: midi.Event{Kind: midi.KindNoteOff, Note: uint8(key)}},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].frame != events[j].frame {
			return events[i].frame < events[j].frame
		}
		return events[i].ev.Kind == midi.KindNoteOff && events[j].ev.Kind == midi.KindNoteOn
	})
	return events, toFrame(score.End())
}

// Process renders len(dst)/2 frames, block by block, queueing every event
// that falls inside a block at its offset.
func (s *Sequencer) Process(dst []float32) {
	frames := len(dst) / 2
	block := s.inst.BlockSize()
	if block < 1 {
		block = frames
	}
	for done := 0; done < frames; {
		n := min(frames-done, block)
		if s.loopWholeScore && s.passFrames > 0 && s.pos+n > s.passFrames && s.pos < s.passFrames {
			n = s.passFrames - s.pos
		}
		s.dispatch(n)
		s.inst.Process(dst[done*2 : (done+n)*2])
		s.pos += n
		done += n
		s.checkEnd(n)
	}
}

func (s *Sequencer) dispatch(n int) {
	for s.cursor < len(s.events) && s.events[s.cursor].frame < s.pos+n {
		te := s.events[s.cursor]
		// An event held back by a full queue plays at the start of this chunk.
		te.ev.Offset = max(te.frame-s.pos, 0)
		if !s.inst.QueueEvent(te.ev) {
			return
		}
		s.cursor++
	}
}

func (s *Sequencer) checkEnd(rendered int) {
	if s.cursor < len(s.events) {
		return
	}
	if s.loopWholeScore && s.passFrames > 0 {
		if s.pos >= s.passFrames {
			s.cursor = 0
			s.pos = 0
			if s.onEvent != nil {
				s.onEvent(EventLoopCompleted)
			}
		}
		return
	}
	if s.playbackEndedFired || s.inst.Sounding() {
		return
	}
	s.releaseTailFrames -= rendered
	if s.releaseTailFrames <= 0 {
		s.playbackEndedFired = true
		if s.onEvent != nil {
			s.onEvent(EventPlaybackEnded)
		}
	}
}

// Finished reports whether a non-looping score has played out, including
// the release tail.
func (s *Sequencer) Finished() bool { return s.playbackEndedFired }

// Duration is the length in frames of one pass of the score.
func (s *Sequencer) Duration() int { return s.passFrames }
