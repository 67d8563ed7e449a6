package engine

import (
	"github.com/cbegin/waveshaper-go/internal/midi"
	"github.com/cbegin/waveshaper-go/internal/noise"
)

// ccAllNotesOff is the channel mode message that releases every held note.
const ccAllNotesOff = 123

// Reset prepares the engine for a sample rate and maximum block size. It
// drops pending MIDI and held notes and silences the envelope.
func (e *Engine) Reset(sampleRate float64, blockSize int) {
	if blockSize < 1 {
		blockSize = 1
	}
	e.sampleRate = sampleRate
	e.blockSize = blockSize
	e.queue.Resize(blockSize)
	e.scratch = [][]float32{make([]float32, blockSize), make([]float32, blockSize)}
	e.notes.Clear()
	e.chain.setSampleRate(sampleRate)
	e.chain.env.Stop()
	e.chain.rateRamp.Activate(0, 0, 0)
	e.noteOn.Store(false)
	e.visRate.Store(0)
	e.visEnv.Store(0)
}

// ProcessMidiMsg queues a note event, or an all-notes-off control change,
// for the current block. Other events are ignored. It reports false if the
// event was not queued.
func (e *Engine) ProcessMidiMsg(ev midi.Event) bool {
	switch ev.Kind {
	case midi.KindNoteOn, midi.KindNoteOff:
	case midi.KindControlChange:
		if ev.Controller != ccAllNotesOff {
			return false
		}
	default:
		return false
	}
	if ev.Offset < 0 {
		ev.Offset = 0
	}
	return e.queue.Add(ev)
}

// QueueFull reports whether the MIDI queue has no room left for this block.
func (e *Engine) QueueFull() bool { return e.queue.Len() >= e.queue.Cap() }

// ProcessBlock renders nFrames into outputs, one slice per channel. The
// first two channels carry left and right; a single channel receives the
// mono mix; further channels are silenced. inputs is unused.
func (e *Engine) ProcessBlock(inputs, outputs [][]float32, nFrames int) {
	for _, out := range outputs {
		if len(out) < nFrames {
			nFrames = len(out)
		}
	}
	if nFrames <= 0 || len(outputs) == 0 {
		return
	}

	e.applyControls()
	tables := e.tables.Load()
	volume := e.volume.Load()
	c := &e.chain

	for s := 0; s < nFrames; s++ {
		e.drainMidi(s)
		l, r := c.tick(tables)
		l *= volume
		r *= volume
		if len(outputs) == 1 {
			outputs[0][s] = float32((l + r) * 0.5)
			continue
		}
		outputs[0][s] = float32(l)
		outputs[1][s] = float32(r)
	}
	for ch := 2; ch < len(outputs); ch++ {
		clear(outputs[ch][:nFrames])
	}
	e.queue.Flush(nFrames)

	e.visOffset.Store(c.rangeRamp.Value())
	e.visRate.Store(c.rateRamp.Value())
	e.visShape.Store(c.shapeRamp.Value())
	e.visMap.Store(c.shaperL.LastMapValue())
	e.visEnv.Store(c.env.Amplitude())
	e.noteOn.Store(!e.notes.Empty())
}

// applyControls moves setter values into the chain. Ramps restart from
// their current value so repeated changes never jump.
func (e *Engine) applyControls() {
	c := &e.chain
	c.gen.SetTint(noise.Tint(e.tint.Load()))

	d := e.dirty.Swap(0)
	if d == 0 {
		return
	}
	if d&dirtyMod != 0 {
		c.modRamp.Retarget(ModSmoothing, e.mod.Load())
	}
	if d&dirtyRate != 0 && !e.notes.Empty() {
		c.rateRamp.Retarget(RateSmoothing, e.rate.Load())
	}
	if d&dirtyRange != 0 {
		c.rangeRamp.Retarget(RangeSmoothing, e.rng.Load())
	}
	if d&dirtyShape != 0 {
		c.shapeRamp.Retarget(ShapeSmoothing, e.shape.Load())
	}
}

// drainMidi handles every queued event due at or before frame s.
func (e *Engine) drainMidi(s int) {
	for {
		ev, ok := e.queue.Peek()
		if !ok || ev.Offset > s {
			return
		}
		e.queue.Remove()
		switch {
		case ev.Kind == midi.KindNoteOn && ev.Velocity > 0:
			e.noteStart(ev)
		case ev.Kind == midi.KindControlChange:
			e.allNotesOff()
		default:
			e.noteEnd(ev.Note)
		}
	}
}

func (e *Engine) noteStart(ev midi.Event) {
	wasEmpty := e.notes.Empty()
	e.notes.Push(ev)
	if !wasEmpty {
		return
	}
	c := &e.chain
	c.env.NoteOn(float64(ev.Velocity)/127, e.attack.Load(), e.decay.Load(), e.sustain.Load(), e.release.Load())
	c.rateRamp.Retarget(RateSmoothing, e.rate.Load())
}

func (e *Engine) noteEnd(note uint8) {
	if !e.notes.Remove(note) || !e.notes.Empty() {
		return
	}
	e.startRelease()
}

func (e *Engine) allNotesOff() {
	if e.notes.Empty() {
		return
	}
	e.notes.Clear()
	e.startRelease()
}

func (e *Engine) startRelease() {
	c := &e.chain
	c.env.NoteOff()
	c.rateRamp.Retarget(c.env.Release(), 0)
}

// ProcessInterleaved renders len(dst)/2 stereo frames into dst, splitting
// the work into blocks no longer than the reset block size. Queued MIDI
// offsets count from the first frame of dst.
func (e *Engine) ProcessInterleaved(dst []float32) {
	if e.blockSize < 1 {
		clear(dst)
		return
	}
	frames := len(dst) / 2
	for done := 0; done < frames; {
		n := min(frames-done, e.blockSize)
		e.ProcessBlock(nil, e.scratch, n)
		for i := 0; i < n; i++ {
			dst[(done+i)*2] = e.scratch[0][i]
			dst[(done+i)*2+1] = e.scratch[1][i]
		}
		done += n
	}
}
