// Package audio streams a block-rendering source to the system output
// through ebiten's audio context.
package audio

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/pkg/errors"
)

// SampleSource renders interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has ended.
// When Finished returns true, the stream will return io.EOF on the next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

const bytesPerFrame = 8 // two float32 channels

// StreamReader adapts a SampleSource to the io.Reader ebiten pulls from.
// Reads are rounded down to whole frames.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
	frames int64
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i, v := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	r.frames += int64(frames)
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return frames * bytesPerFrame, io.EOF
	}
	return frames * bytesPerFrame, nil
}

// Rendered is the number of frames pulled from the source so far.
func (r *StreamReader) Rendered() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *StreamReader) Close() error { return nil }

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// ErrSampleRateMismatch is returned when a player asks for a different rate
// than the process-wide audio context was created with.
var ErrSampleRateMismatch = errors.New("audio: context already running at another sample rate")

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, errors.Wrapf(ErrSampleRateMismatch, "running at %d Hz, requested %d Hz", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

// NewPlayer opens a stream for source. A positive latency sets the driver
// buffer size; keyboard play wants it small.
func NewPlayer(sampleRate int, source SampleSource, latency time.Duration) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, errors.Wrap(err, "audio: open player")
	}
	if latency > 0 {
		pl.SetBufferSize(latency)
	}
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

// Rendered is the number of frames handed to the driver, which runs ahead
// of Position by the buffer size.
func (p *Player) Rendered() int64 { return p.reader.Rendered() }

func (p *Player) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return errors.Wrap(err, "audio: close player")
	}
	return p.reader.Close()
}
