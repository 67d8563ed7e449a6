// Package sample loads and saves the audio files the instrument scrubs
// through and renders to.
package sample

import (
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

var (
	ErrNoAudioData         = errors.New("no audio data")
	ErrUnsupportedChannels = errors.New("unsupported channel count")
	ErrUnsupportedFormat   = errors.New("unsupported wav encoding")
)

const wavFormatPCM = 1

// Buffer is decoded audio with one slice per channel, samples in [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// NewInterleaved splits interleaved samples into a Buffer.
func NewInterleaved(samples []float32, channels, sampleRate int) *Buffer {
	if channels < 1 {
		channels = 1
	}
	frames := len(samples) / channels
	b := &Buffer{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for c := range b.Channels {
		b.Channels[c] = make([]float32, frames)
		for i := 0; i < frames; i++ {
			b.Channels[c][i] = samples[i*channels+c]
		}
	}
	return b
}

func (b *Buffer) NumChannels() int {
	if b == nil {
		return 0
	}
	return len(b.Channels)
}

// Frames is the per-channel length.
func (b *Buffer) Frames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Seconds is the duration at the buffer's sample rate.
func (b *Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// ExpandPath resolves a leading ~ and environment variables.
func ExpandPath(path string) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", errors.Wrapf(err, "expand %q", path)
	}
	return os.ExpandEnv(p), nil
}

// Load decodes the PCM WAV file at path.
func Load(path string, logger *slog.Logger) (*Buffer, error) {
	p, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrap(err, "open sample")
	}
	defer f.Close()
	buf, err := Decode(f, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", p)
	}
	return buf, nil
}

// Decode reads a PCM WAV stream.
func Decode(r io.ReadSeeker, logger *slog.Logger) (*Buffer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.Wrap(ErrNoAudioData, "not a wav file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.Wrap(err, "seek to pcm")
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "format tag %d", dec.WavAudioFormat)
	}
	format := dec.Format()
	bitDepth := int(dec.SampleBitDepth())
	if format == nil || format.NumChannels < 1 {
		return nil, ErrUnsupportedChannels
	}
	if bitDepth == 0 {
		return nil, errors.Wrap(ErrUnsupportedFormat, "unknown bit depth")
	}
	bytesPerSample := (bitDepth-1)/8 + 1
	nsamples := int(dec.PCMLen()) / bytesPerSample
	nchannels := format.NumChannels
	nframes := nsamples / nchannels
	if nframes == 0 {
		return nil, ErrNoAudioData
	}
	logger.Debug("decoding wav",
		"sampleRate", format.SampleRate,
		"channels", nchannels,
		"bitDepth", bitDepth,
		"frames", nframes,
	)

	ib := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, nsamples),
		SourceBitDepth: bitDepth,
	}
	n, err := dec.PCMBuffer(ib)
	if err != nil {
		return nil, errors.Wrap(err, "decode pcm")
	}
	nframes = n / nchannels
	if nframes == 0 {
		return nil, ErrNoAudioData
	}

	scale := math.Pow(2, float64(bitDepth-1))
	// 8-bit PCM is unsigned with silence at 128.
	bias := 0.0
	if bitDepth == 8 {
		bias = 128
	}
	out := &Buffer{SampleRate: format.SampleRate, Channels: make([][]float32, nchannels)}
	for c := range out.Channels {
		ch := make([]float32, nframes)
		for i := range ch {
			ch[i] = float32((float64(ib.Data[i*nchannels+c]) - bias) / scale)
		}
		out.Channels[c] = ch
	}
	return out, nil
}

// Save writes b to path as 16-bit PCM WAV.
func (b *Buffer) Save(path string) error {
	return b.SaveDepth(path, 16)
}

// SaveDepth writes b to path as PCM WAV at bitDepth.
func (b *Buffer) SaveDepth(path string, bitDepth int) (err error) {
	p, err := ExpandPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return errors.Wrap(err, "create wav")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close wav")
		}
	}()
	return b.Encode(f, bitDepth)
}

// Encode writes b as PCM WAV at the given bit depth (16, 24 or 32).
func (b *Buffer) Encode(w io.WriteSeeker, bitDepth int) error {
	nch := b.NumChannels()
	if nch == 0 {
		return ErrUnsupportedChannels
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "bit depth %d", bitDepth)
	}
	frames := b.Frames()
	full := math.Pow(2, float64(bitDepth-1)) - 1
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: nch, SampleRate: b.SampleRate},
		Data:           make([]int, frames*nch),
		SourceBitDepth: bitDepth,
	}
	for c, ch := range b.Channels {
		for i := 0; i < frames; i++ {
			v := math.Max(-1, math.Min(1, float64(ch[i])))
			ib.Data[i*nch+c] = int(math.Round(v * full))
		}
	}

	enc := wav.NewEncoder(w, b.SampleRate, bitDepth, nch, wavFormatPCM)
	if err := enc.Write(ib); err != nil {
		return errors.Wrap(err, "encode wav")
	}
	return errors.Wrap(enc.Close(), "finish wav")
}
