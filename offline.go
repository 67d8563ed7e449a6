package waveshaper

import (
	"github.com/pkg/errors"

	"github.com/cbegin/waveshaper-go/internal/sample"
	intseq "github.com/cbegin/waveshaper-go/internal/sequencer"
)

// maxRenderTail bounds how long Render keeps going after the last note
// when asked to render until silence.
const maxRenderTail = 10.0

// Render plays score through inst without an audio device and returns
// interleaved stereo samples. With seconds > 0 exactly that much is
// rendered; otherwise rendering stops once the last release has finished.
func Render(inst *Instrument, score *Score, sampleRate int, seconds float64) ([]float32, error) {
	if err := inst.Prepare(sampleRate, DefaultBlockSize); err != nil {
		return nil, err
	}
	if seconds > 0 {
		out := make([]float32, int(seconds*float64(sampleRate))*2)
		intseq.New(score, inst, sampleRate).Process(out)
		return out, nil
	}

	seq := intseq.New(score, inst, sampleRate)
	limit := seq.Duration() + int(maxRenderTail*float64(sampleRate))
	chunk := make([]float32, DefaultBlockSize*2)
	var out []float32
	for !seq.Finished() && len(out)/2 < limit {
		seq.Process(chunk)
		out = append(out, chunk...)
	}
	return out, nil
}

// WriteWAV saves interleaved stereo samples as PCM WAV.
func WriteWAV(path string, samples []float32, sampleRate, bitDepth int) error {
	if len(samples) == 0 {
		return errors.Wrapf(ErrNoAudioData, "write %s", path)
	}
	buf := sample.NewInterleaved(samples, 2, sampleRate)
	return errors.Wrapf(buf.SaveDepth(path, bitDepth), "write %s", path)
}
