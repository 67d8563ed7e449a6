package sequencer

import "testing"

func BenchmarkSequencerProcess(b *testing.B) {
	score := &Score{}
	for i := 0; i < 64; i++ {
		score.Notes = append(score.Notes, Note{Key: uint8(48 + i%24), Velocity: 100, Start: float64(i) * 0.01, Length: 0.02})
	}
	buf := make([]float32, 2048*2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inst := &recordingInstrument{block: 512}
		seq := New(score, inst, 48000)
		seq.Process(buf)
	}
}
