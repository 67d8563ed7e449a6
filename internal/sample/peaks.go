package sample

// Peaks reduces b to buckets absolute peak values across all channels,
// for drawing a waveform overview. It returns nil for an empty buffer.
func Peaks(b *Buffer, buckets int) []float32 {
	frames := b.Frames()
	if frames == 0 || buckets <= 0 {
		return nil
	}
	if buckets > frames {
		buckets = frames
	}
	out := make([]float32, buckets)
	for i := range out {
		start := i * frames / buckets
		end := (i + 1) * frames / buckets
		var peak float32
		for _, ch := range b.Channels {
			for _, v := range ch[start:end] {
				if v < 0 {
					v = -v
				}
				if v > peak {
					peak = v
				}
			}
		}
		out[i] = peak
	}
	return out
}
