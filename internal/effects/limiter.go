package effects

import "math"

// Limiter is a stereo-linked peak limiter that keeps the output under a
// ceiling. Gain drops instantly on peaks and recovers over release.
type Limiter struct {
	ceiling float32
	release float32 // per-sample recovery coefficient
	gain    float32
}

func NewLimiter(sampleRate int, ceilingDB, releaseMs float32) *Limiter {
	releaseMs = max(releaseMs, 1)
	return &Limiter{
		ceiling: float32(math.Pow(10, float64(min(ceilingDB, 0))/20)),
		release: float32(1 - math.Exp(-1000/(float64(releaseMs)*float64(sampleRate)))),
		gain:    1,
	}
}

func (lim *Limiter) Process(l, r float32) (float32, float32) {
	peak := max(abs32(l), abs32(r))
	target := float32(1)
	if peak > lim.ceiling {
		target = lim.ceiling / peak
	}
	if target < lim.gain {
		lim.gain = target
	} else {
		lim.gain += lim.release * (target - lim.gain)
	}
	return l * lim.gain, r * lim.gain
}

// GainReduction is the current gain applied, 1 meaning no reduction.
func (lim *Limiter) GainReduction() float32 { return lim.gain }

func (lim *Limiter) Reset() { lim.gain = 1 }

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
