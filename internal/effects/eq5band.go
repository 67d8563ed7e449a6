package effects

import (
	"math"
	"sync/atomic"
)

// EQ5Band is a 5-band tone control split at 200Hz, 800Hz, 2.5kHz and 8kHz.
// Gains are stored as float32 bits so a control goroutine may change them
// while the audio goroutine is processing.
type EQ5Band struct {
	gains  [5]atomic.Uint32
	alphas [4]float32
	lpL    [4]float32
	lpR    [4]float32
}

var (
	crossovers = [4]float64{200, 800, 2500, 8000}
	bandKeys   = [5]string{"low", "low_mid", "mid", "high_mid", "high"}
)

func NewEQ5Band(sampleRate int) *EQ5Band {
	eq := &EQ5Band{}
	dt := 1.0 / float64(sampleRate)
	for i, freq := range crossovers {
		rc := 1.0 / (2.0 * math.Pi * freq)
		eq.alphas[i] = float32(dt / (rc + dt))
	}
	for i := range eq.gains {
		eq.gains[i].Store(math.Float32bits(1.0))
	}
	return eq
}

// SetGain sets a linear band gain; out-of-range bands are ignored.
func (eq *EQ5Band) SetGain(band int, gain float32) {
	if band >= 0 && band < len(eq.gains) {
		eq.gains[band].Store(math.Float32bits(max(gain, 0)))
	}
}

// SetGainDB sets a band gain in decibels.
func (eq *EQ5Band) SetGainDB(band int, db float32) {
	eq.SetGain(band, float32(math.Pow(10, float64(db)/20)))
}

func (eq *EQ5Band) Gain(band int) float32 {
	if band >= 0 && band < len(eq.gains) {
		return math.Float32frombits(eq.gains[band].Load())
	}
	return 1.0
}

func (eq *EQ5Band) Process(l, r float32) (float32, float32) {
	var outL, outR float32
	remL, remR := l, r
	for i := range eq.alphas {
		eq.lpL[i] += eq.alphas[i] * (remL - eq.lpL[i])
		eq.lpR[i] += eq.alphas[i] * (remR - eq.lpR[i])
		g := eq.Gain(i)
		outL += eq.lpL[i] * g
		outR += eq.lpR[i] * g
		remL -= eq.lpL[i]
		remR -= eq.lpR[i]
	}
	g := eq.Gain(4)
	return outL + remL*g, outR + remR*g
}

func (eq *EQ5Band) Reset() {
	eq.lpL = [4]float32{}
	eq.lpR = [4]float32{}
}
