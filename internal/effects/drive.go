package effects

import "math"

// Drive is tanh saturation normalised so full-scale input stays near full
// scale, followed by a one-pole tone filter and a wet/dry mix.
type Drive struct {
	gain         float32
	norm         float32
	toneAlpha    float32
	wet          float32
	toneL, toneR float32
}

// NewDrive creates a drive stage. A toneHz of 0 or above Nyquist disables
// the tone filter.
func NewDrive(sampleRate int, gain, toneHz, wet float32) *Drive {
	gain = max(gain, 1)
	d := &Drive{
		gain: gain,
		norm: float32(1 / math.Tanh(float64(gain))),
		wet:  clamp(wet, 0, 1),
	}
	if toneHz > 0 && toneHz < float32(sampleRate)/2 {
		rc := 1.0 / (2.0 * math.Pi * float64(toneHz))
		dt := 1.0 / float64(sampleRate)
		d.toneAlpha = float32(dt / (rc + dt))
	}
	return d
}

func (d *Drive) shape(x float32) float32 {
	return d.norm * float32(math.Tanh(float64(x*d.gain)))
}

func (d *Drive) Process(l, r float32) (float32, float32) {
	sl, sr := d.shape(l), d.shape(r)
	if d.toneAlpha > 0 {
		d.toneL += d.toneAlpha * (sl - d.toneL)
		d.toneR += d.toneAlpha * (sr - d.toneR)
		sl, sr = d.toneL, d.toneR
	}
	return l*(1-d.wet) + sl*d.wet, r*(1-d.wet) + sr*d.wet
}

func (d *Drive) Reset() {
	d.toneL, d.toneR = 0, 0
}
