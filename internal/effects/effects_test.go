package effects

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestDelayProducesOutput(t *testing.T) {
	d := NewDelay(44100, 100, 0.5, 0, 0, 0.5)
	d.Process(1.0, 1.0)
	for i := 0; i < 4409; i++ { // ~100ms at 44100Hz
		d.Process(0, 0)
	}
	l, r := d.Process(0, 0)
	if math.Abs(float64(l)) < 0.01 || math.Abs(float64(r)) < 0.01 {
		t.Errorf("expected delayed output, got l=%f r=%f", l, r)
	}
}

func TestDelayPingPong(t *testing.T) {
	d := NewDelay(1000, 10, 0.5, 1, 0, 1)
	d.Process(1, 0)
	var l2, r2 float32
	for i := 1; i <= 20; i++ {
		l, r := d.Process(0, 0)
		if i == 20 {
			l2, r2 = l, r
		}
	}
	if r2 == 0 || l2 != 0 {
		t.Fatalf("second echo should cross to the right, got l=%v r=%v", l2, r2)
	}
}

func TestReverbProducesStereoTail(t *testing.T) {
	r := NewReverb(44100, 0.5, 0.7, 0.5, 0.5)
	r.Process(1.0, 1.0)
	var maxL float32
	var differs bool
	for i := 0; i < 10000; i++ {
		l, rr := r.Process(0, 0)
		maxL = max(maxL, l)
		if l != rr {
			differs = true
		}
	}
	if maxL < 0.001 {
		t.Error("expected reverb tail")
	}
	if !differs {
		t.Error("spread should decorrelate the channels")
	}
}

func TestDriveIsBounded(t *testing.T) {
	d := NewDrive(44100, 10, 0, 1)
	l, _ := d.Process(0.5, 0.5)
	if math.Abs(float64(l)) > 1.0 || math.Abs(float64(l)) < 0.9 {
		t.Errorf("driven half-scale input = %v, want close to full scale", l)
	}
	if l, _ := d.Process(1, 1); math.Abs(float64(l)-1) > 1e-5 {
		t.Errorf("full scale should map to full scale, got %v", l)
	}
}

func TestEQ5BandUnityGain(t *testing.T) {
	eq := NewEQ5Band(44100)
	for i := 0; i < 1000; i++ {
		eq.Process(0.5, 0.5)
	}
	l, r := eq.Process(0.5, 0.5)
	if math.Abs(float64(l)-0.5) > 1e-4 || math.Abs(float64(r)-0.5) > 1e-4 {
		t.Errorf("expected 0.5 with unity gains, got l=%f r=%f", l, r)
	}
	eq.SetGainDB(0, -6)
	if g := eq.Gain(0); math.Abs(float64(g)-0.501) > 0.01 {
		t.Errorf("gain = %v, want ~0.5", g)
	}
	if eq.Gain(9) != 1 {
		t.Error("out of range band should read unity")
	}
}

func TestLimiterHoldsCeiling(t *testing.T) {
	lim := NewLimiter(44100, -6, 50)
	ceiling := math.Pow(10, -6.0/20)
	for i := 0; i < 1000; i++ {
		l, r := lim.Process(1, -1)
		if math.Abs(float64(l)) > ceiling+1e-6 || math.Abs(float64(r)) > ceiling+1e-6 {
			t.Fatalf("frame %d exceeds ceiling: %v %v", i, l, r)
		}
	}
	for i := 0; i < 44100; i++ {
		lim.Process(0.1, 0.1)
	}
	if g := lim.GainReduction(); g < 0.99 {
		t.Errorf("gain should recover, got %v", g)
	}
}

func TestChainAppliesEffectsInOrder(t *testing.T) {
	c := NewChain(
		NewDrive(44100, 2, 0, 1),
		NewDelay(44100, 10, 0, 0, 0, 0.5),
	)
	l, r := c.Process(0.5, 0.5)
	if l == 0 || r == 0 {
		t.Error("chain should produce output")
	}
}

func TestBuildFromSpecs(t *testing.T) {
	c, err := Build(48000, []Spec{
		{Type: "EQ", Params: map[string]float64{"high": -3}},
		{Type: "delay"},
		{Type: "reverb", Params: map[string]float64{"wet": 0.1}},
		{Type: "drive"},
		{Type: " limiter "},
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 5 {
		t.Fatalf("len = %d, want 5", c.Len())
	}
	buf := []float32{0.25, -0.25, 0.5, -0.5}
	c.ProcessInterleaved(buf)

	_, err = Build(48000, []Spec{{Type: "flanger"}})
	if !errors.Is(err, ErrUnknownEffect) {
		t.Fatalf("err = %v, want ErrUnknownEffect", err)
	}
}

func TestNilChainIsPassThrough(t *testing.T) {
	var c *Chain
	buf := []float32{0.1, 0.2}
	c.ProcessInterleaved(buf)
	if buf[0] != 0.1 || buf[1] != 0.2 || c.Len() != 0 {
		t.Fatal("nil chain should leave audio untouched")
	}
}
