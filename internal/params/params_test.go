package params

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultsMatchTable(t *testing.T) {
	s := NewStore()
	want := map[ID]float64{
		Volume:        0,
		NoiseTint:     1,
		NoiseAmpMod:   0.5,
		NoiseRate:     0.0005,
		NoiseRange:    0,
		NoiseShape:    0.1,
		NoiseSnapshot: 0,
		EnvAttack:     0.005,
		EnvDecay:      0.005,
		EnvSustain:    75,
		EnvRelease:    0.25,
	}
	for id, v := range want {
		if got := s.Get(id); got != v {
			t.Errorf("%v default = %v, want %v", id, got, v)
		}
	}
	if len(s.Changed()) != 0 {
		t.Fatalf("fresh store reports changes: %v", s.Changed())
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	for _, spec := range All() {
		t.Run(spec.Name, func(t *testing.T) {
			for _, n := range []float64{0, 0.25, 0.5, 1} {
				plain := spec.Denormalize(n)
				back := spec.Normalize(plain)
				if spec.Names != nil {
					continue
				}
				if math.Abs(back-n) > 1e-9 {
					t.Fatalf("norm %v -> %v -> %v", n, plain, back)
				}
			}
		})
	}
}

func TestAmpModUsesPowerCurve(t *testing.T) {
	spec := NoiseAmpMod.Spec()
	if got := spec.Denormalize(0.5); math.Abs(got-30) > 1e-9 {
		t.Fatalf("half-way amp mod = %v Hz, want 30", got)
	}
}

func TestDisplayText(t *testing.T) {
	tests := []struct {
		id    ID
		plain float64
		want  string
	}{
		{Volume, -48, "-inf"},
		{Volume, -6, "-6.0 dB"},
		{NoiseTint, 0, "White"},
		{NoiseTint, 2, "Red"},
		{NoiseTint, 1.4, "Pink"},
		{EnvSustain, 75, "75%"},
		{EnvRelease, 0.25, "0.250 s"},
		{NoiseRange, -0.5, "-0.50"},
	}
	for _, tt := range tests {
		if got := tt.id.Spec().DisplayText(tt.plain); got != tt.want {
			t.Errorf("%v.DisplayText(%v) = %q, want %q", tt.id, tt.plain, got, tt.want)
		}
	}
}

func TestStoreClampsAndTracksChanges(t *testing.T) {
	s := NewStore()
	if got := s.Set(NoiseShape, 2); got != 0.35 {
		t.Fatalf("Set clamped to %v, want 0.35", got)
	}
	if got := s.Set(NoiseTint, 7); got != 2 {
		t.Fatalf("enum clamped to %v, want 2", got)
	}
	changed := s.Changed()
	if len(changed) != 2 || changed[0] != NoiseTint || changed[1] != NoiseShape {
		t.Fatalf("changed = %v", changed)
	}
	s.Reset()
	if s.Get(NoiseShape) != 0.1 {
		t.Fatal("reset should restore defaults")
	}
	if s.Set(Count, 1) != 0 || s.Get(-1) != 0 {
		t.Fatal("invalid ids should be ignored")
	}
}

func TestByKey(t *testing.T) {
	for _, key := range []string{"noise_rate", "Noise Rate", " NOISE_RATE "} {
		id, err := ByKey(key)
		if err != nil || id != NoiseRate {
			t.Fatalf("ByKey(%q) = %v, %v", key, id, err)
		}
	}
	if _, err := ByKey("cutoff"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("err = %v, want ErrUnknownParam", err)
	}
}

func TestCCMap(t *testing.T) {
	m := NewCCMap()
	if m.Controller(NoiseRange) != Unmapped {
		t.Fatal("fresh map should be unmapped")
	}
	m.Bind(NoiseRange, 20)
	m.Bind(NoiseShape, 20)
	m.Bind(Volume, 7)
	m.Bind(EnvAttack, 200)

	got := m.Targets(make([]ID, 0, 4), 20)
	if len(got) != 2 || got[0] != NoiseRange || got[1] != NoiseShape {
		t.Fatalf("targets(20) = %v", got)
	}
	if m.Controller(EnvAttack) != Unmapped {
		t.Fatal("out-of-range controller should not bind")
	}

	snapshot := m.Bindings()
	m.Unbind(Volume)
	if m.Controller(Volume) != Unmapped {
		t.Fatal("unbind failed")
	}
	if snapshot[Volume] != 7 {
		t.Fatal("Bindings should return a copy")
	}
}
