package noise

import (
	"math"
	"testing"
)

func TestGeneratorRangeForAllTints(t *testing.T) {
	for _, tint := range []Tint{TintWhite, TintPink, TintBrown} {
		t.Run(tint.String(), func(t *testing.T) {
			g := NewGenerator(tint, 7)
			var nonZero int
			for i := 0; i < 20000; i++ {
				v := g.Next()
				if v < -1 || v > 1 || math.IsNaN(v) {
					t.Fatalf("sample %d out of range: %v", i, v)
				}
				if v != 0 {
					nonZero++
				}
			}
			if nonZero == 0 {
				t.Fatal("expected non-zero noise")
			}
		})
	}
}

func TestGeneratorIsDeterministicPerSeed(t *testing.T) {
	a := NewGenerator(TintPink, 42)
	b := NewGenerator(TintPink, 42)
	for i := 0; i < 1000; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("sample %d differs for equal seeds", i)
		}
	}
}

func TestBrownIsSmootherThanWhite(t *testing.T) {
	diff := func(tint Tint) float64 {
		g := NewGenerator(tint, 3)
		prev := g.Next()
		var sum float64
		for i := 0; i < 10000; i++ {
			v := g.Next()
			sum += math.Abs(v - prev)
			prev = v
		}
		return sum
	}
	if w, b := diff(TintWhite), diff(TintBrown); b >= w {
		t.Fatalf("brown step energy %v should be below white %v", b, w)
	}
}

func TestSetTintRejectsUnknown(t *testing.T) {
	g := NewGenerator(TintPink, 1)
	g.SetTint(Tint(9))
	if g.Tint() != TintWhite {
		t.Fatalf("unknown tint should fall back to white, got %v", g.Tint())
	}
}

func TestRateTickerInterpolates(t *testing.T) {
	r := NewRateTicker(NewGenerator(TintWhite, 11))
	a, b := r.current, r.next
	if got := r.Tick(0.25); got != a {
		t.Fatalf("first output = %v, want %v", got, a)
	}
	got := r.Tick(0.25)
	want := a + 0.25*(b-a)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("interpolated output = %v, want %v", got, want)
	}
}

func TestRateTickerHoldsAtZeroRate(t *testing.T) {
	r := NewRateTicker(NewGenerator(TintWhite, 5))
	first := r.Tick(0)
	for i := 0; i < 100; i++ {
		if v := r.Tick(0); v != first {
			t.Fatalf("zero rate moved output to %v", v)
		}
	}
}

func TestRateTickerAdvancesWholeSteps(t *testing.T) {
	src := NewGenerator(TintWhite, 9)
	ref := NewGenerator(TintWhite, 9)
	r := NewRateTicker(src)
	ref.Next()
	ref.Next()
	r.Tick(3) // consumes three new source samples
	ref.Next()
	ref.Next()
	want := ref.Next()
	if r.next != want {
		t.Fatalf("next sample = %v, want %v", r.next, want)
	}
}
