package pan

import (
	"math"
	"testing"
)

func TestConstantPowerGains(t *testing.T) {
	tests := []struct {
		name        string
		pos         float64
		left, right float64
	}{
		{"hard left", -1, 1, 0},
		{"centre", 0, math.Sqrt2 / 2, math.Sqrt2 / 2},
		{"hard right", 1, 0, 1},
		{"clamped right", 3, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, r := Gains(tt.pos, ConstantPower)
			if math.Abs(l-tt.left) > 1e-12 || math.Abs(r-tt.right) > 1e-12 {
				t.Fatalf("Gains(%v) = %v,%v want %v,%v", tt.pos, l, r, tt.left, tt.right)
			}
			if p := l*l + r*r; math.Abs(p-1) > 1e-12 {
				t.Fatalf("power = %v, want 1", p)
			}
		})
	}
}

func TestLinearCentreIsHalf(t *testing.T) {
	l, r := Gains(0, Linear)
	if l != 0.5 || r != 0.5 {
		t.Fatalf("linear centre = %v,%v", l, r)
	}
}

func TestHardPannedPairKeepsSeparation(t *testing.T) {
	pl, pr := New(-1, ConstantPower), New(1, ConstantPower)
	l1, r1 := pl.Process(0.25)
	l2, r2 := pr.Process(-0.5)
	l, r := Sum(l1, r1, l2, r2)
	if math.Abs(l-0.25) > 1e-12 || math.Abs(r+0.5) > 1e-12 {
		t.Fatalf("summed frame = %v,%v want 0.25,-0.5", l, r)
	}
}
