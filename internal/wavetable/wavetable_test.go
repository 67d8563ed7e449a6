package wavetable

import (
	"math"
	"testing"
)

func TestTableInterpolatesAndWraps(t *testing.T) {
	tbl := NewTable([]float32{0, 1, 0, -1})
	for _, tc := range []struct {
		pos  float64
		want float64
	}{
		{0, 0},
		{0.25, 1},
		{0.125, 0.5},
		{0.875, -0.5}, // between last sample and wrapped first
		{1.25, 1},
		{-0.75, 1},
	} {
		if got := tbl.At(tc.pos); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("At(%v) = %v, want %v", tc.pos, got, tc.want)
		}
	}
}

func TestEmptyTableIsSilent(t *testing.T) {
	var nilTable *Table
	for _, tbl := range []*Table{nilTable, {}, NewTable(nil)} {
		if tbl.Len() != 0 {
			t.Fatalf("len = %d", tbl.Len())
		}
		if v := tbl.At(0.3); v != 0 {
			t.Fatalf("empty table read %v", v)
		}
	}
}

func TestTableCopiesInput(t *testing.T) {
	src := []float32{0.5, 0.5}
	tbl := NewTable(src)
	src[0] = 9
	if tbl.At(0) != 0.5 {
		t.Fatal("table must not alias caller data")
	}
}

func TestPairDuplicatesMono(t *testing.T) {
	p := NewPair([][]float32{{1, 2, 3}})
	if p.Left != p.Right {
		t.Fatal("mono source should be shared by both sides")
	}
	if p.Size() != 3 {
		t.Fatalf("size = %d, want 3", p.Size())
	}
}

func TestPairTruncatesToShortestChannel(t *testing.T) {
	p := NewPair([][]float32{{1, 2, 3, 4}, {1, 2}})
	if p.Left.Len() != 2 || p.Right.Len() != 2 {
		t.Fatalf("sizes = %d/%d, want 2/2", p.Left.Len(), p.Right.Len())
	}
	var empty *Pair
	if empty.Size() != 0 {
		t.Fatal("nil pair should report size 0")
	}
}

func TestShaperMapsCenterAndRecordsPosition(t *testing.T) {
	tbl := NewTable([]float32{-1, -0.5, 0, 0.5})
	s := NewShaper(1, 1, true)
	if got := s.Process(tbl, 0); got != 0 {
		t.Fatalf("center lookup = %v, want 0", got)
	}
	if s.LastMapValue() != 0.5 {
		t.Fatalf("last map = %v, want 0.5", s.LastMapValue())
	}
	s.Process(tbl, 1.5) // 1.25 wraps to 0.25
	if math.Abs(s.LastMapValue()-0.25) > 1e-12 {
		t.Fatalf("wrapped map = %v, want 0.25", s.LastMapValue())
	}
}

func TestShaperClampsWithoutWrap(t *testing.T) {
	s := NewShaper(2, 1, false)
	s.Process(NewTable([]float32{1}), 4)
	if s.LastMapValue() != 1 {
		t.Fatalf("clamped map = %v, want 1", s.LastMapValue())
	}
	if got := s.Process(NewTable([]float32{1}), -4); got != 2 {
		t.Fatalf("output amplitude not applied: %v", got)
	}
}

func TestShaperOnEmptyTable(t *testing.T) {
	s := NewShaper(1, 1, true)
	for _, in := range []float64{-1, 0, 0.3, 1, 7} {
		if v := s.Process(nil, in); v != 0 {
			t.Fatalf("empty table produced %v", v)
		}
	}
}
