package sample

import (
	"math"
	"testing"
)

func TestAddGrowsChannel(t *testing.T) {
	s := New(48000, 2)

	if s.Len(0) != 0 {
		t.Fatalf("expected empty channel; got %d samples", s.Len(0))
	}

	s.Add(0, 100, 0.5)
	if s.Len(0) != 101 {
		t.Fatalf("expected channel to grow to 101 samples; got %d", s.Len(0))
	}
	if s.Len(1) != 0 {
		t.Fatalf("expected the other channel to stay empty; got %d", s.Len(1))
	}

	// Additive accumulation at the same offset.
	s.Add(0, 100, 0.25)
	if got := s.Data(0)[100]; got != 0.75 {
		t.Fatalf("expected accumulated value 0.75; got %f", got)
	}

	// Out-of-range writes are ignored.
	s.Add(2, 0, 1)
	s.Add(-1, 0, 1)
	s.Add(0, -1, 1)
}

func TestPeakAndScale(t *testing.T) {
	s := New(48000, 2)
	s.Add(0, 0, 0.5)
	s.Add(1, 3, -2.0)

	if got := s.Peak(); math.Abs(float64(got)-2.0) > 1e-6 {
		t.Fatalf("expected peak 2.0; got %f", got)
	}

	s.Scale(0.5)
	if got := s.Peak(); math.Abs(float64(got)-1.0) > 1e-6 {
		t.Fatalf("expected scaled peak 1.0; got %f", got)
	}
	if got := s.Data(0)[0]; got != 0.25 {
		t.Fatalf("expected scaled sample 0.25; got %f", got)
	}
}
