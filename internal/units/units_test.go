package units

import (
	"math"
	"testing"
)

func TestConvertSameUnit(t *testing.T) {
	if got := Convert(42.5, "g", "g"); got != 42.5 {
		t.Errorf("expected 42.5, got %v", got)
	}
	// Same unit must be exact even for values that would pick up floating
	// error on a multiply/divide round trip.
	if got := Convert(0.1, "cup", "cup"); got != 0.1 {
		t.Errorf("expected 0.1, got %v", got)
	}
}

func TestConvertMass(t *testing.T) {
	if got := Convert(1000, "g", "kg"); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	if got := Convert(1, "lb", "g"); math.Abs(got-453.592) > 1e-9 {
		t.Errorf("expected 453.592, got %v", got)
	}
}

func TestConvertVolume(t *testing.T) {
	if got := Convert(1, "cup", "ml"); math.Abs(got-236.588) > 1e-9 {
		t.Errorf("expected 236.588, got %v", got)
	}
	// 3 tsp is a tablespoon, modulo the table's rounded ml factors.
	if got := Convert(3, "tsp", "tbsp"); math.Abs(got-1) > 1e-4 {
		t.Errorf("expected ~1 tbsp, got %v", got)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	got := Convert(Convert(5, "lb", "g"), "g", "lb")
	if math.Abs(got-5) > 1e-9 {
		t.Errorf("round trip drifted: got %v", got)
	}
}

func TestConvertCrossFamilyPassthrough(t *testing.T) {
	// No density available, the contract is to return the amount unchanged.
	if got := Convert(100, "g", "cup"); got != 100 {
		t.Errorf("expected passthrough 100, got %v", got)
	}
	if got := Convert(2, "piece", "g"); got != 2 {
		t.Errorf("expected passthrough 2, got %v", got)
	}
}

func TestNormalizeAndCase(t *testing.T) {
	if got := Convert(1, "KG", " g "); got != 1000 {
		t.Errorf("expected 1000, got %v", got)
	}
}

func TestCompatible(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{"g", "kg", true},
		{"ml", "cup", true},
		{"g", "cup", false},
		{"piece", "piece", true},
		{"piece", "g", false},
	}
	for _, c := range cases {
		if got := Compatible(c.from, c.to); got != c.want {
			t.Errorf("Compatible(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
