package aqi

import (
	"testing"
)

func TestClassify_Thresholds(t *testing.T) {
	tests := []struct {
		aqi  int
		want Category
	}{
		{0, Good},
		{50, Good},
		{51, Moderate},
		{100, Moderate},
		{101, SensitiveUSG},
		{150, SensitiveUSG},
		{151, Unhealthy},
		{200, Unhealthy},
		{201, VeryUnhealthy},
		{300, VeryUnhealthy},
		{301, Hazardous},
		{500, Hazardous},
	}

	for _, tt := range tests {
		got := Classify(tt.aqi)
		if got != tt.want {
			t.Errorf("Classify(%d) = %q, want %q", tt.aqi, got.Label, tt.want.Label)
		}
	}
}

func TestClassify_TotalAndMonotonic(t *testing.T) {
	known := make(map[Category]int, len(Bands))
	for i, b := range Bands {
		known[b.Category] = i
	}

	prev := 0
	for v := 0; v <= 600; v++ {
		cat := Classify(v)
		idx, ok := known[cat]
		if !ok {
			t.Fatalf("Classify(%d) returned unknown category %+v", v, cat)
		}
		if idx < prev {
			t.Fatalf("Classify(%d): band index %d below previous %d (non-monotonic)", v, idx, prev)
		}
		prev = idx
	}
}

func TestClassify_NegativeIsGood(t *testing.T) {
	if got := Classify(-5); got != Good {
		t.Errorf("Classify(-5) = %q, want Good", got.Label)
	}
}

func TestBands_Ordering(t *testing.T) {
	if len(Bands) != 6 {
		t.Fatalf("len(Bands) = %d, want 6", len(Bands))
	}
	if Bands[0].Label != "Good" || Bands[5].Label != "Hazardous" {
		t.Errorf("Bands out of order: first=%q last=%q", Bands[0].Label, Bands[5].Label)
	}
	for _, b := range Bands {
		if b.Color == "" || b.Range == "" || b.Description == "" {
			t.Errorf("band %q missing display fields", b.Label)
		}
	}
}
