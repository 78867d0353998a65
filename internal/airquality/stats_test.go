package airquality

import (
	"math"
	"testing"
)

func TestAnalyzeTrendScenarios(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   Trend
	}{
		{"rising", []float64{1, 2, 3, 4, 5}, TrendRising},
		{"falling", []float64{5, 4, 3, 2, 1}, TrendFalling},
		{"stable", []float64{3, 3, 3, 3, 3}, TrendStable},
		{"single point", []float64{7}, TrendInsufficientData},
		{"empty", nil, TrendInsufficientData},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Analyze(seriesOf("2024-03-01", tc.values...))
			if got.Trend != tc.want {
				t.Fatalf("expected trend %q, got %q", tc.want, got.Trend)
			}
		})
	}
}

func TestAnalyzeSlopeJustBelowThreshold(t *testing.T) {
	// Slope 0.1 is inside the ±0.1763 dead band.
	got := Analyze(seriesOf("2024-03-01", 0, 0.1, 0.2, 0.3, 0.4))
	if got.Trend != TrendStable {
		t.Fatalf("expected stable trend, got %q", got.Trend)
	}
}

func TestAnalyzeExtremes(t *testing.T) {
	s := seriesOf("2024-03-01", 4, 9, 1, 9, 1)
	got := Analyze(s)

	if got.Min.Value != 1 || got.Min.Index != 2 {
		t.Fatalf("expected min 1 at index 2, got %v at %d", got.Min.Value, got.Min.Index)
	}
	// First occurrence wins for duplicated extremes.
	if got.Max.Value != 9 || got.Max.Index != 1 {
		t.Fatalf("expected max 9 at index 1, got %v at %d", got.Max.Value, got.Max.Index)
	}

	for _, r := range s {
		if r.Value < got.Min.Value || r.Value > got.Max.Value {
			t.Fatalf("value %v outside [min, max]", r.Value)
		}
	}
}

func TestAnalyzeMean(t *testing.T) {
	got := Analyze(seriesOf("2024-03-01", 2, 4, 6))
	if math.Abs(got.Mean-4) > 1e-12 {
		t.Fatalf("expected mean 4, got %v", got.Mean)
	}
}

func TestAnalyzeEmptySeries(t *testing.T) {
	got := Analyze(nil)
	if got.Trend != TrendInsufficientData {
		t.Fatalf("expected insufficient data trend, got %q", got.Trend)
	}
}
