package listing

import (
	"math"
	"testing"
)

func TestValue(t *testing.T) {
	l := Listing{Price: 1.2, PricePerSqft: 8000, BuiltUpArea: 1500, LuxuryScore: 49, Latitude: 28.4, Longitude: 77.0}

	tests := []struct {
		m    Metric
		want float64
	}{
		{MetricPrice, 1.2},
		{MetricPricePerSqft, 8000},
		{MetricBuiltUpArea, 1500},
		{MetricLuxuryScore, 49},
		{MetricLatitude, 28.4},
		{MetricLongitude, 77.0},
	}
	for _, tc := range tests {
		if got := l.Value(tc.m); got != tc.want {
			t.Errorf("Value(%s) = %f, want %f", tc.m, got, tc.want)
		}
	}
	if !math.IsNaN(l.Value("nope")) {
		t.Error("unknown metric should be NaN")
	}
}
