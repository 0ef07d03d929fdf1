package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
		eps  float64
	}{
		{"same point", Point{28.46, 77.03}, Point{28.46, 77.03}, 0, 1e-9},
		// One degree of latitude along a meridian.
		{"one degree north", Point{0, 0}, Point{1, 0}, EarthRadiusMeters * math.Pi / 180, 1e-6},
		{"antipodes", Point{0, 0}, Point{0, 180}, EarthRadiusMeters * math.Pi, 1e-3},
		// Two Gurgaon landmarks, about 6.9 km apart.
		{"gurgaon to airport", Point{28.4951, 77.0890}, Point{28.5562, 77.1000}, 6878, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.DistanceMeters(tc.b)
			if math.Abs(got-tc.want) > tc.eps {
				t.Errorf("distance = %f, want %f ± %f", got, tc.want, tc.eps)
			}
			if back := tc.b.DistanceMeters(tc.a); math.Abs(back-got) > 1e-9 {
				t.Errorf("distance is not symmetric: %f vs %f", got, back)
			}
		})
	}
}

func TestPoint_Validate(t *testing.T) {
	valid := []Point{{0, 0}, {90, 180}, {-90, -180}, {28.4, 77.0}}
	for _, p := range valid {
		if err := p.Validate(); err != nil {
			t.Errorf("%v: unexpected error %v", p, err)
		}
	}
	invalid := []Point{{91, 0}, {0, 181}, {-90.1, 0}, {math.NaN(), 0}}
	for _, p := range invalid {
		if err := p.Validate(); err == nil {
			t.Errorf("%v: expected error", p)
		}
	}
}
