package nearby

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/domain/catalog"
	"github.com/kailas-cloud/homedex/internal/domain/distance"
)

func newTestService(t *testing.T, names []string, entries []distance.Entry) *Service {
	t.Helper()
	cat, err := catalog.New(names)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	tbl, err := distance.New(&cat, entries)
	if err != nil {
		t.Fatalf("distance.New: %v", err)
	}
	return New(&cat, &tbl)
}

func xySvc(t *testing.T) *Service {
	t.Helper()
	return newTestService(t, []string{"Y", "X"}, []distance.Entry{
		{Location: "L", Property: "X", Meters: 4000},
		{Location: "L", Property: "Y", Meters: 6000},
	})
}

func names(ps []domain.NearbyProperty) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestNearby_StrictThreshold(t *testing.T) {
	svc := xySvc(t)
	ctx := context.Background()

	tests := []struct {
		radius float64
		want   []string
	}{
		{5.0, []string{"X"}},
		{6.0, []string{"X"}},
		{6.001, []string{"X", "Y"}},
		{3.9, []string{}},
		{4.0, []string{}},
	}
	for _, tc := range tests {
		got, err := svc.Nearby(ctx, "L", tc.radius)
		if err != nil {
			t.Fatalf("Nearby(L, %g): %v", tc.radius, err)
		}
		gotNames := names(got)
		if len(gotNames) != len(tc.want) {
			t.Errorf("Nearby(L, %g) = %v, want %v", tc.radius, gotNames, tc.want)
			continue
		}
		for i := range tc.want {
			if gotNames[i] != tc.want[i] {
				t.Errorf("Nearby(L, %g) = %v, want %v", tc.radius, gotNames, tc.want)
			}
		}
	}
}

func TestNearby_ReturnsMeters(t *testing.T) {
	got, err := xySvc(t).Nearby(context.Background(), "L", 5)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Meters != 4000 {
		t.Errorf("Meters = %f, want 4000", got[0].Meters)
	}
}

func TestNearby_WholeTableSortedAscending(t *testing.T) {
	svc := newTestService(t, []string{"P1", "P2", "P3", "P4", "P5"}, []distance.Entry{
		{Location: "Mall", Property: "P1", Meters: 9000},
		{Location: "Mall", Property: "P2", Meters: 1500},
		{Location: "Mall", Property: "P3", Meters: 1500},
		{Location: "Mall", Property: "P5", Meters: 300},
		{Location: "Airport", Property: "P4", Meters: 100},
	})

	got, err := svc.Nearby(context.Background(), "Mall", 1000)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"P5", "P2", "P3", "P1"} // P4 has no known distance to Mall
	gotNames := names(got)
	if len(gotNames) != len(want) {
		t.Fatalf("got %v, want %v", gotNames, want)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("got %v, want %v", gotNames, want)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Meters > got[i].Meters {
			t.Errorf("not ascending: %v", got)
		}
	}
}

func TestNearby_UnknownLocation(t *testing.T) {
	_, err := xySvc(t).Nearby(context.Background(), "Nowhere", 5)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNearby_InvalidRadius(t *testing.T) {
	svc := xySvc(t)
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := svc.Nearby(context.Background(), "L", r)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("radius %g: expected ErrInvalidArgument, got %v", r, err)
		}
	}
}

func TestLocations(t *testing.T) {
	svc := newTestService(t, []string{"A"}, []distance.Entry{
		{Location: "Zoo", Property: "A", Meters: 1},
		{Location: "Airport", Property: "A", Meters: 2},
	})
	locs := svc.Locations()
	if len(locs) != 2 || locs[0] != "Airport" || locs[1] != "Zoo" {
		t.Errorf("Locations() = %v", locs)
	}
}
