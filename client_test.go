package homedex

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/homedex/internal/artifact"
	"github.com/kailas-cloud/homedex/internal/domain/distance"
)

const testModel = `
intercept: 0.5
numeric:
  bedRoom: 0.1
  built_up_area: 0.001
categorical:
  sector:
    sector 45: 0.2
  property_type:
    flat: 0
    house: 0.3
`

// --- Fixtures ---

func writeBundle(t *testing.T, withModel bool) string {
	t.Helper()
	matrix := []float64{
		1, 0.9, 0.1,
		0.9, 1, 0.5,
		0.1, 0.5, 1,
	}
	src := &artifact.Source{
		Names:    []string{"A", "B", "C"},
		Matrices: [3][]float64{matrix, matrix, matrix},
		Distances: []distance.Entry{
			{Location: "Metro", Property: "A", Meters: 6000},
			{Location: "Metro", Property: "B", Meters: 4000},
			{Location: "Airport", Property: "C", Meters: 1000},
		},
	}
	dir := t.TempDir()
	if err := artifact.Write(dir, src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if withModel {
		if err := os.WriteFile(filepath.Join(dir, DefaultModelFile), []byte(testModel), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func houseFeatures() *Features {
	return &Features{
		PropertyType: "house", Sector: "sector 45", Bedrooms: 3, Bathrooms: 2,
		Balcony: "3+", AgePossession: "New Property", BuiltUpArea: 1000,
		FurnishingType: "unfurnished", LuxuryCategory: "Low", FloorCategory: "Mid Floor",
	}
}

type stubPipeline struct{ err error }

func (s *stubPipeline) Predict(_ context.Context, _ *Features) (float64, error) {
	return math.Ln2, s.err
}

func (s *stubPipeline) Levels(_ context.Context) (Levels, error) { return Levels{}, nil }

// --- Tests ---

func TestOpen_Recommend(t *testing.T) {
	c, err := Open(context.Background(), writeBundle(t, false))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	recs, err := c.Recommend(context.Background(), "A", 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 2 || recs[0].Name != "B" || recs[1].Name != "C" {
		t.Fatalf("unexpected recommendations %+v", recs)
	}
	// Default weights sum to 2.3 over identical matrices.
	if math.Abs(recs[0].Score-0.9*2.3) > 1e-9 {
		t.Errorf("unexpected score %f", recs[0].Score)
	}

	if _, err := c.Recommend(context.Background(), "Z", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpen_Weights(t *testing.T) {
	c, err := Open(context.Background(), writeBundle(t, false), WithWeights(Weights{Text: 1}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	recs, err := c.Recommend(context.Background(), "C", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Name != "B" || math.Abs(recs[0].Score-0.5) > 1e-9 {
		t.Errorf("unexpected recommendations %+v", recs)
	}
}

func TestOpen_Nearby(t *testing.T) {
	c, err := Open(context.Background(), writeBundle(t, false))
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Nearby(context.Background(), "Metro", 6)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	// Strictly closer than the radius.
	if len(got) != 1 || got[0].Name != "B" {
		t.Errorf("unexpected nearby %+v", got)
	}
	if strings.Join(c.Locations(), ",") != "Airport,Metro" {
		t.Errorf("unexpected locations %v", c.Locations())
	}
	if strings.Join(c.Properties(), ",") != "A,B,C" {
		t.Errorf("unexpected properties %v", c.Properties())
	}
}

func TestOpen_BundledModel(t *testing.T) {
	c, err := Open(context.Background(), writeBundle(t, true))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	r, err := c.Estimate(context.Background(), houseFeatures())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	want := math.Expm1(0.5 + 0.3 + 1.0 + 0.2 + 0.3)
	if math.Abs(r.Price-want) > 1e-9 || math.Abs(r.High-r.Price-0.22) > 1e-9 {
		t.Errorf("unexpected range %+v", r)
	}
	if got := c.Levels()["property_type"]; strings.Join(got, ",") != "flat,house" {
		t.Errorf("unexpected levels %v", c.Levels())
	}

	f := houseFeatures()
	f.Sector = "sector 99"
	var infErr *InferenceError
	if _, err := c.Estimate(context.Background(), f); !errors.As(err, &infErr) {
		t.Errorf("expected InferenceError, got %v", err)
	}
}

func TestOpen_WithoutModel(t *testing.T) {
	c, err := Open(context.Background(), writeBundle(t, false))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Estimate(context.Background(), houseFeatures()); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
	if len(c.Levels()) != 0 {
		t.Errorf("expected no levels, got %v", c.Levels())
	}

	c, err = Open(context.Background(), writeBundle(t, true), WithoutPipeline())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Estimate(context.Background(), houseFeatures()); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("WithoutPipeline: expected ErrNotImplemented, got %v", err)
	}
}

func TestOpen_CustomPipeline(t *testing.T) {
	c, err := Open(context.Background(), writeBundle(t, true),
		WithPipeline(&stubPipeline{}), WithBand(0.5))
	if err != nil {
		t.Fatal(err)
	}
	r, err := c.Estimate(context.Background(), houseFeatures())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if math.Abs(r.Price-1) > 1e-9 || math.Abs(r.Low-0.5) > 1e-9 || math.Abs(r.High-1.5) > 1e-9 {
		t.Errorf("unexpected range %+v", r)
	}

	c, err = Open(context.Background(), writeBundle(t, false),
		WithPipeline(&stubPipeline{err: errors.New("boom")}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Estimate(context.Background(), houseFeatures()); !errors.Is(err, ErrInference) {
		t.Errorf("expected ErrInference, got %v", err)
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open(context.Background(), t.TempDir()); !errors.Is(err, ErrInvalidArtifact) {
		t.Errorf("empty dir: expected ErrInvalidArtifact, got %v", err)
	}
	dir := writeBundle(t, false)
	if _, err := Open(context.Background(), dir, WithLinearModel(filepath.Join(dir, "missing.yaml"))); err == nil {
		t.Error("explicit missing model must fail")
	}
	if _, err := Open(context.Background(), dir, WithWeights(Weights{Text: -1})); err == nil {
		t.Error("negative weights must fail")
	}
}
