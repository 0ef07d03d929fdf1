package insight

import (
	"cmp"
	"context"
	"math"
	"slices"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/domain/listing"
)

// Overall selects every listing in BedroomDistribution.
const Overall = "overall"

// SummaryMetrics are averaged per sector.
var SummaryMetrics = []listing.Metric{
	listing.MetricPrice, listing.MetricPricePerSqft, listing.MetricBuiltUpArea,
	listing.MetricLatitude, listing.MetricLongitude,
}

// DescribeMetrics are described per sector and property type.
var DescribeMetrics = []listing.Metric{
	listing.MetricPrice, listing.MetricPricePerSqft, listing.MetricBuiltUpArea, listing.MetricLuxuryScore,
}

// SectorSummary holds per-sector means. A metric with no known value is NaN.
type SectorSummary struct {
	Sector string
	Count  int
	Means  map[listing.Metric]float64
}

// Description is the count, moments and quartiles of one metric.
// NaN values are excluded; with no values every statistic is NaN.
type Description struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// Bucket is the number of listings sharing a label.
type Bucket struct {
	Label string
	Count int
}

// Service computes aggregates over the listings dataset.
type Service struct {
	listings []listing.Listing
	sectors  []string
}

// New creates an insight service. A nil listings slice disables every
// operation with ErrNotImplemented.
func New(listings []listing.Listing) *Service {
	if listings == nil {
		return &Service{}
	}
	seen := make(map[string]struct{})
	var sectors []string
	for i := range listings {
		s := listings[i].Sector
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			sectors = append(sectors, s)
		}
	}
	slices.Sort(sectors)
	return &Service{listings: listings, sectors: sectors}
}

// Available reports whether a listings dataset was loaded.
func (s *Service) Available() bool { return s.listings != nil }

// SectorSummaries returns per-sector means sorted by sector.
func (s *Service) SectorSummaries(_ context.Context) ([]SectorSummary, error) {
	if !s.Available() {
		return nil, domain.ErrNotImplemented
	}

	groups := make(map[string][]*listing.Listing, len(s.sectors))
	for i := range s.listings {
		l := &s.listings[i]
		groups[l.Sector] = append(groups[l.Sector], l)
	}

	out := make([]SectorSummary, 0, len(s.sectors))
	for _, sector := range s.sectors {
		group := groups[sector]
		means := make(map[listing.Metric]float64, len(SummaryMetrics))
		for _, m := range SummaryMetrics {
			vals := known(group, m)
			if len(vals) == 0 {
				means[m] = math.NaN()
				continue
			}
			means[m] = stat.Mean(vals, nil)
		}
		out = append(out, SectorSummary{Sector: sector, Count: len(group), Means: means})
	}
	return out, nil
}

// Describe summarizes listings of propertyType in sector.
func (s *Service) Describe(_ context.Context, sector, propertyType string) (map[listing.Metric]Description, error) {
	if !s.Available() {
		return nil, domain.ErrNotImplemented
	}
	if !s.hasSector(sector) {
		return nil, domain.NewNotFound("sector", sector)
	}

	var group []*listing.Listing
	for i := range s.listings {
		l := &s.listings[i]
		if l.Sector == sector && l.PropertyType == propertyType {
			group = append(group, l)
		}
	}
	if len(group) == 0 {
		return nil, domain.NewNotFound("listings", sector+"/"+propertyType)
	}

	out := make(map[listing.Metric]Description, len(DescribeMetrics))
	for _, m := range DescribeMetrics {
		out[m] = describe(known(group, m))
	}
	return out, nil
}

// BedroomDistribution counts listings by bedroom count in sector, or in
// every sector when sector is Overall. Buckets are ordered by bedrooms.
func (s *Service) BedroomDistribution(_ context.Context, sector string) ([]Bucket, error) {
	if !s.Available() {
		return nil, domain.ErrNotImplemented
	}
	if sector != Overall && !s.hasSector(sector) {
		return nil, domain.NewNotFound("sector", sector)
	}

	counts := make(map[float64]int)
	for i := range s.listings {
		l := &s.listings[i]
		if sector != Overall && l.Sector != sector {
			continue
		}
		if math.IsNaN(l.Bedrooms) {
			continue
		}
		counts[l.Bedrooms]++
	}

	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	out := make([]Bucket, len(keys))
	for i, k := range keys {
		out[i] = Bucket{Label: formatCount(k), Count: counts[k]}
	}
	return out, nil
}

// FurnishingDistribution counts listings by furnishing type, most common first.
func (s *Service) FurnishingDistribution(_ context.Context) ([]Bucket, error) {
	if !s.Available() {
		return nil, domain.ErrNotImplemented
	}
	counts := make(map[string]int)
	for i := range s.listings {
		if f := s.listings[i].FurnishingType; f != "" {
			counts[f]++
		}
	}
	out := make([]Bucket, 0, len(counts))
	for label, n := range counts {
		out = append(out, Bucket{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out, nil
}

func (s *Service) hasSector(sector string) bool {
	_, ok := slices.BinarySearch(s.sectors, sector)
	return ok
}

func known(group []*listing.Listing, m listing.Metric) []float64 {
	vals := make([]float64, 0, len(group))
	for _, l := range group {
		if v := l.Value(m); !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	return vals
}

func describe(vals []float64) Description {
	nan := math.NaN()
	d := Description{Count: len(vals), Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}
	if len(vals) == 0 {
		return d
	}

	sorted := slices.Clone(vals)
	sort.Float64s(sorted)

	d.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	d.Min = floats.Min(sorted)
	d.Max = floats.Max(sorted)
	d.P25 = quantile(sorted, 0.25)
	d.P50 = quantile(sorted, 0.5)
	d.P75 = quantile(sorted, 0.75)
	return d
}

// quantile interpolates linearly between closest ranks at position
// p*(n-1) of sorted.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func formatCount(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
