package chi

import (
	"math"

	"github.com/kailas-cloud/homedex/internal/domain"
	domest "github.com/kailas-cloud/homedex/internal/domain/estimate"
	"github.com/kailas-cloud/homedex/internal/domain/listing"
	insightuc "github.com/kailas-cloud/homedex/internal/usecase/insight"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest      ErrorCode = "bad_request"
	CodeInvalidArgument ErrorCode = "invalid_argument"
	CodeNotFound        ErrorCode = "not_found"
	CodeInferenceFailed ErrorCode = "inference_failed"
	CodeNotImplemented  ErrorCode = "not_implemented"
	CodeInternalError   ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// NameList is a sorted list of names.
type NameList struct {
	Items []string `json:"items"`
}

// Recommendation is one ranked property.
type Recommendation struct {
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	ScoreRounded float64 `json:"score_rounded"`
}

// RecommendationsResponse lists properties similar to Property, best first.
type RecommendationsResponse struct {
	Property string           `json:"property"`
	Items    []Recommendation `json:"items"`
}

// NearbyProperty is one property within the search radius.
type NearbyProperty struct {
	Name       string  `json:"name"`
	DistanceM  float64 `json:"distance_m"`
	DistanceKm float64 `json:"distance_km"`
}

// NearbyResponse lists properties near Location, nearest first.
type NearbyResponse struct {
	Location string           `json:"location"`
	RadiusKm float64          `json:"radius_km"`
	Items    []NearbyProperty `json:"items"`
}

// LevelsResponse lists accepted categorical values per column.
type LevelsResponse struct {
	Levels map[string][]string `json:"levels"`
}

// EstimateResponse is an estimated price range.
type EstimateResponse struct {
	Price float64 `json:"price"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// SectorSummary holds the means of one sector. Unknown means are null.
type SectorSummary struct {
	Sector string              `json:"sector"`
	Count  int                 `json:"count"`
	Means  map[string]*float64 `json:"means"`
}

// SectorSummariesResponse lists sector summaries sorted by sector.
type SectorSummariesResponse struct {
	Items []SectorSummary `json:"items"`
}

// Description is a describe row. Statistics are null without values.
type Description struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Min   *float64 `json:"min"`
	P25   *float64 `json:"p25"`
	P50   *float64 `json:"p50"`
	P75   *float64 `json:"p75"`
	Max   *float64 `json:"max"`
}

// DescribeResponse describes the listings of one sector and property type.
type DescribeResponse struct {
	Sector       string                 `json:"sector"`
	PropertyType string                 `json:"property_type"`
	Metrics      map[string]Description `json:"metrics"`
}

// Bucket counts listings sharing a label.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DistributionResponse is a labelled count distribution.
type DistributionResponse struct {
	Sector string   `json:"sector"`
	Items  []Bucket `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recommendationsToResponse(property string, recs []domain.Recommendation) RecommendationsResponse {
	items := make([]Recommendation, len(recs))
	for i, r := range recs {
		items[i] = Recommendation{Name: r.Name, Score: r.Score, ScoreRounded: round(r.Score, 3)}
	}
	return RecommendationsResponse{Property: property, Items: items}
}

func nearbyToResponse(location string, radiusKm float64, props []domain.NearbyProperty) NearbyResponse {
	items := make([]NearbyProperty, len(props))
	for i, p := range props {
		items[i] = NearbyProperty{Name: p.Name, DistanceM: p.Meters, DistanceKm: round(p.Meters/1000, 3)}
	}
	return NearbyResponse{Location: location, RadiusKm: radiusKm, Items: items}
}

func estimateToResponse(r domest.Range) EstimateResponse {
	return EstimateResponse{Price: round(r.Price, 2), Low: round(r.Low, 2), High: round(r.High, 2)}
}

func sectorSummariesToResponse(sums []insightuc.SectorSummary) SectorSummariesResponse {
	items := make([]SectorSummary, len(sums))
	for i, s := range sums {
		means := make(map[string]*float64, len(s.Means))
		for m, v := range s.Means {
			means[string(m)] = finite(v)
		}
		items[i] = SectorSummary{Sector: s.Sector, Count: s.Count, Means: means}
	}
	return SectorSummariesResponse{Items: items}
}

func describeToResponse(
	sector, propertyType string, desc map[listing.Metric]insightuc.Description,
) DescribeResponse {
	out := make(map[string]Description, len(desc))
	for m, d := range desc {
		out[string(m)] = Description{
			Count: d.Count,
			Mean:  finite(d.Mean),
			Std:   finite(d.Std),
			Min:   finite(d.Min),
			P25:   finite(d.P25),
			P50:   finite(d.P50),
			P75:   finite(d.P75),
			Max:   finite(d.Max),
		}
	}
	return DescribeResponse{Sector: sector, PropertyType: propertyType, Metrics: out}
}

func bucketsToResponse(sector string, buckets []insightuc.Bucket) DistributionResponse {
	items := make([]Bucket, len(buckets))
	for i, b := range buckets {
		items[i] = Bucket{Label: b.Label, Count: b.Count}
	}
	return DistributionResponse{Sector: sector, Items: items}
}

// round rounds v half away from zero to the given number of decimals.
func round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// finite returns nil for NaN and infinities, which JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
