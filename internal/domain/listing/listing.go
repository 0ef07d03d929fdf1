package listing

import "math"

// Listing is one row of the analytics dataset. Missing numeric values are NaN.
type Listing struct {
	PropertyType   string
	Society        string
	Sector         string
	Price          float64
	PricePerSqft   float64
	BuiltUpArea    float64
	Bedrooms       float64
	Bathrooms      float64
	Balconies      string
	LuxuryScore    float64
	FurnishingType string
	AgePossession  string
	Latitude       float64
	Longitude      float64
}

// Metric names a numeric column of a listing.
type Metric string

// Numeric columns exposed by the insight endpoints.
const (
	MetricPrice        Metric = "price"
	MetricPricePerSqft Metric = "price_per_sqft"
	MetricBuiltUpArea  Metric = "built_up_area"
	MetricLuxuryScore  Metric = "luxury_score"
	MetricLatitude     Metric = "latitude"
	MetricLongitude    Metric = "longitude"
)

// Value returns the listing's value for m, NaN when unknown.
func (l *Listing) Value(m Metric) float64 {
	switch m {
	case MetricPrice:
		return l.Price
	case MetricPricePerSqft:
		return l.PricePerSqft
	case MetricBuiltUpArea:
		return l.BuiltUpArea
	case MetricLuxuryScore:
		return l.LuxuryScore
	case MetricLatitude:
		return l.Latitude
	case MetricLongitude:
		return l.Longitude
	default:
		return math.NaN()
	}
}
