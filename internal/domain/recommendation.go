package domain

// Recommendation is a similar property with its composite score.
// Score is full precision; rounding is a presentation concern.
type Recommendation struct {
	Name  string
	Score float64
}

// NearbyProperty is a property within a search radius of a location.
type NearbyProperty struct {
	Name   string
	Meters float64
}
