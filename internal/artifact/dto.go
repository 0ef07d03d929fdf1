package artifact

import (
	"math"

	"github.com/kailas-cloud/homedex/internal/domain/listing"
)

// catalogRow is one row of catalog.parquet.
type catalogRow struct {
	Index int32  `parquet:"index"`
	Name  string `parquet:"name"`
}

// similarityRow is one cell of a long-form similarity matrix file.
type similarityRow struct {
	Row   int32   `parquet:"row"`
	Col   int32   `parquet:"col"`
	Score float64 `parquet:"score"`
}

// distanceRow is one known (location, property) distance.
type distanceRow struct {
	Location string  `parquet:"location"`
	Property string  `parquet:"property"`
	Meters   float64 `parquet:"meters"`
}

// listingRow is one row of listings.parquet. Nil pointers are missing values.
type listingRow struct {
	PropertyType   string   `parquet:"property_type"`
	Society        string   `parquet:"society"`
	Sector         string   `parquet:"sector"`
	Price          *float64 `parquet:"price,optional"`
	PricePerSqft   *float64 `parquet:"price_per_sqft,optional"`
	BuiltUpArea    *float64 `parquet:"built_up_area,optional"`
	Bedrooms       *float64 `parquet:"bedrooms,optional"`
	Bathrooms      *float64 `parquet:"bathrooms,optional"`
	Balconies      string   `parquet:"balcony"`
	LuxuryScore    *float64 `parquet:"luxury_score,optional"`
	FurnishingType string   `parquet:"furnishing_type"`
	AgePossession  string   `parquet:"age_possession"`
	Latitude       *float64 `parquet:"latitude,optional"`
	Longitude      *float64 `parquet:"longitude,optional"`
}

func (r *listingRow) toDomain() listing.Listing {
	return listing.Listing{
		PropertyType:   r.PropertyType,
		Society:        r.Society,
		Sector:         r.Sector,
		Price:          orNaN(r.Price),
		PricePerSqft:   orNaN(r.PricePerSqft),
		BuiltUpArea:    orNaN(r.BuiltUpArea),
		Bedrooms:       orNaN(r.Bedrooms),
		Bathrooms:      orNaN(r.Bathrooms),
		Balconies:      r.Balconies,
		LuxuryScore:    orNaN(r.LuxuryScore),
		FurnishingType: r.FurnishingType,
		AgePossession:  r.AgePossession,
		Latitude:       orNaN(r.Latitude),
		Longitude:      orNaN(r.Longitude),
	}
}

func listingFromDomain(l *listing.Listing) listingRow {
	return listingRow{
		PropertyType:   l.PropertyType,
		Society:        l.Society,
		Sector:         l.Sector,
		Price:          ptrOrNil(l.Price),
		PricePerSqft:   ptrOrNil(l.PricePerSqft),
		BuiltUpArea:    ptrOrNil(l.BuiltUpArea),
		Bedrooms:       ptrOrNil(l.Bedrooms),
		Bathrooms:      ptrOrNil(l.Bathrooms),
		Balconies:      l.Balconies,
		LuxuryScore:    ptrOrNil(l.LuxuryScore),
		FurnishingType: l.FurnishingType,
		AgePossession:  l.AgePossession,
		Latitude:       ptrOrNil(l.Latitude),
		Longitude:      ptrOrNil(l.Longitude),
	}
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func ptrOrNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
