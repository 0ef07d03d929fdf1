package estimate

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Column names of the training frame. The pipeline expects these keys.
const (
	ColPropertyType   = "property_type"
	ColSector         = "sector"
	ColBedrooms       = "bedRoom"
	ColBathrooms      = "bathroom"
	ColBalcony        = "balcony"
	ColAgePossession  = "agePossession"
	ColBuiltUpArea    = "built_up_area"
	ColServantRoom    = "servant room"
	ColStoreRoom      = "store room"
	ColFurnishingType = "furnishing_type"
	ColLuxuryCategory = "luxury_category"
	ColFloorCategory  = "floor_category"
)

// CategoricalColumns lists the columns whose values must be known levels.
var CategoricalColumns = []string{
	ColPropertyType, ColSector, ColBalcony, ColAgePossession,
	ColFurnishingType, ColLuxuryCategory, ColFloorCategory,
}

// NumericColumns lists the numeric input columns.
var NumericColumns = []string{
	ColBedrooms, ColBathrooms, ColBuiltUpArea, ColServantRoom, ColStoreRoom,
}

// Features is the fixed-schema input record of the price pipeline.
type Features struct {
	PropertyType   string  `json:"property_type"`
	Sector         string  `json:"sector"`
	Bedrooms       float64 `json:"bedrooms"`
	Bathrooms      float64 `json:"bathrooms"`
	Balcony        string  `json:"balcony"`
	AgePossession  string  `json:"age_possession"`
	BuiltUpArea    float64 `json:"built_up_area"`
	ServantRoom    float64 `json:"servant_room"`
	StoreRoom      float64 `json:"store_room"`
	FurnishingType string  `json:"furnishing_type"`
	LuxuryCategory string  `json:"luxury_category"`
	FloorCategory  string  `json:"floor_category"`
}

// Validate checks numeric ranges and that every categorical value is set.
// Whether a categorical value is a known level is checked by Levels.
func (f *Features) Validate() error {
	cat := f.Categorical()
	for _, col := range CategoricalColumns {
		if cat[col] == "" {
			return fmt.Errorf("%s is required", col)
		}
	}
	num := f.Numeric()
	for _, col := range NumericColumns {
		if v := num[col]; math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%s must be a non-negative number, got %g", col, v)
		}
	}
	if f.BuiltUpArea <= 0 {
		return fmt.Errorf("%s must be positive", ColBuiltUpArea)
	}
	if f.ServantRoom != 0 && f.ServantRoom != 1 {
		return fmt.Errorf("%s must be 0 or 1", ColServantRoom)
	}
	if f.StoreRoom != 0 && f.StoreRoom != 1 {
		return fmt.Errorf("%s must be 0 or 1", ColStoreRoom)
	}
	return nil
}

// Categorical returns categorical values keyed by training column.
func (f *Features) Categorical() map[string]string {
	return map[string]string{
		ColPropertyType:   f.PropertyType,
		ColSector:         f.Sector,
		ColBalcony:        f.Balcony,
		ColAgePossession:  f.AgePossession,
		ColFurnishingType: f.FurnishingType,
		ColLuxuryCategory: f.LuxuryCategory,
		ColFloorCategory:  f.FloorCategory,
	}
}

// Numeric returns numeric values keyed by training column.
func (f *Features) Numeric() map[string]float64 {
	return map[string]float64{
		ColBedrooms:    f.Bedrooms,
		ColBathrooms:   f.Bathrooms,
		ColBuiltUpArea: f.BuiltUpArea,
		ColServantRoom: f.ServantRoom,
		ColStoreRoom:   f.StoreRoom,
	}
}

// Levels holds the categorical levels a pipeline was trained on.
type Levels map[string][]string

// Normalize sorts and deduplicates every column's levels.
func (l Levels) Normalize() Levels {
	out := make(Levels, len(l))
	for col, vs := range l {
		c := slices.Clone(vs)
		slices.Sort(c)
		out[col] = slices.Compact(c)
	}
	return out
}

// Check reports the first categorical value of f that is not a known level.
// Columns absent from l are not constrained.
func (l Levels) Check(f *Features) error {
	cat := f.Categorical()
	cols := make([]string, 0, len(cat))
	for col := range cat {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	for _, col := range cols {
		known, ok := l[col]
		if !ok {
			continue
		}
		if !slices.Contains(known, cat[col]) {
			return fmt.Errorf("unknown %s level %q", col, cat[col])
		}
	}
	return nil
}

// Range is an estimated price band in the model's currency unit.
type Range struct {
	Low   float64
	Price float64
	High  float64
}
