package estimate

import (
	"strings"
	"testing"
)

func validFeatures() Features {
	return Features{
		PropertyType:   "flat",
		Sector:         "sector 45",
		Bedrooms:       3,
		Bathrooms:      2,
		Balcony:        "2",
		AgePossession:  "New Property",
		BuiltUpArea:    1500,
		FurnishingType: "semifurnished",
		LuxuryCategory: "Low",
		FloorCategory:  "Mid Floor",
	}
}

func TestFeatures_Validate(t *testing.T) {
	f := validFeatures()
	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(f *Features)
	}{
		{"negative bedrooms", func(f *Features) { f.Bedrooms = -1 }},
		{"zero area", func(f *Features) { f.BuiltUpArea = 0 }},
		{"servant room 2", func(f *Features) { f.ServantRoom = 2 }},
		{"store room 0.5", func(f *Features) { f.StoreRoom = 0.5 }},
		{"missing sector", func(f *Features) { f.Sector = "" }},
		{"missing floor category", func(f *Features) { f.FloorCategory = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := validFeatures()
			tc.mutate(&f)
			if err := f.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLevels_Check(t *testing.T) {
	levels := Levels{
		ColPropertyType: {"flat", "house"},
		ColSector:       {"sector 45", "sector 50"},
	}
	f := validFeatures()
	if err := levels.Check(&f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.Sector = "sector 999"
	err := levels.Check(&f)
	if err == nil {
		t.Fatal("expected error for unknown sector")
	}
	if !strings.Contains(err.Error(), "sector 999") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLevels_Normalize(t *testing.T) {
	l := Levels{ColSector: {"b", "a", "b"}}.Normalize()
	got := l[ColSector]
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Normalize() = %v", got)
	}
}
