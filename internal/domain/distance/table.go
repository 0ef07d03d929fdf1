package distance

import (
	"fmt"
	"math"
	"slices"

	"github.com/kailas-cloud/homedex/internal/domain/catalog"
)

// Entry is one known (location, property) distance in meters.
type Entry struct {
	Location string
	Property string
	Meters   float64
}

// Known is a property with a known distance to a location.
type Known struct {
	Index  int // catalog index
	Meters float64
}

// Table maps (location, property) to meters. Pairs without an entry have an
// unknown distance and are never reported. Immutable after New.
type Table struct {
	locations []string
	byLoc     map[string][]Known // catalog order
}

// New builds a table from entries. Every property must exist in cat.
func New(cat *catalog.Catalog, entries []Entry) (Table, error) {
	byLoc := make(map[string][]Known)
	seen := make(map[[2]string]struct{}, len(entries))

	for i, e := range entries {
		if e.Location == "" {
			return Table{}, fmt.Errorf("distance entry %d has empty location", i)
		}
		idx, ok := cat.IndexOf(e.Property)
		if !ok {
			return Table{}, fmt.Errorf("distance entry %d: property %q not in catalog", i, e.Property)
		}
		if math.IsNaN(e.Meters) || math.IsInf(e.Meters, 0) || e.Meters < 0 {
			return Table{}, fmt.Errorf("distance entry %d: invalid distance %g", i, e.Meters)
		}
		key := [2]string{e.Location, e.Property}
		if _, dup := seen[key]; dup {
			return Table{}, fmt.Errorf("duplicate distance for %q -> %q", e.Location, e.Property)
		}
		seen[key] = struct{}{}
		byLoc[e.Location] = append(byLoc[e.Location], Known{Index: idx, Meters: e.Meters})
	}

	locations := make([]string, 0, len(byLoc))
	for loc, ks := range byLoc {
		slices.SortFunc(ks, func(a, b Known) int { return a.Index - b.Index })
		locations = append(locations, loc)
	}
	slices.Sort(locations)

	return Table{locations: locations, byLoc: byLoc}, nil
}

// Locations returns all location names sorted ascending.
func (t *Table) Locations() []string { return slices.Clone(t.locations) }

// HasLocation reports whether the location is a column of the table.
func (t *Table) HasLocation(name string) bool {
	_, ok := t.byLoc[name]
	return ok
}

// Column returns the known distances for a location in catalog order.
// Callers must not modify the returned slice.
func (t *Table) Column(location string) ([]Known, bool) {
	ks, ok := t.byLoc[location]
	return ks, ok
}

// Lookup returns the distance for a pair, or false when unknown.
func (t *Table) Lookup(location string, index int) (float64, bool) {
	ks := t.byLoc[location]
	i, ok := slices.BinarySearchFunc(ks, index, func(k Known, target int) int { return k.Index - target })
	if !ok {
		return 0, false
	}
	return ks[i].Meters, true
}
