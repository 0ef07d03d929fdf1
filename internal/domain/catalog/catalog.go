package catalog

import (
	"fmt"
	"slices"
)

// Catalog is the ordered set of property names that indexes every
// similarity matrix and the distance table (immutable value object).
type Catalog struct {
	names []string
	index map[string]int
}

// New builds a catalog from names in artifact order.
// Empty and duplicate names are rejected.
func New(names []string) (Catalog, error) {
	if len(names) == 0 {
		return Catalog{}, fmt.Errorf("catalog is empty")
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		if n == "" {
			return Catalog{}, fmt.Errorf("catalog entry %d has empty name", i)
		}
		if prev, ok := index[n]; ok {
			return Catalog{}, fmt.Errorf("duplicate property %q at %d and %d", n, prev, i)
		}
		index[n] = i
	}
	return Catalog{names: slices.Clone(names), index: index}, nil
}

// Len returns the number of properties.
func (c *Catalog) Len() int { return len(c.names) }

// IndexOf returns the catalog index of name.
func (c *Catalog) IndexOf(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Name returns the property name at index i.
func (c *Catalog) Name(i int) string { return c.names[i] }

// Names returns a copy of all names in catalog order.
func (c *Catalog) Names() []string { return slices.Clone(c.names) }

// Sorted returns all names sorted ascending.
func (c *Catalog) Sorted() []string {
	out := slices.Clone(c.names)
	slices.Sort(out)
	return out
}
