package distance

import (
	"testing"

	"github.com/kailas-cloud/homedex/internal/domain/catalog"
)

func testCatalog(t *testing.T, names ...string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(names)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return &c
}

func TestNew_Valid(t *testing.T) {
	cat := testCatalog(t, "X", "Y", "Z")
	tbl, err := New(cat, []Entry{
		{Location: "Metro", Property: "Z", Meters: 900},
		{Location: "Metro", Property: "X", Meters: 4000},
		{Location: "Airport", Property: "Y", Meters: 12000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locs := tbl.Locations()
	if len(locs) != 2 || locs[0] != "Airport" || locs[1] != "Metro" {
		t.Errorf("Locations() = %v", locs)
	}

	col, ok := tbl.Column("Metro")
	if !ok || len(col) != 2 {
		t.Fatalf("Column(Metro) = %v, %v", col, ok)
	}
	if col[0].Index != 0 || col[1].Index != 2 {
		t.Errorf("column not in catalog order: %v", col)
	}

	if m, ok := tbl.Lookup("Metro", 2); !ok || m != 900 {
		t.Errorf("Lookup(Metro, Z) = %f, %v", m, ok)
	}
	if _, ok := tbl.Lookup("Metro", 1); ok {
		t.Error("missing pair must be unknown, not zero")
	}
	if tbl.HasLocation("Mall") {
		t.Error("HasLocation(Mall) should be false")
	}
}

func TestNew_Invalid(t *testing.T) {
	cat := testCatalog(t, "X")
	tests := []struct {
		name  string
		entry []Entry
	}{
		{"unknown property", []Entry{{Location: "L", Property: "Q", Meters: 1}}},
		{"negative", []Entry{{Location: "L", Property: "X", Meters: -1}}},
		{"empty location", []Entry{{Location: "", Property: "X", Meters: 1}}},
		{"duplicate", []Entry{
			{Location: "L", Property: "X", Meters: 1},
			{Location: "L", Property: "X", Meters: 2},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(cat, tc.entry); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
