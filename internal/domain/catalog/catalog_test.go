package catalog

import (
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	c, err := New([]string{"Ireo Victory Valley", "DLF The Camellias", "M3M Golf Estate"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	i, ok := c.IndexOf("DLF The Camellias")
	if !ok || i != 1 {
		t.Errorf("IndexOf() = %d, %v; want 1, true", i, ok)
	}
	if c.Name(2) != "M3M Golf Estate" {
		t.Errorf("Name(2) = %q", c.Name(2))
	}
	if _, ok := c.IndexOf("unknown"); ok {
		t.Error("IndexOf(unknown) should be false")
	}
}

func TestNew_Empty(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestNew_EmptyName(t *testing.T) {
	_, err := New([]string{"A", ""})
	if err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestNew_Duplicate(t *testing.T) {
	_, err := New([]string{"A", "B", "A"})
	if err == nil {
		t.Fatal("expected error for duplicate")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNames_ReturnsCopy(t *testing.T) {
	c, _ := New([]string{"B", "A"})
	names := c.Names()
	names[0] = "mutated"
	if c.Name(0) != "B" {
		t.Error("Names() must not expose internal slice")
	}
}

func TestSorted(t *testing.T) {
	c, _ := New([]string{"C", "A", "B"})
	got := c.Sorted()
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sorted() = %v, want %v", got, want)
		}
	}
	if c.Name(0) != "C" {
		t.Error("Sorted() must not reorder catalog")
	}
}
