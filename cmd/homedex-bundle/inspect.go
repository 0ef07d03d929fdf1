package main

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/kailas-cloud/homedex/internal/artifact"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <bundle-dir>",
	Short: "Validate a bundle and print its summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the summary as JSON")
}

// Summary describes a loaded bundle.
type Summary struct {
	Properties int             `json:"properties"`
	Locations  []string        `json:"locations"`
	Distances  int             `json:"distances"`
	Listings   int             `json:"listings"`
	Signals    []SignalSummary `json:"signals"`
}

// SignalSummary holds the off-diagonal score range of one similarity matrix.
type SignalSummary struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func summarize(b *artifact.Bundle) Summary {
	s := Summary{
		Properties: b.Catalog.Len(),
		Locations:  b.Distances.Locations(),
		Listings:   len(b.Listings),
	}
	for _, loc := range s.Locations {
		col, _ := b.Distances.Column(loc)
		s.Distances += len(col)
	}

	n := b.Catalog.Len()
	for i := range b.Matrices {
		m := &b.Matrices[i]
		sig := SignalSummary{Name: m.Name(), Min: math.NaN(), Max: math.NaN()}
		if n > 1 {
			off := make([]float64, 0, n*(n-1))
			for r := 0; r < n; r++ {
				row := m.Row(r)
				off = append(off, row[:r]...)
				off = append(off, row[r+1:]...)
			}
			sig.Min, sig.Max = floats.Min(off), floats.Max(off)
		}
		s.Signals = append(s.Signals, sig)
	}
	return s
}

func runInspect(cmd *cobra.Command, args []string) error {
	b, err := artifact.Load(args[0])
	if err != nil {
		return fmt.Errorf("load bundle: %w", err)
	}
	s := summarize(b)

	if inspectJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(s) //nolint:wrapcheck // terminal output
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "properties: %d\n", s.Properties)
	fmt.Fprintf(out, "locations:  %d (%d known distances)\n", len(s.Locations), s.Distances)
	fmt.Fprintf(out, "listings:   %d\n", s.Listings)
	for _, sig := range s.Signals {
		fmt.Fprintf(out, "signal %-9s off-diagonal [%.4f, %.4f]\n", sig.Name, sig.Min, sig.Max)
	}
	return nil
}
