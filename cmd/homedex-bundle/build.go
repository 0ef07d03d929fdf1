package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/homedex/internal/artifact"
)

var buildPaths artifact.CSVPaths

var buildCmd = &cobra.Command{
	Use:   "build <out-dir>",
	Short: "Build a bundle from CSV exports",
	Long: `Build a version 1 artifact bundle from CSV exports.

Similarity matrices are square CSV files without header, one row per
property in names.csv order. Distances come from a wide table
(--distances) or are computed from coordinates (--landmarks with
--coordinates).

Examples:
  homedex-bundle build ./artifacts --names names.csv \
    --text sim_text.csv --location sim_location.csv --amenity sim_amenity.csv \
    --distances location_distance.csv --listings data_viz1.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	f := buildCmd.Flags()
	f.StringVar(&buildPaths.Names, "names", "", "CSV with a name column, catalog order")
	f.StringVar(&buildPaths.Similarity[0], "text", "", "text similarity matrix CSV")
	f.StringVar(&buildPaths.Similarity[1], "location", "", "location similarity matrix CSV")
	f.StringVar(&buildPaths.Similarity[2], "amenity", "", "amenity similarity matrix CSV")
	f.StringVar(&buildPaths.Distances, "distances", "", "property by location distance table in meters")
	f.StringVar(&buildPaths.Landmarks, "landmarks", "", "landmark name, latitude, longitude CSV")
	f.StringVar(&buildPaths.Coordinates, "coordinates", "", "property name, latitude, longitude CSV")
	f.StringVar(&buildPaths.Listings, "listings", "", "optional listings dataset CSV")

	for _, name := range []string{"names", "text", "location", "amenity"} {
		_ = buildCmd.MarkFlagRequired(name)
	}
	buildCmd.MarkFlagsMutuallyExclusive("distances", "landmarks")
	buildCmd.MarkFlagsRequiredTogether("landmarks", "coordinates")
}

func runBuild(cmd *cobra.Command, args []string) error {
	src, err := artifact.ReadCSV(&buildPaths)
	if err != nil {
		return fmt.Errorf("read sources: %w", err)
	}
	if err := artifact.Write(args[0], src); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote bundle to %s: %d properties, %d distances, %d listings\n",
		args[0], len(src.Names), len(src.Distances), len(src.Listings))
	return nil
}
