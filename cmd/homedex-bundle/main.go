// Command homedex-bundle builds and inspects homedex artifact bundles.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/homedex/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "homedex-bundle",
	Short:         "Build and inspect homedex artifact bundles",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
