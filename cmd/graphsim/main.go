package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	version = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "graphsim",
	Short: "Deterministic discrete-event simulator for pub/sub computation graphs",
	Long: `graphsim replays a declarative graph of periodic and subscription-driven
nodes through a deterministic discrete-event scheduler, optionally injecting a
single fault, and emits the edge index, node-feature, and fault-label CSV
artifacts a downstream learning pipeline consumes.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(datasetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
