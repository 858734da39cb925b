package cmd

import (
	"github.com/NoamAriel/sxn/internal/sxn"
	"github.com/spf13/cobra"
)

// plotCmd renders charts from a serialized analysis summary.
var plotCmd = &cobra.Command{
	Use:                        "plot",
	Short:                      "Render charts from a serine_sxn_analysis.json",
	Run:                        sxn.PlotCmd,
	SuggestionsMinimumDistance: 2,
	Example:                    "  sxn plot --in ncbi_sequences/serine_sxn_analysis.json",
	Long: `Read a serialized analysis summary and render the run-length distribution,
per-family serine/coverage fractions and X-residue composition charts as
PNGs. Residue colors are fixed, so the same amino acid is recognizable
across charts and runs.`,
}

func init() {
	plotCmd.Flags().StringP("in", "i", "", "path to a serialized analysis summary JSON")
	plotCmd.Flags().StringP("out", "o", "", "directory for the chart PNGs (default: beside the JSON)")

	plotCmd.MarkFlagRequired("in")

	RootCmd.AddCommand(plotCmd)
}
