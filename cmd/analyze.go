package cmd

import (
	"github.com/NoamAriel/sxn/internal/sxn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analyzeCmd runs the serine [SX]_n motif analysis over a record tree.
var analyzeCmd = &cobra.Command{
	Use:                        "analyze",
	Short:                      "Analyze serine [SX]_n motifs across the record tree",
	Run:                        sxn.AnalyzeCmd,
	SuggestionsMinimumDistance: 2,
	Example:                    "  sxn analyze --root ncbi_sequences --max-n 50",
	Long: `Load every record beneath the root, scan each sequence for non-overlapping
[SX]_n motif runs (longest-first), aggregate the statistics by protein type,
partial/full status and taxonomy, and write serine_sxn_analysis.json plus a
grouped Markdown report at the root.

The optional filters narrow the record collection before aggregation:
--taxon keeps records whose lineage matches a term, --min-length/--max-length
bound the sequence length, and --longest-factor keeps sequences at least
factor x the longest in scope (per species with --per-species).`,
	Aliases: []string{"analyse", "scan"},
}

func init() {
	analyzeCmd.Flags().StringP("root", "r", "", "record tree root to analyze")
	analyzeCmd.Flags().String("json-out", "serine_sxn_analysis.json", "name of the JSON artifact")
	analyzeCmd.Flags().String("md-out", "serine_sxn_analysis.md", "name of the Markdown report")
	analyzeCmd.Flags().Int("min-n", 2, "smallest [SX]_n repeat count reported")
	analyzeCmd.Flags().Int("max-n", 50, "largest repeat count searched for")

	analyzeCmd.Flags().String("taxon", "", "keep records whose lineage contains this term")
	analyzeCmd.Flags().Int("min-length", 0, "keep sequences at least this long")
	analyzeCmd.Flags().Int("max-length", 0, "keep sequences at most this long, 0 for no cap")
	analyzeCmd.Flags().Float64("longest-factor", 0, "keep sequences >= factor * longest in scope")
	analyzeCmd.Flags().Bool("per-species", false, "scope --longest-factor to each species")

	analyzeCmd.MarkFlagRequired("root")

	viper.BindPFlag("analysis.min-n", analyzeCmd.Flags().Lookup("min-n"))
	viper.BindPFlag("analysis.max-n", analyzeCmd.Flags().Lookup("max-n"))

	RootCmd.AddCommand(analyzeCmd)
}
