package sxn

import (
	"time"

	"github.com/NoamAriel/sxn/config"
	"github.com/spf13/cobra"
)

// AnalyzeCmd is the cobra handler for the analyze command.
func AnalyzeCmd(cmd *cobra.Command, args []string) {
	Analyze(parseAnalyzeFlags(cmd), config.New())
}

// Analyze loads the records beneath the root, applies the pre-filter,
// aggregates motif statistics and writes the JSON and Markdown reports
// next to the records.
func Analyze(flags *AnalyzeFlags, conf *config.Config) *Summary {
	start := time.Now()

	records, err := LoadRecords(flags.root)
	if err != nil {
		stderr.Fatalln(err)
	}
	loaded := len(records)
	records = flags.filter.Apply(records)
	if kept := len(records); kept < loaded {
		stderr.Printf("[INFO] filter kept %d of %d records", kept, loaded)
	}

	minN, maxN := conf.Analysis.Bounds()
	summary, err := Aggregate(records, minN, maxN)
	if err != nil {
		stderr.Fatalln(err)
	}

	jsonPath, err := WriteSummaryJSON(summary, flags.root, flags.jsonOut)
	if err != nil {
		stderr.Fatalln(err)
	}
	if _, err = WriteSummaryMarkdown(summary, flags.root, flags.jsonOut, flags.mdOut); err != nil {
		stderr.Fatalln(err)
	}

	stderr.Printf("[DONE] Analyzed %d records (%d skipped) in %s. JSON: %s",
		summary.Processed, summary.Skipped, time.Since(start).Round(time.Millisecond), jsonPath)
	return summary
}

// TreeCmd rebuilds phylo_tree.{json,md} from the records on disk.
func TreeCmd(cmd *cobra.Command, args []string) {
	root, _ := cmd.Flags().GetString("root")
	order, _ := cmd.Flags().GetString("order")
	if root == "" {
		cmd.Help()
		stderr.Fatalln("\nno record root passed.")
	}

	records, err := LoadRecords(root)
	if err != nil {
		stderr.Fatalln(err)
	}

	tree := BuildTree(records)
	treePath, err := tree.WriteJSON(root)
	if err != nil {
		stderr.Fatalln(err)
	}
	if _, err = tree.WriteMarkdown(root, order); err != nil {
		stderr.Fatalln(err)
	}
	stderr.Printf("[DONE] Tree rebuilt from %d records: %s", len(records), treePath)
}
