package cmd

import (
	"github.com/NoamAriel/sxn/internal/sxn"
	"github.com/spf13/cobra"
)

// treeCmd rebuilds the phylo tree artifacts from records on disk.
var treeCmd = &cobra.Command{
	Use:                        "tree",
	Short:                      "Rebuild phylo_tree.json and phylo_tree.md from the record tree",
	Run:                        sxn.TreeCmd,
	SuggestionsMinimumDistance: 2,
	Example:                    "  sxn tree --root ncbi_sequences --order Araneae",
	Long: `Walk the record tree and regenerate the phylo_tree.json and phylo_tree.md
artifacts, for when the fetch outputs were deleted or several crawls were
merged into one root.`,
}

func init() {
	treeCmd.Flags().StringP("root", "r", "", "record tree root")
	treeCmd.Flags().StringP("order", "O", "", "taxonomic order named in the Markdown header")

	treeCmd.MarkFlagRequired("root")

	RootCmd.AddCommand(treeCmd)
}
