package cmd

import (
	"github.com/NoamAriel/sxn/internal/sxn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// fetchCmd crawls NCBI Protein and fills the record tree.
var fetchCmd = &cobra.Command{
	Use:                        "fetch",
	Short:                      "Download protein records from NCBI into the record tree",
	Run:                        sxn.FetchCmd,
	SuggestionsMinimumDistance: 2,
	Example:                    "  sxn fetch --order Araneae --terms fibroin,spidroin",
	Long: `Search NCBI Protein for each protein term, scoped to the taxonomic order
(and optionally to specific families), download the matching GenPept records,
and save each one as JSON + Markdown under a directory tree shaped like the
taxonomy: order/.../species/<partial|full>/<type>/. A phylo_tree.json and
phylo_tree.md summarizing the tree are written at the root.`,
}

func init() {
	fetchCmd.Flags().StringP("order", "O", "", "taxonomic order anchoring the crawl (eg Araneae)")
	fetchCmd.Flags().StringP("families", "f", "", "comma separated family names to query after the order-wide pass")
	fetchCmd.Flags().StringP("terms", "t", "", "comma separated protein search terms (default from settings)")
	fetchCmd.Flags().StringP("out", "o", "", "record tree root (default from settings)")
	fetchCmd.Flags().IntP("max-records", "m", 0, "cap on IDs pulled per query, 0 for no cap")
	fetchCmd.Flags().String("api-key", "", "NCBI API key raising the request-rate ceiling")

	fetchCmd.MarkFlagRequired("order")

	viper.BindPFlag("ncbi.api-key", fetchCmd.Flags().Lookup("api-key"))

	RootCmd.AddCommand(fetchCmd)
}
