package sxn

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)
)

// FetchFlags are the parsed flags of the fetch command.
type FetchFlags struct {
	// order is the taxonomic order anchoring the crawl (eg Araneae)
	order string

	// families narrow the crawl to family-scoped queries after the
	// order-wide pass
	families []string

	// terms are the protein search terms (eg fibroin, spidroin)
	terms []string

	// out is the record tree root
	out string

	// maxRecords caps the IDs pulled per query, 0 for no cap
	maxRecords int
}

// AnalyzeFlags are the parsed flags of the analyze command.
type AnalyzeFlags struct {
	// root is the record tree to load
	root string

	// jsonOut and mdOut name the report artifacts written under root
	jsonOut string
	mdOut   string

	// filter is applied to the records before aggregation
	filter *Filter
}

// PlotFlags are the parsed flags of the plot command.
type PlotFlags struct {
	// in is a serialized analysis summary JSON
	in string

	// out is the directory the chart PNGs are written to
	out string
}

// inputParser contains methods for parsing flags from the input &cobra.Command.
type inputParser struct{}

func (p *inputParser) parseList(cmd *cobra.Command, name string) []string {
	raw, _ := cmd.Flags().GetString(name)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFetchFlags(cmd *cobra.Command) *FetchFlags {
	p := inputParser{}
	order, _ := cmd.Flags().GetString("order")
	out, _ := cmd.Flags().GetString("out")
	maxRecords, _ := cmd.Flags().GetInt("max-records")

	if order == "" {
		cmd.Help()
		stderr.Fatalln("\nno order passed.")
	}

	return &FetchFlags{
		order:      order,
		families:   p.parseList(cmd, "families"),
		terms:      p.parseList(cmd, "terms"),
		out:        out,
		maxRecords: maxRecords,
	}
}

func parseAnalyzeFlags(cmd *cobra.Command) *AnalyzeFlags {
	root, _ := cmd.Flags().GetString("root")
	jsonOut, _ := cmd.Flags().GetString("json-out")
	mdOut, _ := cmd.Flags().GetString("md-out")

	if root == "" {
		cmd.Help()
		stderr.Fatalln("\nno record root passed.")
	}

	taxon, _ := cmd.Flags().GetString("taxon")
	minLen, _ := cmd.Flags().GetInt("min-length")
	maxLen, _ := cmd.Flags().GetInt("max-length")
	longestFactor, _ := cmd.Flags().GetFloat64("longest-factor")
	perSpecies, _ := cmd.Flags().GetBool("per-species")

	return &AnalyzeFlags{
		root:    root,
		jsonOut: jsonOut,
		mdOut:   mdOut,
		filter: &Filter{
			TaxonomyTerm:  taxon,
			MinLength:     minLen,
			MaxLength:     maxLen,
			LongestFactor: longestFactor,
			PerSpecies:    perSpecies,
		},
	}
}

func parsePlotFlags(cmd *cobra.Command) *PlotFlags {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")

	if in == "" {
		cmd.Help()
		stderr.Fatalln("\nno analysis JSON passed.")
	}

	return &PlotFlags{in: in, out: out}
}
