package sxn

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/NoamAriel/sxn/config"
	"github.com/spf13/cobra"
)

// targetRanks are the lineage ranks kept when anchoring a ranked
// taxonomy at the crawl's order.
var targetRanks = map[string]bool{
	"order":       true,
	"suborder":    true,
	"infraorder":  true,
	"superfamily": true,
	"family":      true,
	"subfamily":   true,
	"tribe":       true,
	"genus":       true,
}

// lineageDepth caps the order-anchored lineage read from the flatfile
// taxonomy when no ranked lineage is available.
const lineageDepth = 8

// FetchCmd is the cobra handler for the fetch command.
func FetchCmd(cmd *cobra.Command, args []string) {
	if err := Fetch(parseFetchFlags(cmd), config.New()); err != nil {
		stderr.Fatalln(err)
	}
}

// Fetch crawls NCBI Protein for every (scope, term) query, writes each
// record's JSON and Markdown under the taxonomy-shaped output tree, and
// saves the phylo tree artifacts.
func Fetch(flags *FetchFlags, conf *config.Config) error {
	terms := flags.terms
	if len(terms) == 0 {
		terms = conf.Fetch.Terms
	}
	out := flags.out
	if out == "" {
		out = conf.Output
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}

	// order-wide first, then each family-specific scope
	scopes := append([]string{flags.order}, flags.families...)
	orderLower := strings.ToLower(flags.order)

	tree := NewTree()
	taxCache := map[string][]rankedName{}
	sleep := time.Duration(conf.NCBI.SleepMS) * time.Millisecond
	totalSaved := 0

	for _, scope := range scopes {
		for _, term := range terms {
			// organism-scoped query keeps results inside the clade;
			// the loose form is a fallback for unindexed names
			orgQuery := fmt.Sprintf("%q[Organism] AND %s", scope, term)
			fallbackQuery := fmt.Sprintf("%s %s", scope, term)

			ids, err := fetchIDs(orgQuery, conf.NCBI.APIKey, flags.maxRecords)
			if err != nil {
				stderr.Printf("[INFO] ESearch failed for %q: %v", orgQuery, err)
			}
			if len(ids) == 0 {
				if ids, err = fetchIDs(fallbackQuery, conf.NCBI.APIKey, flags.maxRecords); err != nil {
					stderr.Printf("[INFO] ESearch failed for %q: %v", fallbackQuery, err)
				}
			}
			ids = dedupe(ids)
			if len(ids) == 0 {
				stderr.Printf("[INFO] No results for %q or %q", orgQuery, fallbackQuery)
				continue
			}

			summaries, err := fetchSummaries(ids, conf.NCBI.APIKey)
			if err != nil {
				stderr.Printf("[INFO] No results for %q (ESummary failed: %v)", orgQuery, err)
				continue
			}
			stderr.Printf("[INFO] %s (+fallback): %d candidate proteins", orgQuery, len(summaries))

			for _, batch := range chunkSummaries(summaries, fetchChunk) {
				if sleep > 0 {
					time.Sleep(sleep)
				}

				accessions := make([]string, len(batch))
				for i, ds := range batch {
					accessions[i] = ds.Accession
				}
				gbMap, err := fetchGenPeptBatch(accessions, conf.NCBI.APIKey)
				if err != nil {
					stderr.Printf("[WARN] EFetch batch failed for %d accessions: %v", len(accessions), err)
					continue
				}

				for _, ds := range batch {
					gp, ok := gbMap[ds.Accession]
					if !ok {
						stderr.Printf("[WARN] No GenPept data for %s", ds.Accession)
						continue
					}
					if gp.Sequence == "" {
						continue
					}

					lineage, ranks := anchoredLineage(ds.TaxID, gp, orderLower, conf.NCBI.APIKey, taxCache)
					if len(lineage) == 0 {
						continue
					}

					seq := gp.Sequence
					band := BandFull
					if strings.Contains(strings.ToLower(ds.Title), BandPartial) {
						band = BandPartial
					}
					rec := &Record{
						Accession:         ds.Accession,
						Title:             ds.Title,
						FamilyQuery:       scope,
						ProteinTerm:       term,
						Organism:          gp.Organism,
						TaxonomyFull:      gp.Taxonomy,
						TaxonomyFromOrder: lineage,
						SequenceLength:    len(seq),
						Sequence:          &seq,
						PartialFull:       band,
						Type:              classifyType(ds.Title, conf.Fetch.TypeSettings),
						URL:               "https://www.ncbi.nlm.nih.gov/protein/" + ds.Accession,
					}

					if err := writeRecord(out, rec); err != nil {
						stderr.Printf("[WARN] saving %s: %v", rec.Accession, err)
						continue
					}

					path := append([]string{}, lineage...)
					path = append(path, rec.Organism, band, rec.Type)
					tree.Add(path, ranks, TreeLeaf{Accession: rec.Accession, Title: rec.Title, URL: rec.URL})
					totalSaved++
				}
			}
		}
	}

	treePath, err := tree.WriteJSON(out)
	if err != nil {
		return err
	}
	if _, err = tree.WriteMarkdown(out, flags.order); err != nil {
		return err
	}
	stderr.Printf("[DONE] Saved %d records. Tree: %s", totalSaved, treePath)
	return nil
}

// anchoredLineage resolves a record's lineage starting at the crawl
// order, preferring the ranked NCBI Taxonomy lineage and falling back to
// the GenPept flatfile taxonomy. It also returns the name-to-rank map
// for tree annotation.
func anchoredLineage(taxid string, gp genPept, orderLower, apiKey string, cache map[string][]rankedName) ([]string, map[string]string) {
	ranks := map[string]string{}

	if taxid != "" {
		ranked, ok := cache[taxid]
		if !ok {
			var err error
			if ranked, err = fetchLineage(taxid, apiKey); err != nil {
				ranked = nil
			}
			cache[taxid] = ranked
		}
		if len(ranked) > 0 {
			for _, rn := range ranked {
				ranks[rn.Name] = rn.Rank
			}
			// the queried taxon is often a subspecies of the organism name
			last := ranked[len(ranked)-1]
			if last.Name != gp.Organism && strings.Contains(gp.Organism, last.Name) {
				ranks[gp.Organism] = last.Rank
			}

			var lineage []string
			started := false
			for _, rn := range ranked {
				if !targetRanks[strings.ToLower(rn.Rank)] {
					continue
				}
				if strings.EqualFold(rn.Name, orderLower) {
					started = true
				}
				if started {
					lineage = append(lineage, rn.Name)
				}
			}
			if len(lineage) > 0 {
				return lineage, ranks
			}
		}
	}

	// flatfile fallback: slice the full taxonomy at the order
	for i, name := range gp.Taxonomy {
		if strings.EqualFold(name, orderLower) {
			lineage := gp.Taxonomy[i:]
			if len(lineage) > lineageDepth {
				lineage = lineage[:lineageDepth]
			}
			ranks[name] = "order"
			if strings.Contains(gp.Organism, " ") {
				ranks[gp.Organism] = "species"
			}
			return lineage, ranks
		}
	}
	return nil, ranks
}

// dedupe removes repeated IDs, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// chunkSummaries splits summaries into EFetch-sized batches.
func chunkSummaries(items []docSummary, size int) [][]docSummary {
	var chunks [][]docSummary
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
