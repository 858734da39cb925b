package sxn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// WriteSummaryJSON serializes the full analysis summary, indented for
// the downstream plotting tools and for human diffing.
func WriteSummaryJSON(summary *Summary, root, name string) (string, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, name)
	return path, os.WriteFile(path, b, 0644)
}

// sortRecords orders results for reporting: taxonomy ranks first, then
// organism, type and band.
func sortRecords(records []*RecordResult) []*RecordResult {
	sorted := append([]*RecordResult{}, records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.Suborder != b.Suborder:
			return a.Suborder < b.Suborder
		case a.Superfamily != b.Superfamily:
			return a.Superfamily < b.Superfamily
		case a.Family != b.Family:
			return a.Family < b.Family
		case a.Organism != b.Organism:
			return a.Organism < b.Organism
		case a.Type != b.Type:
			return a.Type < b.Type
		default:
			return a.Band < b.Band
		}
	})
	return sorted
}

// collectAxes gathers every observed run length (descending) and every
// X-residue bucket (ascending) so all tables share the same columns.
func collectAxes(records []*RecordResult) (nValues []int, xResidues []string) {
	nSet := map[int]bool{}
	xSet := map[string]bool{}
	for _, rec := range records {
		for n := range rec.RunCounts {
			nSet[n] = true
		}
		for _, counts := range rec.XCounts {
			for x := range counts {
				xSet[x] = true
			}
		}
	}
	for n := range nSet {
		nValues = append(nValues, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nValues)))
	xResidues = sortedKeys(xSet)
	return nValues, xResidues
}

// groupHeadings writes suborder/superfamily/family headings as the
// taxonomy changes between consecutive sorted records.
type groupHeadings struct {
	suborder, superfamily, family string
}

func (g *groupHeadings) emit(lines *[]string, rec *RecordResult, familySuffix string) (familyChanged bool) {
	if rec.Suborder != g.suborder {
		g.suborder = rec.Suborder
		g.superfamily = ""
		*lines = append(*lines, fmt.Sprintf("\n# Suborder: %s\n", rec.Suborder), "===")
	}
	if rec.Superfamily != g.superfamily {
		g.superfamily = rec.Superfamily
		g.family = ""
		*lines = append(*lines, fmt.Sprintf("\n## Superfamily: %s\n", rec.Superfamily), "---")
	}
	if rec.Family != g.family {
		g.family = rec.Family
		*lines = append(*lines, fmt.Sprintf("\n### Family: %s%s", rec.Family, familySuffix))
		return true
	}
	return false
}

// WriteSummaryMarkdown renders the taxonomy-grouped analysis report:
// per-record run-count tables, X-residue composition tables, and
// per-family summary statistics.
func WriteSummaryMarkdown(summary *Summary, root, jsonName, name string) (string, error) {
	path := filepath.Join(root, name)

	lines := []string{
		"# Serine + [SX]_n Motif Analysis (Taxonomic Grouping)",
		"",
		"This analysis identifies serine composition and continuous runs of the **SX** unit " +
			"($\\mathbf{[SX]_n}$) in sequences. Results are grouped by taxonomic hierarchy " +
			"(Suborder, Superfamily, and Family).",
		fmt.Sprintf("- JSON data: `%s`", jsonName),
		fmt.Sprintf("- n range: %d..%d", summary.MinN, summary.MaxN),
		fmt.Sprintf("- records: %d processed, %d skipped", summary.Processed, summary.Skipped),
		"---",
	}

	if len(summary.Records) == 0 {
		lines = append(lines, "", "_No records found._")
		return path, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
	}

	sorted := sortRecords(summary.Records)
	nValues, xResidues := collectAxes(sorted)

	// per-record run counts
	lines = append(lines, "## Detailed Run Counts by Taxonomic Group (Overall)")

	headerCols := []string{
		"Organism", "Type", "Partial/Full", "Accession ID", "Length",
		"Serine Count", "Serine Fraction", "Total Runs",
		"Residues in Motifs", "Residues Fraction",
	}
	for _, n := range nValues {
		headerCols = append(headerCols, fmt.Sprintf("n=%d Count", n))
	}
	headerLine := "| " + strings.Join(headerCols, " | ") + " |"
	alignLine := "|" + strings.Repeat(" :--- |", 10) + strings.Repeat(" :---: |", len(nValues))

	headings := groupHeadings{}
	for _, rec := range sorted {
		if headings.emit(&lines, rec, "") {
			lines = append(lines, headerLine, alignLine)
		}

		row := []string{
			rec.Organism,
			rec.Type,
			rec.Band,
			fmt.Sprintf("`%s`", rec.Accession),
			fmt.Sprint(rec.Length),
			fmt.Sprint(rec.SerineCount),
			fmt.Sprintf("**%.2f%%**", rec.SerineFraction*100),
			fmt.Sprintf("**%d**", rec.TotalRuns),
			fmt.Sprint(rec.MotifResidues),
			fmt.Sprintf("**%.2f%%**", rec.MotifFraction*100),
		}
		for _, n := range nValues {
			row = append(row, fmt.Sprint(rec.RunCounts[n]))
		}
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
	}

	// X-residue composition per run length
	lines = append(lines,
		"\n## X-Residue Composition Analysis by Run Length ($\\mathbf{[SX]_n}$)",
		"This table shows the total count for each amino acid (X) found in the "+
			"$\\mathbf{X}$ position across all runs of a specific length $\\mathbf{n}$.",
	)

	xHeader := []string{"Organism/Type/ID", "n (Run Length)", "Total X Residues"}
	for _, x := range xResidues {
		xHeader = append(xHeader, "X="+x)
	}
	xHeaderLine := "| " + strings.Join(xHeader, " | ") + " |"
	xAlignLine := "| :--- | :---: | :---: |" + strings.Repeat(" :---: |", len(xResidues))

	headings = groupHeadings{}
	for _, rec := range sorted {
		headings.emit(&lines, rec, " (X-Residue Detail)")
		lines = append(lines, xHeaderLine, xAlignLine)

		for _, n := range nValues {
			counts := rec.XCounts[n]
			if len(counts) == 0 {
				continue
			}
			totalX := 0
			for _, c := range counts {
				totalX += c
			}
			row := []string{
				fmt.Sprintf("%s (%s) - `%s`", rec.Organism, rec.Type, rec.Accession),
				fmt.Sprint(n),
				fmt.Sprintf("**%d**", totalX),
			}
			for _, x := range xResidues {
				row = append(row, fmt.Sprint(counts[x]))
			}
			lines = append(lines, "| "+strings.Join(row, " | ")+" |")
		}
		lines = append(lines, "")
	}

	lines = append(lines, familyStatsSection(sorted)...)

	lines = append(lines,
		"---",
		"**Key Metrics:**",
		`* **$n$ (Run Count):** Number of times the base $\mathbf{SX}$ unit is repeated (e.g., $SXSXSX$ has $n=3$).`,
		`* **Total Runs:** Sum of all continuous $\mathbf{[SX]_n}$ segments found in the sequence.`,
		`* **Residues in Motifs:** Total amino acids covered by all $\mathbf{[SX]_n}$ runs.`,
		`* **Residues Fraction:** Percentage of the protein length covered by $\mathbf{[SX]_n}$ runs.`,
		`* **X-Residue Composition:** Counts of amino acids substituting for $\mathbf{X}$ in $\mathbf{SX}$.`,
	)

	return path, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// familyStatsSection summarizes serine and coverage fractions per family
// with mean and standard deviation.
func familyStatsSection(sorted []*RecordResult) []string {
	type familyAgg struct {
		name      string
		serine    []float64
		coverage  []float64
		sequences int
	}

	var families []*familyAgg
	index := map[string]*familyAgg{}
	for _, rec := range sorted {
		agg := index[rec.Family]
		if agg == nil {
			agg = &familyAgg{name: rec.Family}
			index[rec.Family] = agg
			families = append(families, agg)
		}
		agg.serine = append(agg.serine, rec.SerineFraction)
		agg.coverage = append(agg.coverage, rec.MotifFraction)
		agg.sequences++
	}

	lines := []string{
		"\n## Family Summary Statistics",
		"Mean and standard deviation of per-sequence serine and motif-coverage fractions.",
		"| Family | Sequences | Serine Mean | Serine StdDev | Coverage Mean | Coverage StdDev |",
		"| :--- | :---: | :---: | :---: | :---: | :---: |",
	}
	for _, agg := range families {
		serineStd, coverageStd := 0.0, 0.0
		if agg.sequences > 1 {
			serineStd = stat.StdDev(agg.serine, nil)
			coverageStd = stat.StdDev(agg.coverage, nil)
		}
		lines = append(lines, fmt.Sprintf(
			"| %s | %d | %.2f%% | %.2f%% | %.2f%% | %.2f%% |",
			agg.name, agg.sequences,
			stat.Mean(agg.serine, nil)*100, serineStd*100,
			stat.Mean(agg.coverage, nil)*100, coverageStd*100,
		))
	}
	lines = append(lines, "")
	return lines
}
