package sxn

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// residueColors fixes one color per amino-acid code so the same residue
// is recognizable across every chart and every analysis run.
var residueColors = map[string]color.RGBA{
	"A": {R: 140, G: 255, B: 140, A: 255},
	"C": {R: 255, G: 255, B: 112, A: 255},
	"D": {R: 160, G: 0, B: 66, A: 255},
	"E": {R: 102, G: 0, B: 0, A: 255},
	"F": {R: 83, G: 76, B: 66, A: 255},
	"G": {R: 255, G: 255, B: 255, A: 255},
	"H": {R: 112, G: 112, B: 255, A: 255},
	"I": {R: 0, G: 76, B: 0, A: 255},
	"K": {R: 71, G: 71, B: 184, A: 255},
	"L": {R: 69, G: 94, B: 69, A: 255},
	"M": {R: 184, G: 160, B: 66, A: 255},
	"N": {R: 255, G: 124, B: 112, A: 255},
	"P": {R: 82, G: 82, B: 82, A: 255},
	"Q": {R: 255, G: 76, B: 76, A: 255},
	"R": {R: 0, G: 0, B: 124, A: 255},
	"S": {R: 255, G: 112, B: 66, A: 255},
	"T": {R: 184, G: 76, B: 0, A: 255},
	"V": {R: 255, G: 140, B: 255, A: 255},
	"W": {R: 79, G: 70, B: 0, A: 255},
	"Y": {R: 140, G: 112, B: 76, A: 255},

	OtherResidue: {R: 190, G: 190, B: 190, A: 255},
}

// ResidueColor returns the fixed chart color for a residue code,
// falling back to the ambiguous bucket's color.
func ResidueColor(residue string) color.RGBA {
	if c, ok := residueColors[residue]; ok {
		return c
	}
	return residueColors[OtherResidue]
}

// PlotCmd is the cobra handler for the plot command: it reads a
// serialized analysis summary and renders the charts beside it.
func PlotCmd(cmd *cobra.Command, args []string) {
	flags := parsePlotFlags(cmd)

	data, err := os.ReadFile(flags.in)
	if err != nil {
		stderr.Fatalln(err)
	}
	summary := &Summary{}
	if err := json.Unmarshal(data, summary); err != nil {
		stderr.Fatalln(fmt.Errorf("parsing %s: %w", flags.in, err))
	}

	out := flags.out
	if out == "" {
		out = filepath.Dir(flags.in)
	}
	if err := RenderCharts(summary, out); err != nil {
		stderr.Fatalln(err)
	}
	stderr.Printf("[DONE] Charts written to %s", out)
}

// RenderCharts writes the run-length distribution, per-family fraction
// and X-residue composition charts as PNGs under out.
func RenderCharts(summary *Summary, out string) error {
	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}
	if err := runLengthChart(summary, filepath.Join(out, "run_lengths.png")); err != nil {
		return err
	}
	if err := familyFractionChart(summary, filepath.Join(out, "serine_fractions.png")); err != nil {
		return err
	}
	return xCompositionChart(summary, filepath.Join(out, "x_composition.png"))
}

// runLengthChart is a bar chart of global run counts per run length n.
func runLengthChart(summary *Summary, path string) error {
	p := plot.New()
	p.Title.Text = "[SX]_n Run Length Distribution"
	p.X.Label.Text = "Run Length (n)"
	p.Y.Label.Text = "Run Count"

	var nValues []int
	for n := range summary.Global.RunCounts {
		nValues = append(nValues, n)
	}
	sort.Ints(nValues)

	values := make(plotter.Values, len(nValues))
	labels := make([]string, len(nValues))
	for i, n := range nValues {
		values[i] = float64(summary.Global.RunCounts[n])
		labels[i] = fmt.Sprint(n)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(16))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 50, G: 100, B: 200, A: 255}
	p.Add(bars)
	p.NominalX(labels...)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// familyFractionChart compares mean serine and motif-coverage fractions
// per family.
func familyFractionChart(summary *Summary, path string) error {
	p := plot.New()
	p.Title.Text = "Serine and Motif Coverage by Family"
	p.Y.Label.Text = "Fraction of Residues (%)"

	type familyAgg struct {
		name              string
		serines, residues int
		motifResidues     int
	}
	var families []*familyAgg
	index := map[string]*familyAgg{}
	for _, rec := range sortRecords(summary.Records) {
		agg := index[rec.Family]
		if agg == nil {
			agg = &familyAgg{name: rec.Family}
			index[rec.Family] = agg
			families = append(families, agg)
		}
		agg.serines += rec.SerineCount
		agg.residues += rec.Length
		agg.motifResidues += rec.MotifResidues
	}

	serine := make(plotter.Values, len(families))
	coverage := make(plotter.Values, len(families))
	labels := make([]string, len(families))
	for i, agg := range families {
		if agg.residues > 0 {
			serine[i] = 100 * float64(agg.serines) / float64(agg.residues)
			coverage[i] = 100 * float64(agg.motifResidues) / float64(agg.residues)
		}
		labels[i] = agg.name
	}

	w := vg.Points(12)
	serineBars, err := plotter.NewBarChart(serine, w)
	if err != nil {
		return err
	}
	serineBars.Color = ResidueColor("S")
	serineBars.Offset = -w / 2

	coverageBars, err := plotter.NewBarChart(coverage, w)
	if err != nil {
		return err
	}
	coverageBars.Color = color.RGBA{R: 50, G: 100, B: 200, A: 255}
	coverageBars.Offset = w / 2

	p.Add(serineBars, coverageBars)
	p.Legend.Add("Serine", serineBars)
	p.Legend.Add("[SX]_n Coverage", coverageBars)
	p.Legend.Top = true
	p.NominalX(labels...)

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}

// xCompositionChart shows the global X-position residue composition
// across all run lengths, one fixed-color bar per residue.
func xCompositionChart(summary *Summary, path string) error {
	p := plot.New()
	p.Title.Text = "X-Residue Composition Across All Runs"
	p.X.Label.Text = "Residue"
	p.Y.Label.Text = "Occurrences"

	totals := map[string]int{}
	for _, counts := range summary.Global.XCounts {
		for x, c := range counts {
			totals[x] += c
		}
	}
	residues := sortedKeys(totals)

	// one single-residue series per bar so each keeps its fixed color
	for i, residue := range residues {
		values := make(plotter.Values, len(residues))
		values[i] = float64(totals[residue])
		bars, err := plotter.NewBarChart(values, vg.Points(14))
		if err != nil {
			return err
		}
		bars.Color = ResidueColor(residue)
		p.Add(bars)
	}
	p.NominalX(residues...)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
