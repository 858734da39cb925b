package sxn

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_RenderCharts(t *testing.T) {
	out := t.TempDir()
	summary := summaryFixture(t)

	if err := RenderCharts(summary, out); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"run_lengths.png", "serine_fractions.png", "x_composition.png"} {
		info, err := os.Stat(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("missing chart %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("chart %s is empty", name)
		}
	}
}

func Test_ResidueColor_fixed(t *testing.T) {
	// the serine color must never drift between runs or charts
	if ResidueColor("S") != residueColors["S"] {
		t.Fatal("serine color not stable")
	}
	if ResidueColor("S") == ResidueColor("G") {
		t.Fatal("distinct residues share a color")
	}

	// unknown codes fall back to the ambiguous bucket
	if ResidueColor("?") != residueColors[OtherResidue] {
		t.Fatal("unknown residue did not map to the other bucket")
	}

	for _, r := range standardResidues {
		if _, ok := residueColors[string(r)]; !ok {
			t.Fatalf("no fixed color for residue %q", string(r))
		}
	}
}
