package sxn

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func Test_Scan_longestFirst(t *testing.T) {
	// 5 SX repeats; the length-5 run must claim the whole sequence and
	// block every shorter run it overlaps
	res, err := Scan("SASASASASA", 2, 5)
	if err != nil {
		t.Fatal(err)
	}

	if res.TotalRuns != 1 {
		t.Fatalf("expected 1 run, got %d", res.TotalRuns)
	}
	if res.RunCounts[5] != 1 {
		t.Fatalf("expected one run of length 5, got %v", res.RunCounts)
	}
	for n := 2; n < 5; n++ {
		if res.RunCounts[n] != 0 {
			t.Fatalf("expected no runs of length %d, got %v", n, res.RunCounts)
		}
	}
	if res.MotifResidues != 10 || res.MotifFraction != 1.0 {
		t.Fatalf("expected full coverage, got %d residues (%.2f)", res.MotifResidues, res.MotifFraction)
	}
	if res.XCounts[5]["A"] != 5 {
		t.Fatalf("expected 5 A residues at X positions, got %v", res.XCounts)
	}
}

func Test_Scan_blocking(t *testing.T) {
	// the length-3 run "SASASA" is found first; the leftover "SB" then
	// yields a length-1 run
	res, err := Scan("SASASASB", 1, 3)
	if err != nil {
		t.Fatal(err)
	}

	if res.TotalRuns != 2 {
		t.Fatalf("expected 2 runs, got %d: %v", res.TotalRuns, res.Runs)
	}
	want := []Run{
		{Start: 0, N: 3, X: "AAA"},
		{Start: 6, N: 1, X: "B"},
	}
	if !reflect.DeepEqual(res.Runs, want) {
		t.Fatalf("runs = %v, want %v", res.Runs, want)
	}
	if res.RunCounts[3] != 1 || res.RunCounts[1] != 1 || res.RunCounts[2] != 0 {
		t.Fatalf("run counts = %v", res.RunCounts)
	}
}

func Test_Scan_serineStats(t *testing.T) {
	tests := []struct {
		name         string
		seq          string
		wantCount    int
		wantFraction float64
	}{
		{"empty", "", 0, 0},
		{"no serine", "GAGAGA", 0, 0},
		{"all serine", "SSSS", 4, 1.0},
		{"half serine", "SASA", 2, 0.5},
		{"lowercase input", "sasa", 2, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Scan(tt.seq, 1, 5)
			if err != nil {
				t.Fatal(err)
			}
			if res.SerineCount != tt.wantCount {
				t.Errorf("serine count = %d, want %d", res.SerineCount, tt.wantCount)
			}
			if res.SerineFraction != tt.wantFraction {
				t.Errorf("serine fraction = %v, want %v", res.SerineFraction, tt.wantFraction)
			}
		})
	}
}

func Test_Scan_emptyAndShort(t *testing.T) {
	for _, seq := range []string{"", "S", "SA", "GGG"} {
		res, err := Scan(seq, 2, 10)
		if err != nil {
			t.Fatalf("Scan(%q): %v", seq, err)
		}
		if res.TotalRuns != 0 || res.MotifResidues != 0 {
			t.Fatalf("Scan(%q): expected zero runs, got %+v", seq, res)
		}
		if res.MotifFraction != 0 {
			t.Fatalf("Scan(%q): expected zero coverage fraction, got %v", seq, res.MotifFraction)
		}
	}
}

func Test_Scan_invalidConfig(t *testing.T) {
	tests := []struct {
		name       string
		minN, maxN int
	}{
		{"inverted", 5, 3},
		{"zero min", 0, 3},
		{"zero max", 1, 0},
		{"negative", -2, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Scan("SASASA", tt.minN, tt.maxN); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func Test_Scan_nonOverlapAndCoverage(t *testing.T) {
	seqs := []string{
		"SASASASB",
		"SASASASASA",
		"GSASGSASASAGG",
		"SSSSSSSS",
		strings.Repeat("SA", 40) + "G" + strings.Repeat("SG", 3),
		"SXSXSZSB",
	}

	for _, seq := range seqs {
		res, err := Scan(seq, 1, 6)
		if err != nil {
			t.Fatal(err)
		}

		covered := 0
		prevEnd := -1
		for _, run := range res.Runs {
			if run.Start <= prevEnd {
				t.Fatalf("Scan(%q): runs overlap or are unordered: %v", seq, res.Runs)
			}
			prevEnd = run.End() - 1
			covered += 2 * run.N
		}

		if covered != res.MotifResidues {
			t.Fatalf("Scan(%q): run spans sum to %d, MotifResidues = %d", seq, covered, res.MotifResidues)
		}
		if res.MotifResidues > res.Length {
			t.Fatalf("Scan(%q): covered %d > length %d", seq, res.MotifResidues, res.Length)
		}
		if len(res.Runs) != res.TotalRuns {
			t.Fatalf("Scan(%q): %d runs listed, TotalRuns = %d", seq, len(res.Runs), res.TotalRuns)
		}
	}
}

func Test_Scan_deterministic(t *testing.T) {
	seq := "GSASGSASASAGGSSSSSASBSA"

	first, err := Scan(seq, 1, 8)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := Scan(seq, 1, 8)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("scan is not deterministic:\n%+v\n%+v", first, again)
		}
	}
}

func Test_Scan_ambiguousResidues(t *testing.T) {
	// X, B, Z and * are not standard codes; as X-position residues they
	// are tallied under the "other" bucket, never an error
	res, err := Scan("SXSBS*SA", 1, 4)
	if err != nil {
		t.Fatal(err)
	}

	if res.TotalRuns != 1 || res.RunCounts[4] != 1 {
		t.Fatalf("expected a single length-4 run, got %v", res.RunCounts)
	}
	counts := res.XCounts[4]
	if counts[OtherResidue] != 3 {
		t.Fatalf("expected 3 residues in the %q bucket, got %v", OtherResidue, counts)
	}
	if counts["A"] != 1 {
		t.Fatalf("expected 1 A at an X position, got %v", counts)
	}
}

func Test_Scan_serineAtXPosition(t *testing.T) {
	// a serine may itself occupy an X position
	res, err := Scan("SSSS", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalRuns != 1 || res.RunCounts[2] != 1 {
		t.Fatalf("expected one length-2 run over SSSS, got %v", res.RunCounts)
	}
	if res.XCounts[2]["S"] != 2 {
		t.Fatalf("expected serines counted at X positions, got %v", res.XCounts)
	}
}

func Test_Scan_resumesAfterAcceptedRun(t *testing.T) {
	// two disjoint length-2 runs separated by a non-matching residue
	res, err := Scan("SASAGSASA", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.RunCounts[2] != 2 {
		t.Fatalf("expected two length-2 runs, got %v", res.RunCounts)
	}
	if res.Runs[0].Start != 0 || res.Runs[1].Start != 5 {
		t.Fatalf("unexpected run offsets: %v", res.Runs)
	}
}
