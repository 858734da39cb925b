package sxn

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_writeRecord_roundTrip(t *testing.T) {
	root := t.TempDir()
	seq := "SASASAGG"
	rec := &Record{
		Accession:         "ABC123.1",
		Title:             "fibroin heavy chain, partial [Bombyx mori]",
		Organism:          "Bombyx mori",
		TaxonomyFromOrder: []string{"Lepidoptera", "Glossata", "Bombycoidea", "Bombycidae"},
		Sequence:          &seq,
		SequenceLength:    len(seq),
		PartialFull:       BandPartial,
		Type:              "Heavy Chain",
		URL:               "https://www.ncbi.nlm.nih.gov/protein/ABC123.1",
	}

	if err := writeRecord(root, rec); err != nil {
		t.Fatal(err)
	}

	// record lands under lineage/species/band/type
	wantDir := filepath.Join(root, "lepidoptera", "glossata", "bombycoidea", "bombycidae", "bombyx_mori", "partial", "heavy_chain")
	if _, err := os.Stat(filepath.Join(wantDir, "ABC123.1.json")); err != nil {
		t.Fatalf("record JSON not at expected path: %v", err)
	}
	if _, err := os.Stat(filepath.Join(wantDir, "ABC123.1.md")); err != nil {
		t.Fatalf("record Markdown not at expected path: %v", err)
	}

	records, err := LoadRecords(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Accession != rec.Accession || got.Seq() != seq || got.Band() != BandPartial {
		t.Fatalf("round-tripped record differs: %+v", got)
	}
}

func Test_LoadRecords_inferFromPath(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "araneae", "araneidae", "araneus_diadematus", "full", "heavy_chain")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	// no partial_full or type fields; they come from the directories
	data := `{"accession": "XYZ1", "organism_name": "Araneus diadematus", "origin_sequence": "SASASA"}`
	if err := os.WriteFile(filepath.Join(dir, "XYZ1.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := LoadRecords(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].PartialFull != BandFull || records[0].Type != "heavy_chain" {
		t.Fatalf("inferred band/type = %q/%q", records[0].PartialFull, records[0].Type)
	}
}

func Test_LoadRecords_skipsTreeAndJunk(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		treeFileName:   `{"araneae": {"__rank__": "order"}}`,
		"notes.json":   `{"comment": "no sequence here"}`,
		"broken.json":  `{not json`,
		"rec.json":     `{"accession": "OK1", "origin_sequence": "SASA", "partial_full": "full", "type": "other"}`,
		"ignored.txt":  "plain text",
		"batch.json":   `[{"accession": "OK2", "origin_sequence": "SGSG", "partial_full": "full", "type": "other"}, {"accession": "NOSEQ"}]`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	records, err := LoadRecords(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Accession != "OK1" && rec.Accession != "OK2" {
			t.Fatalf("unexpected record %q", rec.Accession)
		}
	}
}

func Test_LoadRecords_missingRoot(t *testing.T) {
	if _, err := LoadRecords(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected an error for a missing root")
	}
}

func Test_safeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bombyx mori", "bombyx_mori"},
		{`bad\/:*?"<>|chars`, "badchars"},
		{"  spaced   out  ", "spaced_out"},
		{strings.Repeat("x", 120), strings.Repeat("x", 80)},
	}
	for _, tt := range tests {
		if got := safeFilename(tt.in); got != tt.want {
			t.Errorf("safeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func Test_safeJoin_capsPathLength(t *testing.T) {
	long := strings.Repeat("verylongtaxon_", 10)
	path := safeJoin("/tmp/base", []string{long, long, long, long})
	if len(path) >= 240+len(long) {
		t.Fatalf("joined path not abbreviated: %d chars", len(path))
	}
}

func Test_Record_Band(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"partial", BandPartial},
		{"Full", BandFull},
		{"", BandUnknown},
		{"fragment", BandUnknown},
	}
	for _, tt := range tests {
		rec := &Record{PartialFull: tt.in}
		if got := rec.Band(); got != tt.want {
			t.Errorf("Band(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
