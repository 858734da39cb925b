package sxn

import "testing"

func filterRecords() []*Record {
	return []*Record{
		testRecord("F1", "Bombyx mori", "heavy chain", "full", "SASASASASA", "Lepidoptera", "Glossata", "Bombycidae"),         // len 10
		testRecord("F2", "Bombyx mori", "heavy chain", "full", "SASA", "Lepidoptera", "Glossata", "Bombycidae"),               // len 4
		testRecord("F3", "Araneus diadematus", "other", "partial", "SGSGSGSG", "Araneae", "Araneomorphae", "Araneidae"),       // len 8
		testRecord("F4", "Araneus diadematus", "other", "partial", "SG", "Araneae", "Araneomorphae", "Araneidae"),             // len 2
	}
}

func accessions(records []*Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Accession
	}
	return out
}

func Test_Filter_empty(t *testing.T) {
	records := filterRecords()
	if got := (&Filter{}).Apply(records); len(got) != len(records) {
		t.Fatalf("empty filter dropped records: %v", accessions(got))
	}
	var nilFilter *Filter
	if got := nilFilter.Apply(records); len(got) != len(records) {
		t.Fatalf("nil filter dropped records: %v", accessions(got))
	}
}

func Test_Filter_taxonomyTerm(t *testing.T) {
	got := (&Filter{TaxonomyTerm: "araneae"}).Apply(filterRecords())
	if len(got) != 2 || got[0].Accession != "F3" || got[1].Accession != "F4" {
		t.Fatalf("kept %v", accessions(got))
	}

	// organism names match too
	got = (&Filter{TaxonomyTerm: "bombyx"}).Apply(filterRecords())
	if len(got) != 2 || got[0].Accession != "F1" {
		t.Fatalf("kept %v", accessions(got))
	}
}

func Test_Filter_lengthRange(t *testing.T) {
	got := (&Filter{MinLength: 4, MaxLength: 8}).Apply(filterRecords())
	if len(got) != 2 || got[0].Accession != "F2" || got[1].Accession != "F3" {
		t.Fatalf("kept %v", accessions(got))
	}
}

func Test_Filter_longestFactor_global(t *testing.T) {
	// longest in scope is 10; factor 0.6 keeps lengths >= 6
	got := (&Filter{LongestFactor: 0.6}).Apply(filterRecords())
	if len(got) != 2 || got[0].Accession != "F1" || got[1].Accession != "F3" {
		t.Fatalf("kept %v", accessions(got))
	}
}

func Test_Filter_longestFactor_perSpecies(t *testing.T) {
	// per species: Bombyx longest 10 keeps >= 6; Araneus longest 8 keeps >= 4.8
	got := (&Filter{LongestFactor: 0.6, PerSpecies: true}).Apply(filterRecords())
	if len(got) != 2 || got[0].Accession != "F1" || got[1].Accession != "F3" {
		t.Fatalf("kept %v", accessions(got))
	}

	// a lower factor keeps the short Bombyx sequence but not Araneus's
	got = (&Filter{LongestFactor: 0.3, PerSpecies: true}).Apply(filterRecords())
	if len(got) != 3 || got[1].Accession != "F2" {
		t.Fatalf("kept %v", accessions(got))
	}
}

func Test_Filter_combined(t *testing.T) {
	got := (&Filter{TaxonomyTerm: "Araneidae", MinLength: 3}).Apply(filterRecords())
	if len(got) != 1 || got[0].Accession != "F3" {
		t.Fatalf("kept %v", accessions(got))
	}
}
