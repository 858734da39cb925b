package sxn

import (
	"reflect"
	"testing"
)

func Test_anchoredLineage_ranked(t *testing.T) {
	cache := map[string][]rankedName{
		"7091": {
			{Rank: "kingdom", Name: "Metazoa"},
			{Rank: "order", Name: "Lepidoptera"},
			{Rank: "suborder", Name: "Glossata"},
			{Rank: "superfamily", Name: "Bombycoidea"},
			{Rank: "family", Name: "Bombycidae"},
			{Rank: "genus", Name: "Bombyx"},
			{Rank: "species", Name: "Bombyx mori"},
		},
	}
	gp := genPept{Organism: "Bombyx mori", Taxonomy: []string{"Eukaryota", "Lepidoptera", "Bombycidae"}}

	lineage, ranks := anchoredLineage("7091", gp, "lepidoptera", "", cache)

	// only target ranks survive, starting at the order; species rank is
	// not a target rank and the kingdom precedes the anchor
	want := []string{"Lepidoptera", "Glossata", "Bombycoidea", "Bombycidae", "Bombyx"}
	if !reflect.DeepEqual(lineage, want) {
		t.Fatalf("lineage = %v, want %v", lineage, want)
	}
	if ranks["Bombycidae"] != "family" {
		t.Fatalf("ranks = %v", ranks)
	}
}

func Test_anchoredLineage_flatfileFallback(t *testing.T) {
	gp := genPept{
		Organism: "Araneus diadematus",
		Taxonomy: []string{"Eukaryota", "Metazoa", "Arthropoda", "Araneae", "Araneomorphae", "Araneidae", "Araneus"},
	}

	lineage, ranks := anchoredLineage("", gp, "araneae", "", map[string][]rankedName{})

	want := []string{"Araneae", "Araneomorphae", "Araneidae", "Araneus"}
	if !reflect.DeepEqual(lineage, want) {
		t.Fatalf("lineage = %v, want %v", lineage, want)
	}
	if ranks["Araneae"] != "order" || ranks["Araneus diadematus"] != "species" {
		t.Fatalf("ranks = %v", ranks)
	}
}

func Test_anchoredLineage_noAnchor(t *testing.T) {
	gp := genPept{Organism: "Homo sapiens", Taxonomy: []string{"Eukaryota", "Chordata", "Hominidae"}}

	lineage, _ := anchoredLineage("", gp, "araneae", "", map[string][]rankedName{})
	if lineage != nil {
		t.Fatalf("expected no lineage outside the order, got %v", lineage)
	}
}

func Test_dedupe(t *testing.T) {
	got := dedupe([]string{"A", "B", "A", "C", "B"})
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dedupe = %v, want %v", got, want)
	}
}

func Test_chunkSummaries(t *testing.T) {
	items := make([]docSummary, 5)
	chunks := chunkSummaries(items, 2)
	if len(chunks) != 3 || len(chunks[2]) != 1 {
		t.Fatalf("chunks = %d (last %d)", len(chunks), len(chunks[len(chunks)-1]))
	}
}
