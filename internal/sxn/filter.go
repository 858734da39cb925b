package sxn

import "strings"

// Filter narrows a record collection before aggregation. It is a
// pre-filter over the inputs: the aggregator itself never sees or keys
// on filter state.
type Filter struct {
	// TaxonomyTerm keeps records whose lineage or organism contains the
	// term, case-insensitively
	TaxonomyTerm string

	// MinLength/MaxLength bound the sequence length; zero means unbounded
	MinLength int
	MaxLength int

	// LongestFactor keeps sequences at least factor * longest-in-scope
	// long; zero disables the ratio filter
	LongestFactor float64

	// PerSpecies scopes the longest-in-scope reference to each organism
	// instead of the whole collection
	PerSpecies bool
}

// empty reports whether the filter would keep everything.
func (f *Filter) empty() bool {
	return f == nil ||
		(f.TaxonomyTerm == "" && f.MinLength == 0 && f.MaxLength == 0 && f.LongestFactor == 0)
}

// matchesTaxonomy checks the term against the organism name and every
// lineage node.
func (f *Filter) matchesTaxonomy(rec *Record) bool {
	term := strings.ToLower(f.TaxonomyTerm)
	if strings.Contains(strings.ToLower(rec.Organism), term) {
		return true
	}
	for _, name := range rec.Lineage() {
		if strings.Contains(strings.ToLower(name), term) {
			return true
		}
	}
	return false
}

// Apply returns the records passing the filter, in input order.
func (f *Filter) Apply(records []*Record) []*Record {
	if f.empty() {
		return records
	}

	kept := make([]*Record, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		n := len(rec.Seq())
		if f.TaxonomyTerm != "" && !f.matchesTaxonomy(rec) {
			continue
		}
		if f.MinLength > 0 && n < f.MinLength {
			continue
		}
		if f.MaxLength > 0 && n > f.MaxLength {
			continue
		}
		kept = append(kept, rec)
	}

	if f.LongestFactor <= 0 {
		return kept
	}

	// longest sequence per scope: global, or per organism
	longest := map[string]int{}
	scope := func(rec *Record) string {
		if f.PerSpecies {
			return rec.Organism
		}
		return ""
	}
	for _, rec := range kept {
		if n := len(rec.Seq()); n > longest[scope(rec)] {
			longest[scope(rec)] = n
		}
	}

	out := kept[:0]
	for _, rec := range kept {
		threshold := f.LongestFactor * float64(longest[scope(rec)])
		if float64(len(rec.Seq())) >= threshold {
			out = append(out, rec)
		}
	}
	return out
}
