package sxn

import (
	"sort"
	"strings"
)

// taxonomySep joins lineage names into a single comparable bucket key.
const taxonomySep = " > "

// GroupKey identifies an aggregation bucket.
type GroupKey struct {
	// Type is the canonical protein type ("heavy chain", "light chain", ...)
	Type string `json:"type"`

	// Band is partial, full or unknown
	Band string `json:"partial_full"`

	// Taxonomy is the lineage joined with " > "
	Taxonomy string `json:"taxonomy"`
}

// RecordResult pairs one record's metadata with its scan result.
type RecordResult struct {
	Accession string `json:"accession"`
	Title     string `json:"title,omitempty"`
	Organism  string `json:"organism"`

	Taxonomy []string `json:"taxonomy,omitempty"`

	// Suborder/Superfamily/Family are the conventional reporting ranks,
	// read positionally from the order-anchored lineage
	Suborder    string `json:"suborder"`
	Superfamily string `json:"superfamily"`
	Family      string `json:"family"`

	Type string `json:"type"`
	Band string `json:"partial_full"`

	Result
}

// Totals are running sums over a set of scan results. Fractions are
// derived once from the summed numerators and denominators, never
// averaged per record, so short sequences carry no extra weight.
type Totals struct {
	Sequences     int `json:"sequences"`
	Residues      int `json:"residues"`
	SerineCount   int `json:"serine_count"`
	TotalRuns     int `json:"total_runs"`
	MotifResidues int `json:"total_motif_residues"`

	RunCounts map[int]int            `json:"motif_runs"`
	XCounts   map[int]map[string]int `json:"x_residue_counts"`

	SerineFraction float64 `json:"serine_fraction"`
	MotifFraction  float64 `json:"fraction_motif_residues"`
}

func newTotals() *Totals {
	return &Totals{
		RunCounts: map[int]int{},
		XCounts:   map[int]map[string]int{},
	}
}

// add accumulates one scan result into the totals.
func (t *Totals) add(r *Result) {
	t.Sequences++
	t.Residues += r.Length
	t.SerineCount += r.SerineCount
	t.TotalRuns += r.TotalRuns
	t.MotifResidues += r.MotifResidues
	for n, c := range r.RunCounts {
		t.RunCounts[n] += c
	}
	for n, counts := range r.XCounts {
		dst := t.XCounts[n]
		if dst == nil {
			dst = map[string]int{}
			t.XCounts[n] = dst
		}
		for x, c := range counts {
			dst[x] += c
		}
	}
}

// finish derives the aggregate fractions from the summed counts.
func (t *Totals) finish() {
	if t.Residues > 0 {
		t.SerineFraction = float64(t.SerineCount) / float64(t.Residues)
		t.MotifFraction = float64(t.MotifResidues) / float64(t.Residues)
	}
}

// Group is one (type, band, taxonomy) bucket.
type Group struct {
	Key     GroupKey        `json:"key"`
	Records []*RecordResult `json:"records"`
	Totals  *Totals         `json:"totals"`
}

// SpeciesInfo is the per-organism roll-up.
type SpeciesInfo struct {
	Taxonomy []string       `json:"taxonomy,omitempty"`
	Types    []string       `json:"types"`
	Bands    map[string]int `json:"partial_full_counts"`
	Totals   *Totals        `json:"totals"`

	typeSet map[string]bool
}

// Summary is the complete outcome of one aggregation pass.
type Summary struct {
	MinN int `json:"min_n"`
	MaxN int `json:"max_n"`

	// Processed and Skipped partition the input collection; a skipped
	// record lacked its sequence field entirely
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`

	Records []*RecordResult `json:"analyzed_records"`

	// Groups in first-insertion order, for stable reporting
	Groups []*Group `json:"groups"`

	TypeCounts map[string]int          `json:"type_counts"`
	Species    map[string]*SpeciesInfo `json:"species"`

	Global *Totals `json:"global"`

	groupIndex map[GroupKey]*Group
}

// rankOrDefault reads a positional rank from an order-anchored lineage.
func rankOrDefault(lineage []string, idx int, fallback string) string {
	if idx < len(lineage) {
		return lineage[idx]
	}
	return fallback
}

// Aggregate scans every record and files the results into (type, band,
// taxonomy) buckets plus species and global roll-ups. The bounds are
// validated before any record is touched: callers get either a complete
// summary with a skip tally, or a configuration error, never a partial
// summary. Records are independent, so the bucket totals hold for any
// processing order.
func Aggregate(records []*Record, minN, maxN int) (*Summary, error) {
	if err := validBounds(minN, maxN); err != nil {
		return nil, err
	}

	s := &Summary{
		MinN:       minN,
		MaxN:       maxN,
		TypeCounts: map[string]int{},
		Species:    map[string]*SpeciesInfo{},
		Global:     newTotals(),
		groupIndex: map[GroupKey]*Group{},
	}

	for _, rec := range records {
		if rec == nil || !rec.HasSequence() {
			s.Skipped++
			continue
		}

		// validated bounds cannot fail here
		res, err := Scan(rec.Seq(), minN, maxN)
		if err != nil {
			return nil, err
		}

		lineage := rec.Lineage()
		typ := rec.Type
		if typ == "" {
			typ = "unknown"
		}
		organism := rec.Organism
		if organism == "" {
			organism = "Unknown organism"
		}

		rr := &RecordResult{
			Accession:   rec.Accession,
			Title:       rec.Title,
			Organism:    organism,
			Taxonomy:    lineage,
			Suborder:    rankOrDefault(lineage, 1, "Unknown suborder"),
			Superfamily: rankOrDefault(lineage, 2, "Unknown superfamily"),
			Family:      rankOrDefault(lineage, 3, "Unknown family"),
			Type:        typ,
			Band:        rec.Band(),
			Result:      *res,
		}
		s.Records = append(s.Records, rr)
		s.Processed++

		key := GroupKey{Type: typ, Band: rr.Band, Taxonomy: strings.Join(lineage, taxonomySep)}
		group := s.groupIndex[key]
		if group == nil {
			group = &Group{Key: key, Totals: newTotals()}
			s.groupIndex[key] = group
			s.Groups = append(s.Groups, group)
		}
		group.Records = append(group.Records, rr)
		group.Totals.add(res)

		s.TypeCounts[typ]++
		s.Global.add(res)

		sp := s.Species[organism]
		if sp == nil {
			sp = &SpeciesInfo{
				Taxonomy: lineage,
				Bands:    map[string]int{},
				Totals:   newTotals(),
				typeSet:  map[string]bool{},
			}
			s.Species[organism] = sp
		}
		sp.Bands[rr.Band]++
		sp.Totals.add(res)
		sp.typeSet[typ] = true
	}

	for _, group := range s.Groups {
		group.Totals.finish()
	}
	for _, sp := range s.Species {
		sp.Totals.finish()
		sp.Types = make([]string, 0, len(sp.typeSet))
		for typ := range sp.typeSet {
			sp.Types = append(sp.Types, typ)
		}
		sort.Strings(sp.Types)
	}
	s.Global.finish()

	return s, nil
}
