package sxn

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Partial/full bands as they appear in record metadata and on disk.
const (
	BandPartial = "partial"
	BandFull    = "full"
	BandUnknown = "unknown"
)

// Record is one protein sequence pulled from NCBI, as stored in the
// per-accession JSON files. Field tags match the record layout the
// original scraper produced, so a data root is shared between tools.
type Record struct {
	Accession   string `json:"accession"`
	Title       string `json:"title,omitempty"`
	FamilyQuery string `json:"family_query,omitempty"`
	ProteinTerm string `json:"protein_term,omitempty"`
	Organism    string `json:"organism_name,omitempty"`

	// TaxonomyFull is the complete GenBank lineage; TaxonomyFromOrder
	// starts at the anchor order (e.g. Araneae or Lepidoptera)
	TaxonomyFull      []string `json:"taxonomy_full,omitempty"`
	TaxonomyFromOrder []string `json:"taxonomy_from_order,omitempty"`

	SequenceLength int `json:"sequence_length,omitempty"`

	// Sequence is nil when the record file carried no origin_sequence
	// at all; that is a malformed record, distinct from an empty one
	Sequence *string `json:"origin_sequence,omitempty"`

	PartialFull string `json:"partial_full,omitempty"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"ncbi_url,omitempty"`
}

// Seq returns the raw sequence, or "" when the field is missing.
func (r *Record) Seq() string {
	if r.Sequence == nil {
		return ""
	}
	return *r.Sequence
}

// HasSequence reports whether the record carries a sequence field,
// even an empty one.
func (r *Record) HasSequence() bool { return r.Sequence != nil }

// Band normalizes the partial/full flag to one of the band constants.
func (r *Record) Band() string {
	switch strings.ToLower(r.PartialFull) {
	case BandPartial:
		return BandPartial
	case BandFull:
		return BandFull
	}
	return BandUnknown
}

// Lineage picks the order-anchored taxonomy when present, falling back
// to the full lineage.
func (r *Record) Lineage() []string {
	if len(r.TaxonomyFromOrder) > 0 {
		return r.TaxonomyFromOrder
	}
	return r.TaxonomyFull
}

// treeFileName is the phylo tree artifact; it sits in the same root as
// the record files and must be skipped when loading records.
const treeFileName = "phylo_tree.json"

var (
	unsafeChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	spaceRuns   = regexp.MustCompile(`\s+`)
	scoreRuns   = regexp.MustCompile(`_+`)
)

// safeFilename turns a taxonomy or species name into a filesystem-safe,
// length-capped path segment.
func safeFilename(name string) string {
	const maxLen = 80
	cleaned := unsafeChars.ReplaceAllString(name, "")
	cleaned = spaceRuns.ReplaceAllString(cleaned, "_")
	cleaned = strings.Trim(scoreRuns.ReplaceAllString(cleaned, "_"), "_")
	if len(cleaned) > maxLen {
		cleaned = cleaned[:maxLen]
	}
	return strings.ToLower(cleaned)
}

// safeJoin joins path parts under base, abbreviating a part with a short
// hash when the accumulated path would exceed maxLength. Long spider
// lineages overflow Windows path limits otherwise.
func safeJoin(base string, parts []string) string {
	const maxLength = 240
	path := base
	for _, part := range parts {
		candidate := filepath.Join(path, part)
		if len(candidate) >= maxLength {
			h := fnv.New32a()
			h.Write([]byte(part))
			short := fmt.Sprintf("%s_%x", part[:min(16, len(part))], h.Sum32()&0xFFFF)
			candidate = filepath.Join(path, strings.Trim(short, "_"))
		}
		path = candidate
	}
	return path
}

// recordDir is the directory a record's files belong in:
// root / lineage... / species / band / type.
func recordDir(root string, rec *Record) string {
	nodes := append([]string{}, rec.Lineage()...)
	nodes = append(nodes, rec.Organism, rec.Band(), rec.Type)
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = safeFilename(n)
	}
	return safeJoin(root, parts)
}

// writeRecord saves a record as <accession>.json plus a human-readable
// <accession>.md under its taxonomy directory.
func writeRecord(root string, rec *Record) error {
	dir := recordDir(root, rec)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if err = os.WriteFile(filepath.Join(dir, rec.Accession+".json"), b, 0644); err != nil {
		return err
	}

	md := fmt.Sprintf(`# Protein Record

- Accession: `+"`%s`"+`
- Title: `+"`%s`"+`
- Query: `+"`%s %s`"+`
- Organism: `+"`%s`"+`
- Sequence length: `+"`%d`"+`
- Partial/Full: `+"`%s`"+`
- Type: `+"`%s`"+`
- NCBI URL: %s

## Taxonomy
%s

## ORIGIN
`+"```text\n%s\n```"+`
`,
		rec.Accession, rec.Title, rec.FamilyQuery, rec.ProteinTerm, rec.Organism,
		len(rec.Seq()), rec.Band(), rec.Type, rec.URL,
		strings.Join(rec.Lineage(), " > "), rec.Seq(),
	)
	return os.WriteFile(filepath.Join(dir, rec.Accession+".md"), []byte(md), 0644)
}

// LoadRecords walks root and reads every record JSON beneath it, skipping
// the phylo tree artifact. Files may hold a single record or a list.
// Records missing partial/full or type metadata inherit them from the
// enclosing <partial|full>/<type> directories. Unreadable files are
// skipped, matching the tolerant loader this replaces.
func LoadRecords(root string) ([]*Record, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("record root not found: %w", err)
	}

	var records []*Record
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if strings.EqualFold(d.Name(), treeFileName) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		var batch []*Record
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(data, &batch); err != nil {
				return nil
			}
		} else {
			rec := &Record{}
			if err := json.Unmarshal(data, rec); err != nil {
				return nil
			}
			batch = append(batch, rec)
		}

		// .../<partial|full>/<type>/<file.json>
		dir := filepath.Dir(path)
		typeGuess := filepath.Base(dir)
		bandGuess := filepath.Base(filepath.Dir(dir))

		for _, rec := range batch {
			if rec == nil || !rec.HasSequence() {
				continue
			}
			if bandGuess == BandPartial || bandGuess == BandFull {
				if rec.PartialFull == "" {
					rec.PartialFull = bandGuess
				}
				if rec.Type == "" {
					rec.Type = typeGuess
				}
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
