package sxn

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidConfig is returned when the scan bounds are unusable. It is
// raised before any sequence is touched.
var ErrInvalidConfig = errors.New("invalid scan configuration")

// Serine is the fixed residue at every even offset of a motif run.
const Serine = 'S'

// OtherResidue is the composition bucket for residue codes outside the
// standard 20-letter alphabet (ambiguity codes, stops, gaps).
const OtherResidue = "other"

// standardResidues are the one-letter codes of the 20 proteinogenic
// amino acids.
const standardResidues = "ACDEFGHIKLMNPQRSTVWY"

// Run is one detected occurrence of (Serine, X) repeated N times.
type Run struct {
	// Start is the 0-based offset of the first serine
	Start int `json:"start"`

	// N is the repeat count; the run spans 2*N residues
	N int `json:"n"`

	// X holds the N residues observed at the X positions, in order
	X string `json:"x"`
}

// End is the exclusive end offset of the run's span.
func (r Run) End() int { return r.Start + 2*r.N }

// Result holds the per-sequence outcome of a motif scan.
type Result struct {
	// Length of the scanned sequence
	Length int `json:"length"`

	// SerineCount is the number of serines anywhere in the sequence,
	// motif member or not
	SerineCount int `json:"serine_count"`

	// SerineFraction is SerineCount / Length (0 for an empty sequence)
	SerineFraction float64 `json:"serine_fraction"`

	// Runs are the accepted motif runs in start-offset order
	Runs []Run `json:"runs"`

	// RunCounts maps run length n to the number of runs of that length
	RunCounts map[int]int `json:"motif_runs"`

	// XCounts maps run length n to counts of residues observed at the
	// X positions of runs with that length. Non-standard codes are
	// tallied under OtherResidue.
	XCounts map[int]map[string]int `json:"x_residue_counts"`

	// TotalRuns is the number of accepted runs of any length
	TotalRuns int `json:"total_runs"`

	// MotifResidues is the number of residues covered by runs
	MotifResidues int `json:"total_motif_residues"`

	// MotifFraction is MotifResidues / Length (0 for an empty sequence)
	MotifFraction float64 `json:"fraction_motif_residues"`
}

// validBounds rejects bounds that indicate a programming or config
// mistake rather than data variability.
func validBounds(minN, maxN int) error {
	if minN <= 0 || maxN <= 0 {
		return fmt.Errorf("%w: bounds must be positive, got min_n=%d max_n=%d", ErrInvalidConfig, minN, maxN)
	}
	if minN > maxN {
		return fmt.Errorf("%w: min_n=%d exceeds max_n=%d", ErrInvalidConfig, minN, maxN)
	}
	return nil
}

// xBucket maps a residue at an X position to its composition table key.
func xBucket(residue byte) string {
	if strings.IndexByte(standardResidues, residue) >= 0 {
		return string(residue)
	}
	return OtherResidue
}

// Scan finds all maximal non-overlapping [SX]_n runs in seq for n in
// [minN, maxN], longest lengths first. A longer run blocks every shorter
// run it overlaps, so the final composition is deterministic. The scan is
// a pure function: same sequence and bounds, same Result.
func Scan(seq string, minN, maxN int) (*Result, error) {
	if err := validBounds(minN, maxN); err != nil {
		return nil, err
	}

	seq = strings.ToUpper(seq)
	res := &Result{
		Length:    len(seq),
		RunCounts: map[int]int{},
		XCounts:   map[int]map[string]int{},
	}

	for i := 0; i < len(seq); i++ {
		if seq[i] == Serine {
			res.SerineCount++
		}
	}

	// consumed marks positions claimed by an accepted (longer) run;
	// they are never re-examined at shorter lengths
	consumed := make([]bool, len(seq))

	for n := maxN; n >= minN; n-- {
		span := 2 * n
		for i := 0; i+span <= len(seq); {
			if !runAt(seq, consumed, i, n) {
				i++
				continue
			}

			var x strings.Builder
			for k := 0; k < span; k++ {
				consumed[i+k] = true
				if k%2 == 1 {
					x.WriteByte(seq[i+k])
				}
			}

			run := Run{Start: i, N: n, X: x.String()}
			res.Runs = append(res.Runs, run)
			res.RunCounts[n]++
			res.TotalRuns++
			res.MotifResidues += span

			counts := res.XCounts[n]
			if counts == nil {
				counts = map[string]int{}
				res.XCounts[n] = counts
			}
			for k := 0; k < n; k++ {
				counts[xBucket(run.X[k])]++
			}

			i += span
		}
	}

	sort.Slice(res.Runs, func(i, j int) bool {
		return res.Runs[i].Start < res.Runs[j].Start
	})

	if res.Length > 0 {
		res.SerineFraction = float64(res.SerineCount) / float64(res.Length)
		res.MotifFraction = float64(res.MotifResidues) / float64(res.Length)
	}
	return res, nil
}

// runAt reports whether an unconsumed [SX]_n run starts at offset i.
// Serine is required at every even position; any residue, standard or
// not, satisfies an X position.
func runAt(seq string, consumed []bool, i, n int) bool {
	for k := 0; k < 2*n; k++ {
		if consumed[i+k] {
			return false
		}
		if k%2 == 0 && seq[i+k] != Serine {
			return false
		}
	}
	return true
}
