// Package text implements offset-preserving text rewriting primitives.
//
// The central operation is [SubstituteRanges], which replaces byte ranges of
// a string with new content in a single pass. Version bumping is built on
// top of it: scanners locate version strings as exact byte ranges and the
// release flow rewrites all of them without touching surrounding content,
// so comments, formatting and key order of the edited files survive.
package text

import (
	"fmt"
	"slices"
	"strings"
)

// SubstRange replaces the half-open range [Start, End) with Replacement.
// A range with Start == End is a pure insertion.
type SubstRange struct {
	Start       int
	End         int
	Replacement string
}

// RangeError describes an invalid entry in a substitution batch.
// Index refers to the position of the offending range after sorting.
type RangeError struct {
	Index   int
	Range   SubstRange
	Overlap bool // true when the range overlaps its predecessor
}

func (e *RangeError) Error() string {
	if e.Overlap {
		return fmt.Sprintf("invalid range at index %d: overlap with previous range", e.Index)
	}
	return fmt.Sprintf("invalid range at index %d: (start: %d, end: %d)", e.Index, e.Range.Start, e.Range.End)
}

// SubstituteRanges replaces the given ranges in text and returns the result.
// Ranges must not overlap; adjacent ranges (next.Start == prev.End) are fine.
// Unless presorted is true, ranges are sorted by Start first (stable, so
// equal-start ranges keep their input order). The input slice is not
// modified and text is never mutated in place.
//
// Returns a *RangeError when a range is reversed (End < Start) or starts
// before the previous range ended.
func SubstituteRanges(text string, ranges []SubstRange, presorted bool) (string, error) {
	if !presorted {
		sorted := slices.Clone(ranges)
		slices.SortStableFunc(sorted, func(a, b SubstRange) int { return a.Start - b.Start })
		ranges = sorted
	}

	var out strings.Builder
	cursor := 0
	for i, r := range ranges {
		if r.End < r.Start || r.Start < 0 {
			return "", &RangeError{Index: i, Range: r}
		}
		if r.Start < cursor {
			return "", &RangeError{Index: i, Range: r, Overlap: true}
		}
		if r.End > len(text) {
			return "", &RangeError{Index: i, Range: r}
		}
		out.WriteString(text[cursor:r.Start])
		out.WriteString(r.Replacement)
		cursor = r.End
	}
	out.WriteString(text[cursor:])
	return out.String(), nil
}
