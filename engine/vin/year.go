package vin

import "strings"

// Resolvable model years are clamped to [minResolvableYear, maxResolvableYear],
// so 0 never denotes a resolved year and the arithmetic below cannot overflow.
const (
	minResolvableYear = 1
	maxResolvableYear = 9999
)

// YearOptions bounds and anchors model-year resolution.
type YearOptions struct {
	// CurrentYear is the anchor; the candidate closest to it wins.
	CurrentYear int
	// MinYear and MaxYear bound the accepted candidates (inclusive).
	MinYear int
	MaxYear int
}

// ResolveModelYear maps a position-10 year code to a calendar year. The code
// repeats every 30 years; among the cycles inside [MinYear, MaxYear] the year
// closest to CurrentYear is returned and on a tie the earlier year wins. The
// bounds are clamped to years 1..9999. ok is false when code is not a year
// code or no cycle falls inside the range.
func ResolveModelYear(code byte, opts YearOptions) (int, bool) {
	idx := strings.IndexByte(yearCodes, code)
	if idx < 0 {
		return 0, false
	}
	lo := max(opts.MinYear, minResolvableYear)
	hi := min(opts.MaxYear, maxResolvableYear)
	if lo > hi {
		return 0, false
	}
	base := baseModelYear + idx

	first := firstCandidate(base, lo)
	if first > hi {
		return 0, false
	}
	last := first + (hi-first)/yearCycle*yearCycle

	// Candidates are first, first+30, ..., last; look at the two around the anchor.
	anchor := min(max(opts.CurrentYear, first), last)
	below := first + (anchor-first)/yearCycle*yearCycle
	above := below + yearCycle
	if below == anchor || above > last || anchor-below <= above-anchor {
		return below, true
	}
	return above, true
}

// firstCandidate returns the smallest base+30k that is >= lo.
func firstCandidate(base, lo int) int {
	k := floorDiv(lo-base, yearCycle)
	y := base + k*yearCycle
	if y < lo {
		y += yearCycle
	}
	return y
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
