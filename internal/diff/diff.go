package diff

import "strings"

// Op indicates how a diff entry relates the two sides of an alignment.
type Op uint8

const (
	// OpMatch indicates a line present in both sequences.
	OpMatch Op = iota

	// OpDelete indicates a line present only in the A (old) sequence.
	OpDelete

	// OpInsert indicates a line present only in the B (new) sequence.
	OpInsert
)

// String returns a human-readable representation of the op.
func (op Op) String() string {
	switch op {
	case OpMatch:
		return "match"
	case OpDelete:
		return "delete"
	case OpInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Entry is a single element of an alignment.
//
// AIndex is -1 for OpInsert entries and BIndex is -1 for OpDelete entries;
// both are set for OpMatch.
type Entry struct {
	Op     Op
	AIndex int
	BIndex int
	Line   string
}

// Lines splits text into lines for diffing.
// The final line is included even when it has no trailing newline;
// a trailing newline yields a final empty line, so that offsets computed
// by LineOffsets round-trip to the original text.
func Lines(text string) []string {
	return strings.Split(text, "\n")
}

// Diff aligns two line sequences and returns the ordered entry list.
// The result partitions both inputs completely and exactly once each.
func Diff(a, b []string) []Entry {
	return align(a, b, 0, 0)
}

// align is the recursive patience alignment over a span of each input.
// aOff and bOff are the absolute indexes of a[0] and b[0] in the original
// sequences. Each call returns a fresh slice; no state is shared across
// recursive calls.
func align(a, b []string, aOff, bOff int) []Entry {
	out := make([]Entry, 0, max(len(a), len(b)))

	// Trim common prefix.
	for len(a) > 0 && len(b) > 0 && a[0] == b[0] {
		out = append(out, Entry{Op: OpMatch, AIndex: aOff, BIndex: bOff, Line: a[0]})
		a, b = a[1:], b[1:]
		aOff++
		bOff++
	}

	// Trim common suffix; emitted after the middle section.
	var tail []Entry
	for len(a) > 0 && len(b) > 0 && a[len(a)-1] == b[len(b)-1] {
		tail = append(tail, Entry{
			Op:     OpMatch,
			AIndex: aOff + len(a) - 1,
			BIndex: bOff + len(b) - 1,
			Line:   a[len(a)-1],
		})
		a = a[:len(a)-1]
		b = b[:len(b)-1]
	}

	anchors := patienceAnchors(a, b)
	if len(anchors) == 0 {
		// No unique common lines: everything left is a delete run
		// followed by an insert run.
		for i, line := range a {
			out = append(out, Entry{Op: OpDelete, AIndex: aOff + i, BIndex: -1, Line: line})
		}
		for j, line := range b {
			out = append(out, Entry{Op: OpInsert, AIndex: -1, BIndex: bOff + j, Line: line})
		}
	} else {
		prevA, prevB := 0, 0
		for _, an := range anchors {
			out = append(out, align(a[prevA:an.a], b[prevB:an.b], aOff+prevA, bOff+prevB)...)
			out = append(out, Entry{Op: OpMatch, AIndex: aOff + an.a, BIndex: bOff + an.b, Line: a[an.a]})
			prevA, prevB = an.a+1, an.b+1
		}
		out = append(out, align(a[prevA:], b[prevB:], aOff+prevA, bOff+prevB)...)
	}

	// Suffix matches were collected back-to-front.
	for i := len(tail) - 1; i >= 0; i-- {
		out = append(out, tail[i])
	}
	return out
}

// anchor pairs a span-relative index in A with one in B.
type anchor struct {
	a, b int
}

// patienceAnchors returns the longest sequence of unique-common-line pairs
// that is increasing in both the A and B indexes.
func patienceAnchors(a, b []string) []anchor {
	candidates := uniqueCommon(a, b)
	return longestIncreasing(candidates)
}

// uniqueCommon finds lines occurring exactly once in a and exactly once in b.
// A line repeated anywhere within either span is excluded entirely.
// Candidates are returned in increasing A-index order.
func uniqueCommon(a, b []string) []anchor {
	aCount := make(map[string]int, len(a))
	for _, line := range a {
		aCount[line]++
	}

	bCount := make(map[string]int, len(b))
	bIndex := make(map[string]int, len(b))
	for j, line := range b {
		bCount[line]++
		bIndex[line] = j
	}

	var candidates []anchor
	for i, line := range a {
		if aCount[line] == 1 && bCount[line] == 1 {
			candidates = append(candidates, anchor{a: i, b: bIndex[line]})
		}
	}
	return candidates
}

// longestIncreasing computes the longest subsequence of candidates whose
// B-indexes are strictly increasing, using patience sorting with binary
// pile search. Candidates must already be in increasing A-index order.
func longestIncreasing(candidates []anchor) []anchor {
	if len(candidates) == 0 {
		return nil
	}

	// tops[k] is the candidate index on top of pile k.
	tops := make([]int, 0, len(candidates))
	prev := make([]int, len(candidates))

	for i, c := range candidates {
		// First pile whose top has a B-index >= c.b.
		lo, hi := 0, len(tops)
		for lo < hi {
			mid := (lo + hi) / 2
			if candidates[tops[mid]].b < c.b {
				lo = mid + 1
			} else {
				hi = mid
			}
		}

		if lo > 0 {
			prev[i] = tops[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tops) {
			tops = append(tops, i)
		} else {
			tops[lo] = i
		}
	}

	// Walk back-pointers from the top of the last pile.
	result := make([]anchor, len(tops))
	at := tops[len(tops)-1]
	for k := len(tops) - 1; k >= 0; k-- {
		result[k] = candidates[at]
		at = prev[at]
	}
	return result
}
