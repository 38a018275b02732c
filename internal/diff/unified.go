package diff

import (
	"strconv"
	"strings"
)

// DefaultContext is the number of unchanged lines shown around each change
// in unified output.
const DefaultContext = 3

// HasChanges reports whether the alignment contains any non-match entry.
func HasChanges(entries []Entry) bool {
	for _, e := range entries {
		if e.Op != OpMatch {
			return true
		}
	}
	return false
}

// Stats returns the number of deleted and inserted lines in an alignment.
func Stats(entries []Entry) (deleted, inserted int) {
	for _, e := range entries {
		switch e.Op {
		case OpDelete:
			deleted++
		case OpInsert:
			inserted++
		}
	}
	return deleted, inserted
}

// Unified renders an alignment in unified diff format with the given number
// of context lines. Returns the empty string when there are no changes.
func Unified(aName, bName string, entries []Entry, context int) string {
	if !HasChanges(entries) {
		return ""
	}
	if context < 0 {
		context = DefaultContext
	}

	var sb strings.Builder
	sb.WriteString("--- ")
	sb.WriteString(aName)
	sb.WriteString("\n+++ ")
	sb.WriteString(bName)
	sb.WriteString("\n")

	for _, h := range hunks(entries, context) {
		sb.WriteString("@@ -")
		sb.WriteString(strconv.Itoa(h.aStart + 1))
		sb.WriteString(",")
		sb.WriteString(strconv.Itoa(h.aCount))
		sb.WriteString(" +")
		sb.WriteString(strconv.Itoa(h.bStart + 1))
		sb.WriteString(",")
		sb.WriteString(strconv.Itoa(h.bCount))
		sb.WriteString(" @@\n")

		for _, e := range h.entries {
			switch e.Op {
			case OpMatch:
				sb.WriteString(" ")
			case OpDelete:
				sb.WriteString("-")
			case OpInsert:
				sb.WriteString("+")
			}
			sb.WriteString(e.Line)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func aIndexOf(e Entry) int { return e.AIndex }
func bIndexOf(e Entry) int { return e.BIndex }

// precedingIndex returns the last line index of one side seen in entries, or
// -1 when no line of that side precedes the hunk. Rendered as index+1, that
// is the unified position of an empty range.
func precedingIndex(entries []Entry, indexOf func(Entry) int) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if idx := indexOf(entries[i]); idx >= 0 {
			return idx
		}
	}
	return -1
}

// hunk is a group of entries around one or more nearby edit blocks.
type hunk struct {
	aStart, aCount int
	bStart, bCount int
	entries        []Entry
}

// hunks groups the entry list into unified hunks, merging changes whose
// surrounding context would overlap.
func hunks(entries []Entry, context int) []hunk {
	// Index ranges of non-match runs within the entry list.
	type run struct{ lo, hi int }
	var runs []run
	for i := 0; i < len(entries); {
		if entries[i].Op == OpMatch {
			i++
			continue
		}
		lo := i
		for i < len(entries) && entries[i].Op != OpMatch {
			i++
		}
		runs = append(runs, run{lo: lo, hi: i})
	}
	if len(runs) == 0 {
		return nil
	}

	// Expand each run by context and merge overlapping windows.
	var windows []run
	for _, r := range runs {
		lo := r.lo - context
		if lo < 0 {
			lo = 0
		}
		hi := r.hi + context
		if hi > len(entries) {
			hi = len(entries)
		}
		if n := len(windows); n > 0 && lo <= windows[n-1].hi {
			if hi > windows[n-1].hi {
				windows[n-1].hi = hi
			}
			continue
		}
		windows = append(windows, run{lo: lo, hi: hi})
	}

	result := make([]hunk, 0, len(windows))
	for _, w := range windows {
		h := hunk{aStart: -1, bStart: -1, entries: entries[w.lo:w.hi]}
		for _, e := range h.entries {
			if e.AIndex >= 0 {
				if h.aStart < 0 {
					h.aStart = e.AIndex
				}
				h.aCount++
			}
			if e.BIndex >= 0 {
				if h.bStart < 0 {
					h.bStart = e.BIndex
				}
				h.bCount++
			}
		}
		// A hunk with no lines on one side positions at the line before
		// the change, rendered as 0 when the change is at the start.
		if h.aCount == 0 {
			h.aStart = precedingIndex(entries[:w.lo], aIndexOf)
		}
		if h.bCount == 0 {
			h.bStart = precedingIndex(entries[:w.lo], bIndexOf)
		}
		result = append(result, h)
	}
	return result
}
