// Package fold derives collapsible unchanged regions from the edit blocks of
// a line diff.
//
// Given the blocks of a comparison, every gap between changes (plus the gaps
// before the first and after the last block) is an unchanged run. Runs are
// trimmed by a context margin on both ends and, when still long enough,
// become [Range] values a presentation layer can collapse. Because matched
// runs have the same length on both sides of a comparison, the ranges of the
// two sides pair one-to-one; [Pair] keeps their fold state in lockstep.
package fold

import (
	"errors"
	"fmt"

	"github.com/dshills/driftwatch/internal/diff"
)

// Defaults for range computation.
const (
	// DefaultMargin is the number of context lines kept visible next to
	// each change.
	DefaultMargin = 2

	// DefaultMinSize is the smallest margin-trimmed run worth collapsing.
	DefaultMinSize = 4
)

// Errors returned on structurally invalid input. These indicate a contract
// violation by the caller, not a recoverable runtime condition.
var (
	ErrBlockOutOfRange = errors.New("edit block out of range")
	ErrBlocksUnordered = errors.New("edit blocks out of order")
)

// Side selects which document of a comparison ranges are computed for.
type Side uint8

const (
	// SideA is the old (baseline) document.
	SideA Side = iota

	// SideB is the new document.
	SideB
)

// String returns a human-readable representation of the side.
func (s Side) String() string {
	if s == SideA {
		return "a"
	}
	return "b"
}

// Range is a collapsible run of unchanged lines on one side of a comparison.
type Range struct {
	// From and To are 1-based inclusive line numbers.
	From int
	To   int

	// Lines is the number of lines covered, To - From + 1.
	Lines int

	// Span is the byte range of the covered lines.
	Span diff.Span

	// Folded is the current fold state. Freshly computed ranges start
	// folded.
	Folded bool
}

// Ranges computes the collapsible unchanged ranges on one side.
//
// lines must be the line sequence of the chosen side; blocks must be ordered
// and derived from the same comparison. margin context lines are kept visible
// at both ends of every gap, and only gaps still spanning at least minSize
// lines are returned. Negative parameters fall back to the defaults.
func Ranges(lines []string, blocks []diff.EditBlock, side Side, margin, minSize int) ([]Range, error) {
	if margin < 0 {
		margin = DefaultMargin
	}
	if minSize < 0 {
		minSize = DefaultMinSize
	}

	total := len(lines)
	if err := validate(blocks, side, total); err != nil {
		return nil, err
	}
	offsets := diff.LineOffsets(lines)

	var ranges []Range
	prevEnd := 0
	emit := func(gapLo, gapHi int) {
		lo := gapLo + margin
		hi := gapHi - margin // exclusive
		count := hi - lo
		if count < minSize || lo >= hi {
			return
		}
		ranges = append(ranges, Range{
			From:   lo + 1,
			To:     hi,
			Lines:  count,
			Span:   diff.Span{Start: offsets[lo], End: offsets[hi]},
			Folded: true,
		})
	}

	for _, blk := range blocks {
		start, end := blockRange(blk, side)
		emit(prevEnd, start)
		prevEnd = end
	}
	emit(prevEnd, total)

	return ranges, nil
}

// blockRange returns the half-open line range of a block on the given side.
func blockRange(blk diff.EditBlock, side Side) (start, end int) {
	if side == SideA {
		return blk.AStart, blk.AEnd
	}
	return blk.BStart, blk.BEnd
}

// validate rejects unordered or out-of-range block lists.
func validate(blocks []diff.EditBlock, side Side, total int) error {
	prev := 0
	for i, blk := range blocks {
		start, end := blockRange(blk, side)
		if start < 0 || end < start || end > total {
			return fmt.Errorf("block %d [%d,%d) of %d lines: %w", i, start, end, total, ErrBlockOutOfRange)
		}
		if start < prev {
			return fmt.Errorf("block %d starts at %d before previous end %d: %w", i, start, prev, ErrBlocksUnordered)
		}
		prev = end
	}
	return nil
}
