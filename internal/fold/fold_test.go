package fold

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dshills/driftwatch/internal/diff"
)

// buildComparison diffs two documents and returns everything the folder needs.
func buildComparison(aText, bText string) (aLines, bLines []string, blocks []diff.EditBlock) {
	aLines = diff.Lines(aText)
	bLines = diff.Lines(bText)
	blocks = diff.Blocks(diff.Diff(aLines, bLines), aLines, bLines)
	return aLines, bLines, blocks
}

// numbered builds a document of n lines "line 1".."line n".
func numbered(n int) string {
	text := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			text += "\n"
		}
		text += fmt.Sprintf("line %d", i)
	}
	return text
}

func TestRangesBetweenBlocks(t *testing.T) {
	// Two edits separated by 100 unchanged lines: change line 1 and
	// line 102 of a 102-line document.
	a := "FIRST\n" + numbered(100) + "\nLAST"
	b := "first\n" + numbered(100) + "\nlast"
	aLines, _, blocks := buildComparison(a, b)

	if len(blocks) != 2 {
		t.Fatalf("expected 2 edit blocks, got %d", len(blocks))
	}

	ranges, err := Ranges(aLines, blocks, SideA, 2, 4)
	if err != nil {
		t.Fatalf("Ranges failed: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(ranges))
	}

	r := ranges[0]
	if r.Lines != 96 {
		t.Errorf("range covers %d lines, want 96", r.Lines)
	}
	// Gap is lines 2..101 (1-based); margin 2 keeps 2-3 and 100-101 visible.
	if r.From != 4 || r.To != 99 {
		t.Errorf("range [%d,%d], want [4,99]", r.From, r.To)
	}
	if !r.Folded {
		t.Error("fresh range should default to folded")
	}
}

func TestRangesTooSmall(t *testing.T) {
	// 7 unchanged lines between edits, margin 2 leaves 3 < minSize 4.
	a := "X\n" + numbered(7) + "\nY"
	b := "x\n" + numbered(7) + "\ny"
	aLines, _, blocks := buildComparison(a, b)

	ranges, err := Ranges(aLines, blocks, SideA, 2, 4)
	if err != nil {
		t.Fatalf("Ranges failed: %v", err)
	}
	if len(ranges) != 0 {
		t.Errorf("expected no ranges, got %d", len(ranges))
	}
}

func TestRangesLeadingAndTrailingGaps(t *testing.T) {
	// Single edit in the middle; both the leading and trailing unchanged
	// runs should fold.
	a := numbered(10) + "\nMID\n" + numbered(10)
	b := numbered(10) + "\nmid\n" + numbered(10)
	aLines, bLines, blocks := buildComparison(a, b)

	for _, side := range []Side{SideA, SideB} {
		lines := aLines
		if side == SideB {
			lines = bLines
		}
		ranges, err := Ranges(lines, blocks, side, 2, 4)
		if err != nil {
			t.Fatalf("side %v: Ranges failed: %v", side, err)
		}
		if len(ranges) != 2 {
			t.Fatalf("side %v: expected 2 ranges, got %d", side, len(ranges))
		}
		// Margin trims both ends of every gap, including the document
		// edges: lines 1-2 and the last two lines stay visible.
		if ranges[0].From != 3 {
			t.Errorf("side %v: leading range starts at %d, want 3", side, ranges[0].From)
		}
		if ranges[1].To != len(lines)-2 {
			t.Errorf("side %v: trailing range ends at %d, want %d", side, ranges[1].To, len(lines)-2)
		}
		if ranges[0].To >= ranges[1].From {
			t.Errorf("side %v: ranges overlap: %+v %+v", side, ranges[0], ranges[1])
		}
	}
}

func TestRangesSpanOffsets(t *testing.T) {
	a := numbered(20) + "\nEND"
	b := numbered(20) + "\nend"
	aLines, _, blocks := buildComparison(a, b)

	ranges, err := Ranges(aLines, blocks, SideA, 2, 4)
	if err != nil {
		t.Fatalf("Ranges failed: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(ranges))
	}

	r := ranges[0]
	offsets := diff.LineOffsets(aLines)
	if r.Span.Start != offsets[r.From-1] {
		t.Errorf("span start %d, want line offset %d", r.Span.Start, offsets[r.From-1])
	}
	if r.Span.End != offsets[r.To] {
		t.Errorf("span end %d, want line offset %d", r.Span.End, offsets[r.To])
	}
}

func TestRangesInvalidBlocks(t *testing.T) {
	lines := diff.Lines(numbered(5))

	t.Run("out of range", func(t *testing.T) {
		blocks := []diff.EditBlock{{AStart: 3, AEnd: 9}}
		if _, err := Ranges(lines, blocks, SideA, 0, 0); !errors.Is(err, ErrBlockOutOfRange) {
			t.Errorf("err = %v, want ErrBlockOutOfRange", err)
		}
	})

	t.Run("unordered", func(t *testing.T) {
		blocks := []diff.EditBlock{{AStart: 3, AEnd: 4}, {AStart: 1, AEnd: 2}}
		if _, err := Ranges(lines, blocks, SideA, 0, 0); !errors.Is(err, ErrBlocksUnordered) {
			t.Errorf("err = %v, want ErrBlocksUnordered", err)
		}
	})
}

func TestPairMirrorsToggles(t *testing.T) {
	// Insertion shifts the B side, but gap line counts stay equal.
	a := numbered(10) + "\nMID\n" + numbered(10)
	b := numbered(10) + "\nmid\nextra\n" + numbered(10)
	aLines, bLines, blocks := buildComparison(a, b)

	pair, err := NewPair(aLines, bLines, blocks, 2, 4)
	if err != nil {
		t.Fatalf("NewPair failed: %v", err)
	}
	if pair.Len() != 2 {
		t.Fatalf("expected 2 paired ranges, got %d", pair.Len())
	}

	aRanges := pair.Side(SideA)
	bRanges := pair.Side(SideB)
	for i := range aRanges {
		if aRanges[i].Lines != bRanges[i].Lines {
			t.Errorf("range %d: line counts differ (%d vs %d)", i, aRanges[i].Lines, bRanges[i].Lines)
		}
	}

	folded, err := pair.Toggle(1)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if folded {
		t.Error("toggling a fresh range should unfold it")
	}

	aRanges = pair.Side(SideA)
	bRanges = pair.Side(SideB)
	if aRanges[1].Folded || bRanges[1].Folded {
		t.Error("toggle must apply to both sides")
	}
	if !aRanges[0].Folded || !bRanges[0].Folded {
		t.Error("toggle must not touch other ranges")
	}

	if _, err := pair.Toggle(5); !errors.Is(err, ErrRangeIndex) {
		t.Errorf("err = %v, want ErrRangeIndex", err)
	}
}
