package diff

// Span is a half-open byte range [Start, End) within a document.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// EditBlock is a maximal run of consecutive non-match entries.
//
// AStart/AEnd and BStart/BEnd are half-open line-index ranges into the old
// and new line sequences. A pure insertion has AStart == AEnd (and vice
// versa for a pure deletion). ASpan and BSpan are the corresponding byte
// ranges, computed against the line offsets of each side.
type EditBlock struct {
	AStart, AEnd int
	BStart, BEnd int
	ASpan        Span
	BSpan        Span
}

// ALines returns the number of old-side lines in the block.
func (eb EditBlock) ALines() int { return eb.AEnd - eb.AStart }

// BLines returns the number of new-side lines in the block.
func (eb EditBlock) BLines() int { return eb.BEnd - eb.BStart }

// Blocks derives the edit blocks of an alignment. aLines and bLines must be
// the sequences the entries were computed from; they supply the byte offsets
// for the block spans.
func Blocks(entries []Entry, aLines, bLines []string) []EditBlock {
	aOff := LineOffsets(aLines)
	bOff := LineOffsets(bLines)

	var blocks []EditBlock
	aPos, bPos := 0, 0
	inBlock := false
	var cur EditBlock

	flush := func() {
		cur.AEnd = aPos
		cur.BEnd = bPos
		cur.ASpan = Span{Start: aOff[cur.AStart], End: aOff[cur.AEnd]}
		cur.BSpan = Span{Start: bOff[cur.BStart], End: bOff[cur.BEnd]}
		blocks = append(blocks, cur)
		inBlock = false
	}

	for _, e := range entries {
		switch e.Op {
		case OpMatch:
			if inBlock {
				flush()
			}
			aPos++
			bPos++
		case OpDelete:
			if !inBlock {
				cur = EditBlock{AStart: aPos, BStart: bPos}
				inBlock = true
			}
			aPos++
		case OpInsert:
			if !inBlock {
				cur = EditBlock{AStart: aPos, BStart: bPos}
				inBlock = true
			}
			bPos++
		}
	}
	if inBlock {
		flush()
	}
	return blocks
}

// LineOffsets returns the starting byte offset of each line, plus one final
// entry holding the total text length. Lines are assumed to be separated by
// single "\n" bytes, matching [Lines].
func LineOffsets(lines []string) []int {
	offsets := make([]int, len(lines)+1)
	pos := 0
	for i, line := range lines {
		offsets[i] = pos
		pos += len(line)
		if i < len(lines)-1 {
			pos++ // separator
		}
	}
	offsets[len(lines)] = pos
	return offsets
}
