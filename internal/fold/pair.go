package fold

import (
	"errors"

	"github.com/dshills/driftwatch/internal/diff"
)

// ErrRangeIndex is returned when a fold toggle names a range that does not
// exist.
var ErrRangeIndex = errors.New("fold range index out of range")

// Pair holds the unchanged ranges of both sides of one comparison and keeps
// their fold state mirrored: unchanged runs are matched lines, so the i-th
// gap has the same line count on both sides and the two range lists always
// pair one-to-one.
type Pair struct {
	a []Range
	b []Range
}

// NewPair computes the paired ranges for a comparison.
func NewPair(aLines, bLines []string, blocks []diff.EditBlock, margin, minSize int) (*Pair, error) {
	a, err := Ranges(aLines, blocks, SideA, margin, minSize)
	if err != nil {
		return nil, err
	}
	b, err := Ranges(bLines, blocks, SideB, margin, minSize)
	if err != nil {
		return nil, err
	}
	return &Pair{a: a, b: b}, nil
}

// Len returns the number of paired ranges.
func (p *Pair) Len() int {
	return len(p.a)
}

// Side returns a copy of the ranges for one side.
func (p *Pair) Side(side Side) []Range {
	src := p.a
	if side == SideB {
		src = p.b
	}
	out := make([]Range, len(src))
	copy(out, src)
	return out
}

// Toggle flips the fold state of the i-th range on both sides and returns
// the new state.
func (p *Pair) Toggle(i int) (folded bool, err error) {
	if i < 0 || i >= len(p.a) {
		return false, ErrRangeIndex
	}
	p.a[i].Folded = !p.a[i].Folded
	p.b[i].Folded = p.a[i].Folded
	return p.a[i].Folded, nil
}

// SetFolded sets the fold state of the i-th range on both sides.
func (p *Pair) SetFolded(i int, folded bool) error {
	if i < 0 || i >= len(p.a) {
		return ErrRangeIndex
	}
	p.a[i].Folded = folded
	p.b[i].Folded = folded
	return nil
}
