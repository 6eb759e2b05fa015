package bf

import (
	"errors"
	"fmt"
	"strings"
)

// SegmentSize is the number of cells in each tape segment.
const SegmentSize = 256

var (
	// ErrMemoryUnderflow is returned when the cursor is moved left of
	// the first cell of the tape.
	ErrMemoryUnderflow = errors.New("memory underflow")

	// ErrMemoryExhausted is returned when the cursor is moved right past
	// the last cell of a tape that may not grow any further.
	ErrMemoryExhausted = errors.New("memory exhausted")
)

// Segment is a fixed-size block of cells in a Tape.
// Each segment owns the segment to its right;
// prev is only used to walk back along the chain.
type Segment struct {
	cells [SegmentSize]byte
	index int // position in the chain, the anchor is 0

	next *Segment
	prev *Segment
}

// Cursor identifies the current cell of a Tape.
type Cursor struct {
	seg *Segment
	off int
}

// Tape is an unbounded array of byte cells made from a chain of Segments.
// It starts with a single zeroed segment and grows to the right on demand.
// It never grows to the left.
type Tape struct {
	// MaxSegments, if non-zero, limits the number of segments the tape
	// may allocate. Moving past the last cell of the last permitted
	// segment fails with ErrMemoryExhausted.
	MaxSegments int

	anchor *Segment
	cur    Cursor
	n      int // number of segments
}

// NewTape returns a Tape with one segment and the cursor at its first cell.
func NewTape() *Tape {
	s := &Segment{}
	return &Tape{anchor: s, cur: Cursor{seg: s}, n: 1}
}

// MoveRight moves the cursor one cell to the right,
// allocating a new segment if necessary.
func (t *Tape) MoveRight() error {
	c := &t.cur
	if c.off < SegmentSize-1 {
		c.off++
		return nil
	}
	if c.seg.next == nil {
		if t.MaxSegments > 0 && t.n >= t.MaxSegments {
			return ErrMemoryExhausted
		}
		c.seg.next = &Segment{index: c.seg.index + 1, prev: c.seg}
		t.n++
	}
	c.seg, c.off = c.seg.next, 0
	return nil
}

// MoveLeft moves the cursor one cell to the left.
// It returns ErrMemoryUnderflow if the cursor is at the first cell of the
// leftmost segment, leaving the cursor where it is.
func (t *Tape) MoveLeft() error {
	c := &t.cur
	if c.off > 0 {
		c.off--
		return nil
	}
	if c.seg.prev == nil {
		return ErrMemoryUnderflow
	}
	c.seg, c.off = c.seg.prev, SegmentSize-1
	return nil
}

// Inc adds one to the current cell, wrapping from 255 to 0.
func (t *Tape) Inc() { t.cur.seg.cells[t.cur.off]++ }

// Dec subtracts one from the current cell, wrapping from 0 to 255.
func (t *Tape) Dec() { t.cur.seg.cells[t.cur.off]-- }

// Read returns the value of the current cell.
func (t *Tape) Read() byte { return t.cur.seg.cells[t.cur.off] }

// Write sets the value of the current cell.
func (t *Tape) Write(b byte) { t.cur.seg.cells[t.cur.off] = b }

// Addr returns the absolute index of the current cell,
// counting from the first cell of the tape.
func (t *Tape) Addr() int { return t.cur.seg.index*SegmentSize + t.cur.off }

// Len returns the number of segments allocated so far.
func (t *Tape) Len() int { return t.n }

// Cell returns the value of the cell at the absolute index addr.
// Cells that have not been allocated read as zero.
func (t *Tape) Cell(addr int) byte {
	if addr < 0 {
		return 0
	}
	s := t.segment(addr / SegmentSize)
	if s == nil {
		return 0
	}
	return s.cells[addr%SegmentSize]
}

// Segment returns a copy of the cells of the ith segment,
// or nil if that segment does not exist.
func (t *Tape) Segment(i int) []byte {
	s := t.segment(i)
	if s == nil {
		return nil
	}
	b := make([]byte, SegmentSize)
	copy(b, s.cells[:])
	return b
}

func (t *Tape) segment(i int) *Segment {
	if i < 0 || i >= t.n {
		return nil
	}
	// Most lookups are near the cursor, so walk from there.
	s := t.cur.seg
	for s != nil && s.index < i {
		s = s.next
	}
	for s != nil && s.index > i {
		s = s.prev
	}
	return s
}

// seek moves the cursor to the absolute index addr, which must refer to an
// allocated cell.
func (t *Tape) seek(addr int) error {
	s := t.segment(addr / SegmentSize)
	if addr < 0 || s == nil {
		return fmt.Errorf("cursor %d outside tape of %d segments", addr, t.n)
	}
	t.cur = Cursor{seg: s, off: addr % SegmentSize}
	return nil
}

func (t *Tape) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tape(%d segments) @%d:", t.n, t.Addr())
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, " %.2x", t.Cell(t.Addr()+i))
	}
	return b.String()
}
