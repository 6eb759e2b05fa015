package bf

import "fmt"

// Snapshot is a copy of the state of an Interpreter
// that may later be used to resume execution.
type Snapshot struct {
	IP       int      `cbor:"ip"`
	Addr     int      `cbor:"addr"` // absolute cursor position
	Segments [][]byte `cbor:"segments"`
	Output   []byte   `cbor:"output"`
}

// Snapshot returns a copy of the interpreter's current state.
func (m *Interpreter) Snapshot() Snapshot {
	s := Snapshot{
		IP:     m.IP,
		Addr:   m.Tape.Addr(),
		Output: append([]byte(nil), m.out...),
	}
	for seg := m.Tape.anchor; seg != nil; seg = seg.next {
		s.Segments = append(s.Segments, append([]byte(nil), seg.cells[:]...))
	}
	return s
}

// Restore returns an Interpreter for prog in the state recorded by s.
func Restore(prog []Op, s Snapshot) (*Interpreter, error) {
	if s.IP < 0 || s.IP > len(prog) {
		return nil, fmt.Errorf("snapshot ip %d outside program of length %d", s.IP, len(prog))
	}
	if len(s.Segments) == 0 {
		return nil, fmt.Errorf("snapshot has no tape segments")
	}
	m := New(prog)
	m.IP = s.IP
	m.out = append([]byte(nil), s.Output...)

	t := m.Tape
	seg := t.anchor
	for i, cells := range s.Segments {
		if len(cells) != SegmentSize {
			return nil, fmt.Errorf("snapshot segment %d has %d cells, want %d", i, len(cells), SegmentSize)
		}
		if i > 0 {
			seg.next = &Segment{index: i, prev: seg}
			seg = seg.next
			t.n++
		}
		copy(seg.cells[:], cells)
	}
	if err := t.seek(s.Addr); err != nil {
		return nil, fmt.Errorf("snapshot: %v", err)
	}
	return m, nil
}
