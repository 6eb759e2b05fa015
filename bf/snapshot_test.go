package bf

import (
	"bytes"
	"strings"
	"testing"
)

func TestSnapshotResume(t *testing.T) {
	prog := MustParse(helloWorld)
	full, err := New(prog).Run()
	if err != nil {
		t.Fatal(err)
	}

	for _, steps := range []int{0, 1, 17, 200, 300} {
		m := New(prog)
		for i := 0; i < steps; i++ {
			if err := m.Exec(); err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
		}
		s := m.Snapshot()
		r, err := Restore(prog, s)
		if err != nil {
			t.Fatalf("Restore after %d steps: %v", steps, err)
		}
		if r.IP != m.IP || r.Tape.Addr() != m.Tape.Addr() || r.Tape.Len() != m.Tape.Len() {
			t.Errorf("after %d steps: restored ip=%d addr=%d len=%d, want ip=%d addr=%d len=%d",
				steps, r.IP, r.Tape.Addr(), r.Tape.Len(), m.IP, m.Tape.Addr(), m.Tape.Len())
		}
		out, err := r.Run()
		if err != nil {
			t.Fatalf("resuming after %d steps: %v", steps, err)
		}
		if !bytes.Equal(out, full) {
			t.Errorf("resumed after %d steps: output %q, want %q", steps, out, full)
		}
	}
}

func TestSnapshotMultiSegment(t *testing.T) {
	src := strings.Repeat(">", SegmentSize+4) + "+++<"
	m := New(MustParse(src))
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	r, err := Restore(m.Prog, m.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if g, w := r.Tape.Addr(), SegmentSize+3; g != w {
		t.Errorf("restored cursor is %d, want %d", g, w)
	}
	if g := r.Tape.Cell(SegmentSize + 4); g != 3 {
		t.Errorf("restored cell is %d, want 3", g)
	}
	if err := r.Tape.MoveLeft(); err != nil {
		t.Errorf("MoveLeft on restored tape: %v", err)
	}
}

func TestRestoreInvalid(t *testing.T) {
	prog := MustParse("+.")
	seg := make([]byte, SegmentSize)
	for _, s := range []Snapshot{
		{IP: -1, Segments: [][]byte{seg}},
		{IP: 3, Segments: [][]byte{seg}},
		{IP: 0},
		{IP: 0, Segments: [][]byte{seg[:10]}},
		{IP: 0, Addr: SegmentSize, Segments: [][]byte{seg}},
		{IP: 0, Addr: -1, Segments: [][]byte{seg}},
	} {
		if _, err := Restore(prog, s); err == nil {
			t.Errorf("Restore(ip=%d addr=%d segments=%d) succeeded, want error",
				s.IP, s.Addr, len(s.Segments))
		}
	}
}
