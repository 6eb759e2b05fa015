package machine

import (
	"path/filepath"
	"testing"

	"github.com/nf/bfx/bf"
)

func TestSnapshotFile(t *testing.T) {
	const src = "++++++++[>++++++++<-]>+.+.+."
	m := bf.New(bf.MustParse(src))
	for m.Tape.Read() != 65 || m.IP < 23 {
		if err := m.Exec(); err != nil {
			t.Fatal(err)
		}
	}
	name := filepath.Join(t.TempDir(), "state.bfs")
	if err := SaveSnapshot(name, m); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	r, err := LoadSnapshot(name)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if r.IP != m.IP || r.Tape.Addr() != m.Tape.Addr() || string(r.Output()) != string(m.Output()) {
		t.Errorf("loaded ip=%d addr=%d out=%q, want ip=%d addr=%d out=%q",
			r.IP, r.Tape.Addr(), r.Output(), m.IP, m.Tape.Addr(), m.Output())
	}
	out, err := r.Run()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "ABC" {
		t.Errorf("resumed output is %q, want %q", out, "ABC")
	}
}

func TestUnmarshalSnapshotErrors(t *testing.T) {
	if _, err := UnmarshalSnapshot([]byte{0xff, 0x00}); err == nil {
		t.Error("UnmarshalSnapshot of garbage succeeded")
	}
	b, err := cborEncMode.Marshal(snapshotFile{Version: 99})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalSnapshot(b); err == nil {
		t.Error("UnmarshalSnapshot of unknown version succeeded")
	}
	b, err = cborEncMode.Marshal(snapshotFile{Version: snapshotVersion, Program: "[["})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalSnapshot(b); err == nil {
		t.Error("UnmarshalSnapshot of unbalanced program succeeded")
	}
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("LoadSnapshot of missing file succeeded")
	}
}
