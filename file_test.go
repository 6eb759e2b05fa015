package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nf/bfx/bf"
	"github.com/nf/bfx/config"
)

func TestLoadProgram(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.bf")
	if err := os.WriteFile(good, []byte("hi +[-]."), 0644); err != nil {
		t.Fatal(err)
	}
	src, prog, err := loadProgram(good)
	if err != nil {
		t.Fatalf("loadProgram: %v", err)
	}
	if string(src) != "hi +[-]." {
		t.Errorf("source is %q", src)
	}
	if len(prog) != 5 {
		t.Errorf("program has %d instructions, want 5", len(prog))
	}

	bad := filepath.Join(dir, "bad.bf")
	if err := os.WriteFile(bad, []byte("+]"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := loadProgram(bad); !errors.Is(err, bf.ErrUnbalancedLoop) {
		t.Errorf("loadProgram of unbalanced program returned %v", err)
	}
	if _, _, err := loadProgram(filepath.Join(dir, "missing.bf")); err == nil {
		t.Error("loadProgram of a missing file succeeded")
	}
}

func TestConfigure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "in.txt"), []byte("A"), 0644); err != nil {
		t.Fatal(err)
	}
	c := config.Default()
	c.Dir = dir
	c.Run.Input = "in.txt"
	c.Run.EOF = bf.EOFZero
	c.Run.MaxSegments = 1

	in, err := openInput(c, nil)
	if err != nil {
		t.Fatalf("openInput: %v", err)
	}
	defer in.Close()
	data, err := io.ReadAll(in)
	if err != nil || string(data) != "A" {
		t.Fatalf("input read %q, %v; want %q", data, err, "A")
	}

	var out bytes.Buffer
	m := configure(bf.New(bf.MustParse(",.,.")), c, bytes.NewReader([]byte("A")), &out)
	if m.EOF != bf.EOFZero || m.Tape.MaxSegments != 1 {
		t.Errorf("configured eof %v, max segments %d", m.EOF, m.Tape.MaxSegments)
	}
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g := out.String(); g != "A\x00" {
		t.Errorf("output is %q, want %q", g, "A\x00")
	}

	c.Run.Input = "missing.txt"
	if _, err := openInput(c, nil); err == nil {
		t.Error("openInput of a missing file succeeded")
	}
}

// Output reaches stdout while the program is still running.
func TestRunStreamsOutput(t *testing.T) {
	prog := filepath.Join(t.TempDir(), "stream.bf")
	if err := os.WriteFile(prog, []byte("++++++++[>++++++++<-]>.,."), 0644); err != nil {
		t.Fatal(err)
	}
	c := config.Default()
	c.Run.EOF = bf.EOFZero

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	errc := make(chan error, 1)
	go func() { errc <- run(c, prog, inR, outW) }()

	next := func() byte {
		t.Helper()
		bc := make(chan byte, 1)
		go func() {
			var b [1]byte
			if _, err := io.ReadFull(outR, b[:]); err == nil {
				bc <- b[0]
			}
		}()
		select {
		case b := <-bc:
			return b
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for output")
		}
		return 0
	}

	// The program is now waiting for input.
	if b := next(); b != '@' {
		t.Fatalf("first output byte is %q, want '@'", b)
	}
	inW.Close()
	if b := next(); b != 0 {
		t.Fatalf("second output byte is %q, want 0", b)
	}
	if err := <-errc; err != nil {
		t.Fatalf("run: %v", err)
	}
}
