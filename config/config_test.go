package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nf/bfx/bf"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[run]
eof = "zero"
max_segments = 64
input = "data/in.txt"

[display]
delay = "250ms"
visual = true
gui = true
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Run.EOF != bf.EOFZero {
		t.Errorf("run eof = %v, want zero", c.Run.EOF)
	}
	if c.Run.MaxSegments != 64 {
		t.Errorf("run max_segments = %d, want 64", c.Run.MaxSegments)
	}
	if c.Display.Delay.Duration != 250*time.Millisecond {
		t.Errorf("display delay = %v, want 250ms", c.Display.Delay)
	}
	if !c.Display.Visual {
		t.Error("display visual = false, want true")
	}
	if !c.Display.GUI {
		t.Error("display gui = false, want true")
	}
	abs, _ := filepath.Abs(dir)
	if c.Dir != abs {
		t.Errorf("dir = %q, want %q", c.Dir, abs)
	}
	if g, w := c.InputPath(), filepath.Join(abs, "data", "in.txt"); g != w {
		t.Errorf("input path = %q, want %q", g, w)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[display]
visual = true
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Run.EOF != bf.EOFBlock {
		t.Errorf("run eof = %v, want block", c.Run.EOF)
	}
	if c.Run.MaxSegments != 0 {
		t.Errorf("run max_segments = %d, want 0", c.Run.MaxSegments)
	}
	if c.Display.Delay.Duration != DefaultDelay {
		t.Errorf("display delay = %v, want %v", c.Display.Delay, DefaultDelay)
	}
	if c.InputPath() != "" {
		t.Errorf("input path = %q, want empty", c.InputPath())
	}
}

func TestLoadConfigErrors(t *testing.T) {
	for _, c := range []struct {
		name, content, want string
	}{
		{"eof", "[run]\neof = \"wait\"\n", "invalid EOF mode"},
		{"delay", "[display]\ndelay = \"soon\"\n", "parse error"},
		{"negative_delay", "[display]\ndelay = \"-1s\"\n", "negative duration"},
		{"segments", "[run]\nmax_segments = -1\n", "must not be negative"},
		{"syntax", "[run\n", "parse error"},
	} {
		t.Run(c.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, c.content)
			_, err := Load(dir)
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("error %q does not mention %q", err, c.want)
			}
		})
	}
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load of a directory without bfx.toml succeeded")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[run]\neof = \"keep\"\n")
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(sub)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c.Run.EOF != bf.EOFKeep {
		t.Errorf("run eof = %v, want keep", c.Run.EOF)
	}
	abs, _ := filepath.Abs(root)
	if c.Dir != abs {
		t.Errorf("dir = %q, want %q", c.Dir, abs)
	}
}
