package main

import "testing"

const symSource = "+ comment +\n[->\n  +<]\n"

func TestSourceMap(t *testing.T) {
	s := parseSourceMap([]byte(symSource))
	want := []position{
		{1, 1}, {1, 11},
		{2, 1}, {2, 2}, {2, 3},
		{3, 3}, {3, 4}, {3, 5},
	}
	if len(s) != len(want) {
		t.Fatalf("source map has %d entries, want %d", len(s), len(want))
	}
	for i, w := range want {
		if p, ok := s.forIP(i); !ok || p != w {
			t.Errorf("forIP(%d) = %v, %v; want %v", i, p, ok, w)
		}
	}
	if _, ok := s.forIP(len(want)); ok {
		t.Errorf("forIP(%d) found a position past the end", len(want))
	}
	if _, ok := s.forIP(-1); ok {
		t.Error("forIP(-1) found a position")
	}
}

func TestSourceMapResolve(t *testing.T) {
	s := parseSourceMap([]byte(symSource))
	for _, c := range []struct {
		arg string
		ip  int
		ok  bool
	}{
		{"0", 0, true},
		{"7", 7, true},
		{"8", 0, false},
		{"-1", 0, false},
		{"1:1", 0, true},
		{"1:2", 1, true}, // skips the comment
		{"2:3", 4, true},
		{"3:1", 5, true},
		{"3:6", 0, false}, // nothing after 3:5 on line 3
		{"4:1", 0, false},
		{"x:1", 0, false},
		{"1:y", 0, false},
		{"loop", 0, false},
	} {
		ip, ok := s.resolve(c.arg)
		if ip != c.ip || ok != c.ok {
			t.Errorf("resolve(%q) = %d, %v; want %d, %v", c.arg, ip, ok, c.ip, c.ok)
		}
	}
}
