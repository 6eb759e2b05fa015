package bf

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	for _, c := range []struct {
		src  string
		want string // expected program, as source characters
		err  string // expected error text, if any
	}{
		{src: "", want: ""},
		{src: "[]", want: "[]"},
		{src: "><+-.,[]", want: "><+-.,[]"},
		{src: "a+b-c\n\t[ > < ]# done", want: "+-[><]"},
		{src: "[[]][[[]]]", want: "[[]][[[]]]"},
		{src: "[", err: "unbalanced loop: unmatched '[' at offset 0"},
		{src: "]", err: "unbalanced loop: unmatched ']' at offset 0"},
		{src: "+[[]", err: "unbalanced loop: unmatched '[' at offset 1"},
		{src: "[]] [", err: "unbalanced loop: unmatched ']' at offset 2"},
		{src: "x][", err: "unbalanced loop: unmatched ']' at offset 1"},
	} {
		prog, err := Parse([]byte(c.src))
		if c.err != "" {
			if err == nil {
				t.Errorf("Parse(%q) succeeded, want error %q", c.src, c.err)
				continue
			}
			if !errors.Is(err, ErrUnbalancedLoop) {
				t.Errorf("Parse(%q) error %v does not wrap ErrUnbalancedLoop", c.src, err)
			}
			if err.Error() != c.err {
				t.Errorf("Parse(%q) error is %q, want %q", c.src, err, c.err)
			}
			if prog != nil {
				t.Errorf("Parse(%q) returned %d instructions with its error", c.src, len(prog))
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) returned error %v", c.src, err)
			continue
		}
		if got := progString(prog); got != c.want {
			t.Errorf("Parse(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

// Check that parsing keeps exactly the instruction characters, in order,
// for balanced programs padded with inert text.
func TestParseIgnoresInert(t *testing.T) {
	const inert = "abc XYZ 0123\n\t#!?/*"
	for _, src := range []string{
		"[]",
		"[[][]]",
		"+[->+<]>.",
		",[.,]",
		"[[[[[[]]]]]]",
		helloWorld,
	} {
		var (
			b    strings.Builder
			want strings.Builder
		)
		for i := 0; i < len(src); i++ {
			b.WriteString(inert[:i%len(inert)])
			b.WriteByte(src[i])
			if _, ok := opFor(src[i]); ok {
				want.WriteByte(src[i])
			}
		}
		b.WriteString(inert)
		prog, err := Parse([]byte(b.String()))
		if err != nil {
			t.Errorf("Parse(%q) returned error %v", b.String(), err)
			continue
		}
		if got := progString(prog); got != want.String() {
			t.Errorf("Parse(%q) = %q, want %q", b.String(), got, want.String())
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if e := recover(); e == nil {
			t.Error("MustParse did not panic")
		}
	}()
	MustParse("[[]")
}

func progString(prog []Op) string {
	var b strings.Builder
	for _, op := range prog {
		b.WriteByte(op.Char())
	}
	return b.String()
}
