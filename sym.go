package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nf/bfx/bf"
)

// sourceMap records the position in the source text of each instruction
// of a parsed program.
type sourceMap []position

type position struct {
	line, col int // 1-based
}

func (p position) String() string { return fmt.Sprintf("%d:%d", p.line, p.col) }

func parseSourceMap(src []byte) sourceMap {
	var (
		s    sourceMap
		line = 1
		col  = 1
	)
	for _, c := range src {
		if bf.IsOp(c) {
			s = append(s, position{line, col})
		}
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return s
}

// forIP returns the source position of the instruction at ip.
func (s sourceMap) forIP(ip int) (position, bool) {
	if ip < 0 || ip >= len(s) {
		return position{}, false
	}
	return s[ip], true
}

// resolve returns the instruction index named by arg, which is either an
// instruction index or a line:col source position. A source position
// resolves to the first instruction at or after it.
func (s sourceMap) resolve(arg string) (int, bool) {
	l, c, ok := strings.Cut(arg, ":")
	if !ok {
		ip, err := strconv.Atoi(arg)
		if err != nil || ip < 0 || ip >= len(s) {
			return 0, false
		}
		return ip, true
	}
	line, err := strconv.Atoi(l)
	if err != nil {
		return 0, false
	}
	col, err := strconv.Atoi(c)
	if err != nil {
		return 0, false
	}
	ip := sort.Search(len(s), func(i int) bool {
		p := s[i]
		return p.line > line || p.line == line && p.col >= col
	})
	if ip == len(s) || s[ip].line != line {
		return 0, false
	}
	return ip, true
}
