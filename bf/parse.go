package bf

import (
	"errors"
	"fmt"
)

// ErrUnbalancedLoop is returned by Parse when the source contains a ']'
// without a matching '[' before it, or a '[' that is never closed.
var ErrUnbalancedLoop = errors.New("unbalanced loop")

// Parse translates source into a program. Bytes that are not one of the
// eight instruction characters are ignored.
//
// Parse fails with an error wrapping ErrUnbalancedLoop if the brackets in
// source do not balance. It stops at the first ']' that closes nothing.
func Parse(src []byte) ([]Op, error) {
	var (
		prog []Op
		open []int // offsets of unclosed '['
	)
	for i, c := range src {
		op, ok := opFor(c)
		if !ok {
			continue
		}
		switch op {
		case Loop:
			open = append(open, i)
		case Jump:
			if len(open) == 0 {
				return nil, fmt.Errorf("%w: unmatched ']' at offset %d", ErrUnbalancedLoop, i)
			}
			open = open[:len(open)-1]
		}
		prog = append(prog, op)
	}
	if len(open) > 0 {
		return nil, fmt.Errorf("%w: unmatched '[' at offset %d", ErrUnbalancedLoop, open[len(open)-1])
	}
	return prog, nil
}

// MustParse is like Parse but panics if the source does not parse.
func MustParse(src string) []Op {
	prog, err := Parse([]byte(src))
	if err != nil {
		panic(err)
	}
	return prog
}
