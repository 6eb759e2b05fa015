package bf

// Op represents a single Brainfuck instruction.
type Op byte

const (
	Right Op = iota // >
	Left            // <
	Inc             // +
	Dec             // -
	Out             // .
	In              // ,
	Loop            // [
	Jump            // ]
)

var opChars = [...]byte{
	Right: '>',
	Left:  '<',
	Inc:   '+',
	Dec:   '-',
	Out:   '.',
	In:    ',',
	Loop:  '[',
	Jump:  ']',
}

// opFor returns the Op for the given source byte,
// and reports whether the byte is an instruction at all.
func opFor(c byte) (Op, bool) {
	switch c {
	case '>':
		return Right, true
	case '<':
		return Left, true
	case '+':
		return Inc, true
	case '-':
		return Dec, true
	case '.':
		return Out, true
	case ',':
		return In, true
	case '[':
		return Loop, true
	case ']':
		return Jump, true
	}
	return 0, false
}

// IsOp reports whether c is an instruction character.
// All other bytes in a program's source are ignored.
func IsOp(c byte) bool {
	_, ok := opFor(c)
	return ok
}

// Char returns the source character for the Op.
func (o Op) Char() byte {
	if int(o) < len(opChars) {
		return opChars[o]
	}
	return '?'
}

func (o Op) String() string {
	if int(o) < len(opChars) {
		return string(opChars[o])
	}
	return "?"
}

// Name returns a descriptive name for the Op, as used in error messages.
func (o Op) Name() string {
	switch o {
	case Right:
		return "right"
	case Left:
		return "left"
	case Inc:
		return "inc"
	case Dec:
		return "dec"
	case Out:
		return "out"
	case In:
		return "in"
	case Loop:
		return "loop"
	case Jump:
		return "jump"
	}
	return "unknown"
}
