package bf

import (
	"errors"
	"fmt"
	"io"
)

// ErrHalted is returned by a HaltReader whose read was abandoned,
// and is wrapped by HaltErrors with the Halt code.
var ErrHalted = errors.New("halted")

// HaltReader is an io.ByteReader that can abandon a blocked read.
// ReadByteOr returns ErrHalted if done is closed before a byte is available.
type HaltReader interface {
	io.ByteReader
	ReadByteOr(done <-chan struct{}) (byte, error)
}

// EOFMode selects the behavior of an In instruction at end of input.
type EOFMode byte

const (
	// EOFBlock waits for more input. An In instruction that reaches end of
	// input blocks until the interpreter is halted.
	EOFBlock EOFMode = iota
	// EOFZero stores zero in the current cell.
	EOFZero
	// EOFKeep leaves the current cell unchanged.
	EOFKeep
)

func (m EOFMode) String() string {
	switch m {
	case EOFBlock:
		return "block"
	case EOFZero:
		return "zero"
	case EOFKeep:
		return "keep"
	}
	return fmt.Sprintf("EOFMode(%d)", byte(m))
}

// ParseEOFMode returns the EOFMode named by s, as returned by EOFMode.String.
func ParseEOFMode(s string) (EOFMode, error) {
	for _, m := range []EOFMode{EOFBlock, EOFZero, EOFKeep} {
		if s == m.String() {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid EOF mode %q (want block, zero, or keep)", s)
}

// UnmarshalText implements encoding.TextUnmarshaler,
// so that EOFMode may be used in configuration files.
func (m *EOFMode) UnmarshalText(text []byte) error {
	v, err := ParseEOFMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// input executes an In instruction.
func (m *Interpreter) input() error {
	b, err := m.readByte()
	switch {
	case err == nil:
		m.Tape.Write(b)
		return nil
	case errors.Is(err, ErrHalted):
		return m.haltError(Halt, nil)
	case err != io.EOF:
		return m.haltError(InputError, err)
	}
	switch m.EOF {
	case EOFZero:
		m.Tape.Write(0)
	case EOFKeep:
		// Nothing.
	default:
		<-m.haltChan()
		return m.haltError(Halt, nil)
	}
	return nil
}

func (m *Interpreter) readByte() (byte, error) {
	switch r := m.In.(type) {
	case nil:
		return 0, io.EOF
	case HaltReader:
		return r.ReadByteOr(m.haltChan())
	default:
		return r.ReadByte()
	}
}
