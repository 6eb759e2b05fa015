// Package bf provides a Brainfuck interpreter, called Interpreter, that
// executes programs against an unbounded segmented Tape.
package bf

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Interpreter executes a parsed program against its own Tape.
// An Interpreter must only be driven by one goroutine at a time,
// with the exception of Halt.
type Interpreter struct {
	Prog []Op
	IP   int
	Tape *Tape

	// In provides the bytes read by In instructions.
	// If In implements HaltReader, a blocked read is abandoned by Halt.
	// A nil In is treated as being permanently at end of input.
	In io.ByteReader
	// Out, if non-nil, receives each output byte as it is produced.
	Out io.Writer
	// EOF selects what In instructions do at end of input.
	EOF EOFMode

	out []byte

	halted   atomic.Bool
	haltOnce sync.Once
	haltInit sync.Once
	halt     chan struct{} // see haltChan
}

// New returns an Interpreter for prog with a fresh Tape.
func New(prog []Op) *Interpreter {
	return &Interpreter{
		Prog: prog,
		Tape: NewTape(),
	}
}

// ErrEnd is returned by Exec when there are no more instructions to execute.
var ErrEnd = errors.New("end of program")

// Exec executes the instruction at m.IP. It returns ErrEnd if m.IP is past
// the last instruction, and otherwise only returns a non-nil error if it
// encounters a halt condition, in which case m.IP is left unchanged.
func (m *Interpreter) Exec() error {
	if m.halted.Load() {
		return m.haltError(Halt, nil)
	}
	if m.IP >= len(m.Prog) {
		return ErrEnd
	}

	switch m.Prog[m.IP] {
	case Right:
		if err := m.Tape.MoveRight(); err != nil {
			return m.haltError(Exhausted, nil)
		}
	case Left:
		if err := m.Tape.MoveLeft(); err != nil {
			return m.haltError(Underflow, nil)
		}
	case Inc:
		m.Tape.Inc()
	case Dec:
		m.Tape.Dec()
	case Out:
		b := m.Tape.Read()
		if w := m.Out; w != nil {
			if _, err := w.Write([]byte{b}); err != nil {
				return m.haltError(OutputError, err)
			}
		}
		m.out = append(m.out, b)
	case In:
		if err := m.input(); err != nil {
			return err
		}
	case Loop:
		if m.Tape.Read() == 0 {
			m.IP = m.matchForward(m.IP)
			return nil
		}
	case Jump:
		if m.Tape.Read() != 0 {
			m.IP = m.matchBack(m.IP)
			return nil
		}
	default:
		panic(fmt.Errorf("internal error: %v not implemented", m.Prog[m.IP]))
	}
	m.IP++
	return nil
}

// Run executes the program until it ends or halts. It returns the output
// produced so far in both cases.
func (m *Interpreter) Run() ([]byte, error) {
	for {
		if err := m.Exec(); err != nil {
			if err == ErrEnd {
				err = nil
			}
			return m.Output(), err
		}
	}
}

// Output returns the bytes produced by Out instructions so far, in the order
// they were executed. The returned slice must not be modified.
func (m *Interpreter) Output() []byte { return m.out }

// Done reports whether the program has run to completion.
func (m *Interpreter) Done() bool { return m.IP >= len(m.Prog) }

// Halt stops execution. The next call to Exec, or the one in progress if it
// is waiting for input, returns a HaltError with the Halt code.
// It is safe to call Halt from any goroutine, more than once.
func (m *Interpreter) Halt() {
	m.haltOnce.Do(func() {
		m.halted.Store(true)
		close(m.haltChan())
	})
}

// haltChan returns the channel that is closed by Halt. It is created on
// first use so that an Interpreter need not be made by New.
func (m *Interpreter) haltChan() chan struct{} {
	m.haltInit.Do(func() {
		if m.halt == nil {
			m.halt = make(chan struct{})
		}
	})
	return m.halt
}

// matchForward returns the position after the Jump matching the Loop at ip,
// or the end of the program if there is none.
func (m *Interpreter) matchForward(ip int) int {
	depth := 0
	for i := ip; i < len(m.Prog); i++ {
		switch m.Prog[i] {
		case Loop:
			depth++
		case Jump:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(m.Prog)
}

// matchBack returns the position of the Loop matching the Jump at ip,
// or the end of the program if there is none.
func (m *Interpreter) matchBack(ip int) int {
	depth := 0
	for i := ip; i >= 0; i-- {
		switch m.Prog[i] {
		case Jump:
			depth--
		case Loop:
			depth++
			if depth == 0 {
				return i
			}
		}
	}
	return len(m.Prog)
}

func (m *Interpreter) haltError(code HaltCode, err error) error {
	e := HaltError{HaltCode: code, Addr: m.IP, Err: err}
	if m.IP < len(m.Prog) {
		e.Op = m.Prog[m.IP]
	}
	return e
}

// HaltError is returned by Exec if execution is halted for some reason.
type HaltError struct {
	HaltCode
	Op   Op
	Addr int   // position of Op in the program
	Err  error // underlying I/O error, if any
}

func (e HaltError) Error() string {
	s := fmt.Sprintf("%s executing %s at %d", e.HaltCode, e.Op, e.Addr)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e HaltError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.HaltCode {
	case Underflow:
		return ErrMemoryUnderflow
	case Exhausted:
		return ErrMemoryExhausted
	case Halt:
		return ErrHalted
	}
	return nil
}

// HaltCode signifies the type of condition that halted execution.
type HaltCode byte

const (
	Halt        HaltCode = 0x00
	Underflow   HaltCode = 0x01
	Exhausted   HaltCode = 0x02
	InputError  HaltCode = 0x03
	OutputError HaltCode = 0x04
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		Halt:        "halt",
		Underflow:   "memory underflow",
		Exhausted:   "memory exhausted",
		InputError:  "input error",
		OutputError: "output error",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}
