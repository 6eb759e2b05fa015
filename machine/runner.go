// Package machine drives a Brainfuck interpreter with console I/O,
// debugging controls and an optional graphical view of the tape.
package machine

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/nf/bfx/bf"
)

// StateKind describes why a StateFunc is being called.
type StateKind int

const (
	ClearState StateKind = iota // execution started or resumed
	QuietState                  // an instruction was executed
	StepState                   // stopped after a single step
	BreakState                  // stopped at a breakpoint
	PauseState                  // stopped by a pause request
	HaltState                   // execution halted with an error
	DoneState                   // the program ran to completion
)

func (k StateKind) String() string {
	switch k {
	case ClearState:
		return "clear"
	case QuietState:
		return "quiet"
	case StepState:
		return "step"
	case BreakState:
		return "break"
	case PauseState:
		return "pause"
	case HaltState:
		return "halt"
	case DoneState:
		return "done"
	}
	return "unknown"
}

// StateFunc is called by a Runner as the interpreter's state changes.
// It is called from the goroutine that executes the interpreter,
// so it may inspect the interpreter but must not retain it.
type StateFunc func(*bf.Interpreter, StateKind)

// Options configure a Runner.
type Options struct {
	// GUI opens a window that displays the tape.
	GUI bool
	// Dev keeps the runner alive after the program ends or halts,
	// so that a new interpreter may be swapped in.
	Dev bool
	// Delay is a pause after each executed instruction.
	Delay time.Duration
	// State, if non-nil, is notified of state changes.
	State StateFunc
}

// Runner executes an interpreter, handling debug commands
// and interpreter swaps (in dev mode) while it runs.
type Runner struct {
	opts Options

	debug     chan debugCmd
	reset     chan *bf.Interpreter
	resetDone chan bool
	done      chan bool

	mu      sync.Mutex
	cur     *bf.Interpreter
	exiting bool

	// Owned by the goroutine executing the interpreter.
	breaks map[int]bool
	paused bool
	trace  backlog
}

type debugCmd struct {
	name string
	ip   int
	fn   func(*bf.Interpreter)
}

// NewRunner returns a Runner with the given options.
func NewRunner(opts Options) *Runner {
	return &Runner{
		opts:      opts,
		debug:     make(chan debugCmd),
		reset:     make(chan *bf.Interpreter),
		resetDone: make(chan bool),
		done:      make(chan bool),
		breaks:    map[int]bool{},
	}
}

// Debug sends a command to the running interpreter. The commands are:
//
//	break   set a breakpoint at ip, or clear all breakpoints if ip < 0
//	clear   clear the breakpoint at ip
//	pause   stop before the next instruction
//	toggle  pause if running, continue if stopped
//	step    execute one instruction while stopped
//	cont    continue after a stop
//	exit    halt the interpreter and stop the runner
//
// Debug returns once the command is accepted or the runner has stopped.
func (r *Runner) Debug(cmd string, ip int) {
	if cmd == "exit" {
		r.mu.Lock()
		r.exiting = true
		if m := r.cur; m != nil {
			m.Halt()
		}
		r.mu.Unlock()
	}
	select {
	case r.debug <- debugCmd{name: cmd, ip: ip}:
	case <-r.done:
	}
}

// Inspect calls f with the current interpreter, from the goroutine that
// executes it, between instructions. It returns once f has returned or the
// runner has stopped.
func (r *Runner) Inspect(f func(*bf.Interpreter)) {
	done := make(chan bool)
	cmd := debugCmd{name: "inspect", fn: func(m *bf.Interpreter) {
		f(m)
		close(done)
	}}
	select {
	case r.debug <- cmd:
	case <-r.done:
		return
	}
	select {
	case <-done:
	case <-r.done:
	}
}

// Swap halts the running interpreter and replaces it with m.
func (r *Runner) Swap(m *bf.Interpreter) {
	if !r.opts.Dev {
		panic("Swap called while not running in dev mode")
	}
	r.mu.Lock()
	if cur := r.cur; cur != nil {
		cur.Halt()
	}
	r.mu.Unlock()
	select {
	case r.reset <- m:
		<-r.resetDone
	case <-r.done:
	}
}

// Run executes m until it ends or halts, or, in dev mode,
// until the runner is told to exit. It returns the error that halted the
// final interpreter, if any. Run must be called from the main goroutine if
// the GUI is enabled.
func (r *Runner) Run(m *bf.Interpreter) error {
	var (
		g    *gui
		exit = make(chan bool)
		err  error
	)
	if r.opts.GUI {
		g = newGUI(r)
	}
	go func() {
		err = r.loop(m, g)
		close(r.done)
		close(exit)
	}()
	if g != nil {
		// If the GUI is enabled then Run will drive the GUI
		// until exit is closed or the window goes away.
		if gerr := g.Run(exit); gerr != nil {
			log.Printf("gui: %v", gerr)
		}
		r.Debug("exit", 0)
	}
	<-exit
	return err
}

func (r *Runner) loop(m *bf.Interpreter, g *gui) error {
	for {
		r.setCurrent(m)
		next, err := r.exec(m, g)
		if next != nil {
			m = next
			r.resetDone <- true
			continue
		}
		if err == bf.ErrEnd {
			err = nil
		}
		if r.isExiting() {
			if errors.Is(err, bf.ErrHalted) {
				err = nil
			}
			return err
		}
		kind := DoneState
		if err != nil {
			kind = HaltState
		}
		r.state(m, kind)
		if !r.opts.Dev {
			return err
		}
		if err != nil && !errors.Is(err, bf.ErrHalted) {
			r.trace.Emit()
			log.Printf("bf: %v", err)
		}
		// Keep the finished interpreter around until it is replaced.
		for next == nil {
			select {
			case next = <-r.reset:
			case cmd := <-r.debug:
				switch {
				case cmd.fn != nil:
					cmd.fn(m)
				case cmd.name == "exit":
					return nil
				default:
					r.command(cmd)
				}
			case g.updateChan() <- m:
				<-g.updateDone
			}
		}
		m = next
		r.resetDone <- true
	}
}

// exec runs m until it ends, halts, or is replaced by a swap,
// in which case the replacement is returned.
func (r *Runner) exec(m *bf.Interpreter, g *gui) (*bf.Interpreter, error) {
	var (
		stopped bool
		resumed bool // don't stop at a breakpoint at the current IP
	)
	r.trace.Reset()
	r.state(m, ClearState)
	for {
		if !stopped && !m.Done() {
			switch {
			case r.paused:
				stopped = true
				r.state(m, PauseState)
			case r.breaks[m.IP] && !resumed:
				stopped = true
				r.paused = true
				r.state(m, BreakState)
			}
		}

		var (
			cmd debugCmd
			ok  bool
		)
		if stopped {
			select {
			case next := <-r.reset:
				return next, nil
			case cmd = <-r.debug:
				ok = true
			case g.updateChan() <- m:
				<-g.updateDone
				continue
			}
		} else {
			select {
			case next := <-r.reset:
				return next, nil
			case cmd = <-r.debug:
				ok = true
			default:
			}
		}

		if ok && cmd.fn != nil {
			cmd.fn(m)
			continue
		}
		if ok {
			switch r.command(cmd) {
			case "step":
				if !stopped {
					continue // Treated as a pause.
				}
				if err := r.step(m, g); err != nil {
					return nil, err
				}
				r.state(m, StepState)
				continue
			case "cont":
				if stopped {
					stopped, resumed = false, true
					r.state(m, ClearState)
				}
			case "exit":
				return nil, m.Exec()
			}
			if stopped || r.paused {
				continue
			}
		}

		resumed = false
		if err := r.step(m, g); err != nil {
			return nil, err
		}
	}
}

// command applies cmd to the runner's debug state and returns the name of
// the action the executor should take.
func (r *Runner) command(cmd debugCmd) string {
	switch cmd.name {
	case "b", "break":
		if cmd.ip < 0 {
			r.breaks = map[int]bool{}
		} else {
			r.breaks[cmd.ip] = true
		}
	case "clear":
		delete(r.breaks, cmd.ip)
	case "p", "pause":
		r.paused = true
	case "toggle":
		if r.paused {
			r.paused = false
			return "cont"
		}
		r.paused = true
	case "s", "step":
		r.paused = true
		return "step"
	case "c", "cont":
		r.paused = false
		return "cont"
	case "exit":
		return "exit"
	default:
		log.Printf("unknown debug command %q", cmd.name)
	}
	return ""
}

// step executes a single instruction and lets observers see the result.
func (r *Runner) step(m *bf.Interpreter, g *gui) error {
	ip := m.IP
	if err := m.Exec(); err != nil {
		return err
	}
	if r.opts.Dev {
		r.trace.LazyPrintf("trace: %d %s cell[%d]=%.2x", ip, m.Prog[ip], m.Tape.Addr(), m.Tape.Read())
	}
	select {
	case g.updateChan() <- m:
		<-g.updateDone
	default:
	}
	r.state(m, QuietState)
	if d := r.opts.Delay; d > 0 {
		time.Sleep(d)
	}
	return nil
}

func (r *Runner) state(m *bf.Interpreter, k StateKind) {
	if f := r.opts.State; f != nil {
		f(m, k)
	}
}

func (r *Runner) setCurrent(m *bf.Interpreter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cur = m
	if r.exiting {
		m.Halt()
	}
}

func (r *Runner) isExiting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exiting
}

// backlog is a ring of recent log messages that are formatted only if they
// are emitted.
type backlog struct {
	entries []logEntry
	n       int
}

type logEntry struct {
	format string
	args   []any
}

const maxBacklog = 100

func (b *backlog) LazyPrintf(format string, args ...any) {
	if b.n < len(b.entries) {
		b.entries[b.n] = logEntry{format, args}
	} else {
		b.entries = append(b.entries, logEntry{format, args})
	}
	b.n = (b.n + 1) % maxBacklog
}

func (b *backlog) Emit() {
	if len(b.entries) == 0 {
		return
	}
	for i := b.n; ; i++ {
		i %= len(b.entries)
		log.Printf(b.entries[i].format, b.entries[i].args...)
		if (i+1)%maxBacklog == b.n {
			break
		}
	}
}

func (b *backlog) Reset() {
	b.entries = b.entries[:0]
	b.n = 0
}
