package main

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/bfx/bf"
	"github.com/nf/bfx/config"
	"github.com/nf/bfx/machine"
)

var debugCommands = []string{
	"break", "cont", "step", "pause", "watch", "input", "save", "load", "exit",
}

type debugger struct {
	run     *machine.Runner
	cfg     *config.Config
	console *machine.Console
	out     io.Writer

	// stdin feeds program input typed into the debugger.
	stdin  io.Reader
	inputw *io.PipeWriter

	tape   *tview.TextView
	output *tview.TextView
	log    *tview.TextView
	state  *tview.TextView
	input  *tview.InputField
	cols   *tview.Flex
	right  *tview.Flex
	rows   *tview.Flex
	app    *tview.Application
	closed atomic.Bool // app has stopped drawing

	mu      sync.Mutex
	prog    []bf.Op
	src     sourceMap
	breaks  []int
	watches []int
}

func newDebugger(c *config.Config) *debugger {
	pr, pw := io.Pipe()
	d := &debugger{
		cfg:    c,
		stdin:  pr,
		inputw: pw,
		tape: tview.NewTextView().
			SetWrap(false),
		output: tview.NewTextView().
			SetMaxLines(1000),
		log: tview.NewTextView().
			SetMaxLines(1000),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		right: tview.NewFlex().
			SetDirection(tview.FlexRow),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.output.SetChangedFunc(func() { d.app.Draw() })
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.tape.SetBackgroundColor(tcell.ColorDarkBlue)
	d.output.SetBorder(true).SetTitle("output")
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.right.
		AddItem(d.output, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.cols.
		AddItem(d.tape, 70, 0, false).
		AddItem(d.right, 0, 1, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" || strings.Contains(t, " ") {
			return nil
		}
		for _, c := range debugCommands {
			if strings.HasPrefix(c, t) {
				entries = append(entries, c)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t + " ")
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := strings.TrimSpace(d.input.GetText())
		if text == "" {
			return
		}
		d.input.SetText("")
		d.command(text)
	})
	return d
}

// command executes a line typed into the debugger. Commands that talk to
// the runner do so from a new goroutine, as the runner may itself be
// waiting on the UI to draw a state change.
func (d *debugger) command(text string) {
	cmd, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "exit":
		d.inputw.Close()
		d.app.Stop()

	case "b", "break":
		if arg == "" {
			d.mu.Lock()
			d.breaks = nil
			d.mu.Unlock()
			go d.run.Debug("break", -1)
			log.Print("cleared breaks")
			return
		}
		ip, ok := d.source().resolve(arg)
		if !ok {
			log.Printf("invalid break %q", arg)
			return
		}
		d.mu.Lock()
		d.breaks = append(d.breaks, ip)
		sort.Ints(d.breaks)
		d.mu.Unlock()
		go d.run.Debug("break", ip)
		log.Printf("set break %s", d.describe(ip))

	case "c", "cont", "s", "step", "p", "pause":
		go d.run.Debug(cmd, 0)

	case "w", "watch":
		addr, ok := parseAddr(arg)
		if !ok {
			log.Printf("invalid address %q", arg)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches, addr)
		d.mu.Unlock()
		log.Printf("watching %.4X", addr)

	case "i", "input":
		if d.cfg.InputPath() != "" {
			log.Printf("input is read from %s", d.cfg.InputPath())
			return
		}
		go func() {
			if _, err := io.WriteString(d.inputw, arg+"\n"); err != nil {
				log.Printf("input: %v", err)
			}
		}()

	case "save":
		if arg == "" {
			log.Print("save: missing file name")
			return
		}
		go func() {
			var err error
			d.run.Inspect(func(m *bf.Interpreter) {
				err = machine.SaveSnapshot(arg, m)
			})
			if err != nil {
				log.Printf("save: %v", err)
				return
			}
			log.Printf("saved %s", arg)
		}()

	case "load":
		if arg == "" {
			log.Print("load: missing file name")
			return
		}
		go func() {
			m, err := machine.LoadSnapshot(arg)
			if err != nil {
				log.Printf("load: %v", err)
				return
			}
			d.loaded(m.Prog)
			configure(m, d.cfg, d.console, d.out)
			log.Printf("loaded %s", arg)
			d.run.Swap(m)
		}()

	default:
		log.Printf("unknown command %q", text)
	}
}

// parseAddr parses a tape address written in hex, as the tape pane shows
// addresses, with or without a 0x prefix.
func parseAddr(s string) (int, bool) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	addr, err := strconv.ParseUint(s, 16, 31)
	if err != nil {
		return 0, false
	}
	return int(addr), true
}

func (d *debugger) Run() error {
	defer d.closed.Store(true)
	return d.app.Run()
}

func (d *debugger) source() sourceMap {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.src
}

// setSource records the program being debugged and its source positions.
func (d *debugger) setSource(prog []bf.Op, src sourceMap) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prog, d.src = prog, src
}

// loaded records that prog was loaded from a snapshot. Source positions
// are kept only if it is the program that was last loaded from source.
func (d *debugger) loaded(prog []bf.Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !sameProg(prog, d.prog) {
		d.prog, d.src = prog, nil
	}
}

func sameProg(a, b []bf.Op) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// describe returns the instruction index ip with its source position.
func (d *debugger) describe(ip int) string {
	if p, ok := d.source().forIP(ip); ok {
		return fmt.Sprintf("%d (%v)", ip, p)
	}
	return strconv.Itoa(ip)
}

func (d *debugger) StateFunc(m *bf.Interpreter, k machine.StateKind) {
	if d.closed.Load() {
		return
	}
	var (
		tape  = d.tapeContent(m)
		state string
	)
	if k != machine.QuietState {
		state = stateMsg(d.source(), m, k)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case machine.StepState, machine.ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case machine.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case machine.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case machine.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		case machine.DoneState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGreen)
		}
		d.tape.SetText(tape)
		if k != machine.QuietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(src sourceMap, m *bf.Interpreter, k machine.StateKind) string {
	var (
		t   = m.Tape
		op  = "-"
		pos string
	)
	if !m.Done() {
		op = m.Prog[m.IP].String()
	}
	if p, ok := src.forIP(m.IP); ok {
		pos = p.String()
	}
	kind := "       "
	switch k {
	case machine.BreakState:
		kind = "[break]"
	case machine.StepState:
		kind = "[step] "
	case machine.PauseState:
		kind = "[pause]"
	case machine.HaltState:
		kind = "[HALT!]"
	case machine.DoneState:
		kind = "[done] "
	}
	return fmt.Sprintf("%5d %s %s %s\ncell [%.4X] = %.2X\nsegments %d, output %d bytes\n",
		m.IP, op, kind, pos, t.Addr(), t.Read(), t.Len(), len(m.Output()))
}

// tapeContent renders the tape segment that holds the cursor,
// followed by the breakpoints and watched cells.
func (d *debugger) tapeContent(m *bf.Interpreter) string {
	const cols = 16
	var (
		b     strings.Builder
		t     = m.Tape
		cur   = t.Addr()
		seg   = cur / bf.SegmentSize
		cells = t.Segment(seg)
	)
	for row := 0; row < bf.SegmentSize/cols; row++ {
		base := seg*bf.SegmentSize + row*cols
		fmt.Fprintf(&b, "%.4X ", base/cols)
		for col := 0; col < cols; col++ {
			v := cells[row*cols+col]
			if base+col == cur {
				fmt.Fprintf(&b, "[%.2X]", v)
			} else {
				fmt.Fprintf(&b, " %.2X ", v)
			}
		}
		b.WriteByte('\n')
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ip := range d.breaks {
		fmt.Fprintf(&b, "\nbrk! %d", ip)
		if p, ok := d.src.forIP(ip); ok {
			fmt.Fprintf(&b, " (%v)", p)
		}
	}
	for _, addr := range d.watches {
		fmt.Fprintf(&b, "\n[%.4X] %.2X", addr, t.Cell(addr))
	}
	return b.String()
}
