// Command bfx executes Brainfuck programs.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/nf/bfx/bf"
	"github.com/nf/bfx/config"
	"github.com/nf/bfx/machine"
)

func main() {
	log.SetPrefix("bfx: ")
	log.SetFlags(0)

	// Settings that may also come from bfx.toml; see overrideConfig.
	flag.Bool("visual", false, "print the tape and output after each instruction")
	flag.Bool("gui", false, "show the tape in a window")
	flag.Duration("delay", config.DefaultDelay, "pause between instructions in visual and GUI modes")
	flag.String("eof", "block", "behaviour of input at end of input: `mode` is block, zero or keep")
	flag.String("input", "", "read program input from `file` instead of standard input")
	flag.Int("max_segments", 0, "limit the tape to `n` segments of 256 cells (0 means no limit)")

	var (
		devFlag   = flag.Bool("dev", false, "enable developer mode (re-run the program when its source changes)")
		debugFlag = flag.Bool("debug", false, "enable debugger (implies -dev)")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-visual] [-gui] [flags] <program.bf>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [-gui] <-dev | -debug> <program.bf>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nSettings are also read from the nearest %s file\n", config.FileName)
		fmt.Fprintf(os.Stderr, "at or above the program's directory. Flags take precedence.\n\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	progFile := flag.Arg(0)

	c, err := config.FindAndLoad(filepath.Dir(progFile))
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		if err := overrideConfig(c, f.Name, f.Value.String()); err != nil {
			log.Fatalf("-%s: %v", f.Name, err)
		}
	})
	if err := c.Validate(); err != nil {
		log.Fatal(err)
	}

	if *devFlag || *debugFlag {
		if err := devMode(c, *debugFlag, progFile); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err = run(c, progFile, os.Stdin, os.Stdout)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

// overrideConfig applies the value of the named command-line flag to c.
// Flags that are not settings are ignored.
func overrideConfig(c *config.Config, name, value string) error {
	var err error
	switch name {
	case "visual":
		c.Display.Visual, err = strconv.ParseBool(value)
	case "gui":
		c.Display.GUI, err = strconv.ParseBool(value)
	case "delay":
		c.Display.Delay.Duration, err = time.ParseDuration(value)
	case "eof":
		c.Run.EOF, err = bf.ParseEOFMode(value)
	case "input":
		// Relative to the working directory, not the config file.
		c.Run.Input, err = filepath.Abs(value)
	case "max_segments":
		c.Run.MaxSegments, err = strconv.Atoi(value)
	}
	return err
}

// run executes the program in progFile, writing to stdout. Input comes
// from the configured input file, or from stdin if there is none.
func run(c *config.Config, progFile string, stdin io.Reader, stdout io.Writer) error {
	_, prog, err := loadProgram(progFile)
	if err != nil {
		return err
	}
	in, err := openInput(c, stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	var (
		console = machine.NewConsole(in)
		m       = configure(bf.New(prog), c, console, nil)
		opts    = machine.Options{GUI: c.Display.GUI}
	)
	if c.Display.Visual {
		out := bufio.NewWriter(stdout)
		defer out.Flush()
		opts.Delay = c.Display.Delay.Duration
		opts.State = visualState(out)
		console.Prompt = func() {
			out.WriteString("INPUT: ")
			out.Flush()
		}
	} else {
		// Each byte is written as it is produced.
		m.Out = stdout
		if c.Display.GUI {
			opts.Delay = c.Display.Delay.Duration
		}
	}
	return machine.NewRunner(opts).Run(m)
}

// visualState returns a StateFunc that redraws the terminal with a dump of
// the tape and the output so far.
func visualState(w *bufio.Writer) machine.StateFunc {
	return func(m *bf.Interpreter, k machine.StateKind) {
		w.WriteString("\x1b[H\x1b[2J")
		if err := machine.WriteDump(w, m.Tape, m.Output()); err != nil {
			log.Printf("visual: %v", err)
		}
		w.Flush()
	}
}
