package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/bfx/bf"
	"github.com/nf/bfx/config"
	"github.com/nf/bfx/machine"
)

// reloadDelay is how long to wait for writes to a changed source file to
// settle before reloading it.
const reloadDelay = 100 * time.Millisecond

func devMode(c *config.Config, debug bool, progFile string) error {
	progFile = filepath.Clean(progFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(progFile)); err != nil {
		return err
	}

	var (
		in   io.Reader = os.Stdin
		out  io.Writer = os.Stdout
		dbg  *debugger
		quit = make(chan bool)
	)
	if debug {
		dbg = newDebugger(c)
		in, out = dbg.stdin, dbg.output
	}
	if c.InputPath() != "" {
		f, err := openInput(c, os.Stdin)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	console := machine.NewConsole(in)

	opts := machine.Options{GUI: c.Display.GUI, Dev: true}
	if c.Display.GUI {
		opts.Delay = c.Display.Delay.Duration
	}
	if dbg != nil {
		opts.State = dbg.StateFunc
	}
	runner := machine.NewRunner(opts)

	if dbg != nil {
		dbg.run = runner
		dbg.console, dbg.out = console, out
		log.SetPrefix("")
		log.SetOutput(dbg.log)
		go func() {
			if err := dbg.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("bfx: ")
			close(quit)
			runner.Debug("exit", 0)
		}()
	}

	progCh := make(chan *bf.Interpreter)
	go func() {
		started := false
		load := time.After(1 * time.Millisecond)
		for {
			select {
			case <-load:
				log.Printf("dev: load %s", filepath.Base(progFile))
				src, prog, err := loadProgram(progFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				if dbg != nil {
					dbg.setSource(prog, parseSourceMap(src))
				}
				m := configure(bf.New(prog), c, console, out)
				if !started {
					log.Printf("dev: start")
					progCh <- m
					started = true
				} else {
					log.Printf("dev: reset")
					runner.Swap(m)
				}
			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == progFile && !ev.IsAttrib() {
					load = time.After(reloadDelay)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()

	select {
	case m := <-progCh:
		return runner.Run(m)
	case <-quit:
		// The debugger exited before the program first loaded.
		return nil
	}
}
