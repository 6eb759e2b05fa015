package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nf/bfx/bf"
	"github.com/nf/bfx/config"
)

// loadProgram reads and parses the named source file.
func loadProgram(name string) ([]byte, []bf.Op, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, nil, err
	}
	prog, err := bf.Parse(src)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	return src, prog, nil
}

// openInput opens the configured input file,
// or returns stdin if there is none.
func openInput(c *config.Config, stdin io.Reader) (io.ReadCloser, error) {
	name := c.InputPath()
	if name == "" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}

// configure applies the run settings in c to m and attaches its input and
// output. A nil out discards output, though it remains in m.Output.
func configure(m *bf.Interpreter, c *config.Config, in io.ByteReader, out io.Writer) *bf.Interpreter {
	m.Tape.MaxSegments = c.Run.MaxSegments
	m.EOF = c.Run.EOF
	m.In = in
	m.Out = out
	return m
}
