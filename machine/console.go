package machine

import (
	"io"
	"log"
	"sync"

	"github.com/nf/bfx/bf"
)

// Console is an input device that reads bytes from an io.Reader (usually
// standard input) one at a time, blocking until each is available.
// Console implements bf.HaltReader.
type Console struct {
	// Prompt, if non-nil, is called before each read that must wait for
	// the reader.
	Prompt func()

	r     io.Reader
	start sync.Once
	input chan byte
	err   error // set before input is closed
}

// NewConsole returns a Console that reads from r.
func NewConsole(r io.Reader) *Console {
	return &Console{r: r, input: make(chan byte, 1)}
}

// ReadByte returns the next input byte, waiting for one if necessary.
// It returns io.EOF once the reader is exhausted.
func (c *Console) ReadByte() (byte, error) { return c.ReadByteOr(nil) }

// ReadByteOr is like ReadByte but returns bf.ErrHalted if done is closed
// before a byte is available.
func (c *Console) ReadByteOr(done <-chan struct{}) (byte, error) {
	c.start.Do(func() { go c.read() })
	select {
	case b, ok := <-c.input:
		return c.result(b, ok)
	default:
	}
	if c.Prompt != nil {
		c.Prompt()
	}
	select {
	case b, ok := <-c.input:
		return c.result(b, ok)
	case <-done:
		return 0, bf.ErrHalted
	}
}

func (c *Console) result(b byte, ok bool) (byte, error) {
	if !ok {
		return 0, c.err
	}
	return b, nil
}

func (c *Console) read() {
	for {
		var b [1]byte
		n, err := c.r.Read(b[:])
		if n == 1 {
			c.input <- b[0]
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("reading input: %v", err)
			}
			c.err = err
			close(c.input)
			return
		}
	}
}
