package machine

import (
	"bufio"
	"fmt"
	"io"

	"github.com/nf/bfx/bf"
)

// WriteDump writes a hex dump of every allocated cell of t to w,
// sixteen cells to a row, with the cursor's cell in brackets,
// followed by the output produced so far.
func WriteDump(w io.Writer, t *bf.Tape, out []byte) error {
	b := bufio.NewWriter(w)
	b.WriteString("     ")
	for i := 0; i < cols; i++ {
		fmt.Fprintf(b, " %2X ", i)
	}
	b.WriteString("\n")
	cur := t.Addr()
	for row := 0; row < t.Len()*rows; row++ {
		fmt.Fprintf(b, "\n%.4X ", row)
		for col := 0; col < cols; col++ {
			addr := row*cols + col
			if addr == cur {
				fmt.Fprintf(b, "[%.2X]", t.Cell(addr))
			} else {
				fmt.Fprintf(b, " %.2X ", t.Cell(addr))
			}
		}
	}
	b.WriteString("\nOUTPUT: ")
	b.Write(out)
	b.WriteString("\n")
	return b.Flush()
}
