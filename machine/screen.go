package machine

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/nf/bfx/bf"
)

// Layout of the tape view, in pixels.
const (
	cols    = 16
	rows    = bf.SegmentSize / cols
	cellW   = 24
	cellH   = 18
	labelW  = 40
	statusH = 22
)

var viewSize = image.Point{labelW + cols*cellW, rows*cellH + statusH}

var (
	bgColor     = color.RGBA{0x10, 0x12, 0x1a, 0xff}
	labelColor  = color.RGBA{0x60, 0x68, 0x80, 0xff}
	zeroColor   = color.RGBA{0x48, 0x4c, 0x58, 0xff}
	cellColor   = color.RGBA{0xe0, 0xe4, 0xf0, 0xff}
	cursorColor = color.RGBA{0x20, 0x50, 0xa0, 0xff}
	statusColor = color.RGBA{0xf0, 0xc0, 0x40, 0xff}
)

// page is a copy of the segment of the tape that holds the cursor,
// along with enough interpreter state to draw a status line.
type page struct {
	seg   int
	cells []byte
	addr  int // absolute cursor position
	ip    int
	op    string
	out   int
	segs  int
	done  bool
}

func pageOf(m *bf.Interpreter) page {
	t := m.Tape
	p := page{
		seg:  t.Addr() / bf.SegmentSize,
		addr: t.Addr(),
		ip:   m.IP,
		op:   "-",
		out:  len(m.Output()),
		segs: t.Len(),
		done: m.Done(),
	}
	p.cells = t.Segment(p.seg)
	if !p.done {
		p.op = m.Prog[m.IP].String()
	}
	return p
}

// draw renders the page into dst, which should be viewSize pixels.
func (p *page) draw(dst *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bgColor), image.Point{}, draw.Src)
	if p.cells == nil {
		return
	}
	d := &font.Drawer{Dst: dst, Face: basicfont.Face7x13}
	text := func(x, y int, c color.Color, s string) {
		d.Src = image.NewUniform(c)
		d.Dot = fixed.P(x, y)
		d.DrawString(s)
	}
	base := p.seg * bf.SegmentSize
	for row := 0; row < rows; row++ {
		y := row*cellH + 13
		text(4, y, labelColor, fmt.Sprintf("%.4X", (base+row*cols)/cols))
		for col := 0; col < cols; col++ {
			var (
				i = row*cols + col
				v = p.cells[i]
				x = labelW + col*cellW
				c = cellColor
			)
			if base+i == p.addr {
				r := image.Rect(x, row*cellH, x+cellW-2, (row+1)*cellH-2)
				draw.Draw(dst, r, image.NewUniform(cursorColor), image.Point{}, draw.Src)
			} else if v == 0 {
				c = zeroColor
			}
			text(x+5, y, c, fmt.Sprintf("%.2X", v))
		}
	}
	status := fmt.Sprintf("ip %d %s  cell %.4X  segs %d  out %d", p.ip, p.op, p.addr, p.segs, p.out)
	if p.done {
		status += "  done"
	}
	text(4, rows*cellH+15, statusColor, status)
}
