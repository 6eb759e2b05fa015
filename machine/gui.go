package machine

import (
	"image"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/bfx/bf"
)

type gui struct {
	r *Runner

	update     chan *bf.Interpreter
	updateDone chan bool

	page  page
	buf   screen.Buffer
	tex   screen.Texture
	dirty bool
}

func newGUI(r *Runner) *gui {
	return &gui{
		r:          r,
		update:     make(chan *bf.Interpreter),
		updateDone: make(chan bool),
	}
}

// updateChan returns the channel on which the runner offers the interpreter
// to the GUI between steps. It is nil, and so never ready, without a GUI.
func (g *gui) updateChan() chan<- *bf.Interpreter {
	if g == nil {
		return nil
	}
	return g.update
}

func (g *gui) Run(exit <-chan bool) (err error) {
	driver.Main(func(s screen.Screen) {
		w, werr := s.NewWindow(&screen.NewWindowOptions{
			Title:  "bfx",
			Width:  viewSize.X,
			Height: viewSize.Y,
		})
		if werr != nil {
			err = werr
			return
		}
		defer w.Release()

		if g.buf, err = s.NewBuffer(viewSize); err != nil {
			return
		}
		if g.tex, err = s.NewTexture(viewSize); err != nil {
			return
		}
		defer g.release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					return
				}
			}
		}()

		var sz size.Event
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				g.dirty = true

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				if e.Direction != key.DirPress {
					break
				}
				switch {
				case e.Code == key.CodeSpacebar:
					go g.r.Debug("toggle", 0)
				case e.Rune == 's':
					go g.r.Debug("step", 0)
				case e.Code == key.CodeEscape:
					return
				}

			case paint.Event:
				g.dirty = true

			case update:
				select {
				case m := <-g.update:
					g.page = pageOf(m)
					g.updateDone <- true
					g.dirty = true
				default:
					// Interpreter is busy.
				}
				if g.dirty && sz.WidthPx > 0 {
					g.page.draw(g.buf.RGBA())
					g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
					w.Scale(sz.Bounds(), g.tex, g.tex.Bounds(), draw.Src, nil)
					w.Publish()
					g.dirty = false
				}

			case error:
				log.Print(e)
			}
		}
	})
	return err
}

func (g *gui) release() {
	if g.tex != nil {
		g.tex.Release()
	}
	if g.buf != nil {
		g.buf.Release()
	}
}
