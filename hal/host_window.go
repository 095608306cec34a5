//go:build !tinygo

package hal

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"lumen/internal/buildinfo"
)

// RunWindow starts a desktop window that presents the simulated panel's
// graphics RAM. It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error) error {
	h := New().(*hostHAL)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	w, hgt := h.sim.Dims()
	ebiten.SetWindowTitle("Lumen (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(w*2, hgt*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []uint16
	step    func() error
}

func (g *hostGame) Update() error {
	g.h.t.advance()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	w, h := g.h.sim.Dims()
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		g.scratch = make([]uint16, w*h)
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(w, h)
	}

	g.h.sim.Snapshot(g.scratch)

	dst := g.img.Pix
	for i, p := range g.scratch {
		r, gg, b := RGB888From565(p)
		j := i * 4
		if j+3 >= len(dst) {
			break
		}
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.ReplacePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.h.sim.Dims()
	return w, h
}
