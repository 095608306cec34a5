// Package pipeline composites the screen as horizontal tile bands. Drawing
// code invalidates the spans it touches; each flush re-rasterizes only the
// dirty bands into a single reusable arena and blits them to the panel.
package pipeline

import (
	"errors"
	"image/color"

	"lumen/hal"
)

// maxTiles is the DirtyMap capacity. screen height / tile height must fit.
const maxTiles = 32

var ErrTooManyTiles = errors.New("pipeline: screen exceeds 32 tile bands, raise TileHeight")

// Target is the blit sink, normally a *panel.Device.
type Target interface {
	Size() (int16, int16)
	Blit(x, y, w, h int16, pixels []uint16) error
}

// Config adjusts the compositor. The zero value selects 8-pixel bands and
// white-on-black colors.
type Config struct {
	TileHeight int16
	Foreground uint16
	Background uint16
}

// Pipeline owns the dirty map and the band arena for one target.
type Pipeline struct {
	target Target
	dirty  DirtyMap

	width, height int16
	tileHeight    int16
	fg, bg        uint16

	arena []uint16
}

// New builds a compositor for target. The whole screen starts dirty, so the
// first flush paints everything.
func New(target Target, cfg Config) (*Pipeline, error) {
	if cfg.TileHeight <= 0 {
		cfg.TileHeight = 8
	}
	if cfg.Foreground == 0 && cfg.Background == 0 {
		cfg.Foreground = 0xFFFF
	}
	w, h := target.Size()
	if (h+cfg.TileHeight-1)/cfg.TileHeight > maxTiles {
		return nil, ErrTooManyTiles
	}
	p := &Pipeline{
		target:     target,
		dirty:      newDirtyMap(cfg.TileHeight, h),
		width:      w,
		height:     h,
		tileHeight: cfg.TileHeight,
		fg:         cfg.Foreground,
		bg:         cfg.Background,
		arena:      make([]uint16, int(w)*int(cfg.TileHeight)),
	}
	p.dirty.ForceRedraw()
	return p, nil
}

// Invalidate marks the vertical span [y, y+h) for repainting on the next
// flush.
func (p *Pipeline) Invalidate(y, h int16) { p.dirty.Invalidate(y, h) }

// ForceRedraw marks the whole screen for repainting.
func (p *Pipeline) ForceRedraw() { p.dirty.ForceRedraw() }

// Pending reports whether a flush would do any work.
func (p *Pipeline) Pending() bool { return p.dirty.Any() }

// FlushDirty re-rasterizes every dirty band and blits it. rasterize is
// called once per band with a context limited to that band; it repaints the
// band from scratch (the arena arrives pre-cleared to the background color).
// The band's dirty bit clears even when its blit fails, so a wedged bus
// does not pin the loop on one band; the caller decides whether to
// ForceRedraw after recovery. Returns the number of bands flushed.
func (p *Pipeline) FlushDirty(rasterize func(*RenderContext)) (int, error) {
	flushed := 0
	tiles := p.dirty.tiles()
	for t := int16(0); t < tiles; t++ {
		if !p.dirty.Dirty(t) {
			continue
		}
		p.dirty.clear(t)

		y := t * p.tileHeight
		bh := p.tileHeight
		if y+bh > p.height {
			bh = p.height - y
		}
		band := p.arena[:int(p.width)*int(bh)]
		for i := range band {
			band[i] = p.bg
		}
		ctx := RenderContext{
			Pix:          band,
			Width:        p.width,
			Height:       bh,
			Y:            y,
			ScreenHeight: p.height,
			FG:           p.fg,
			BG:           p.bg,
		}
		rasterize(&ctx)
		flushed++
		if err := p.target.Blit(0, y, p.width, bh, band); err != nil {
			return flushed, err
		}
	}
	return flushed, nil
}

// RenderContext is the drawing surface for one tile band. Coordinates are
// absolute screen coordinates; pixels outside the band clip silently, so
// drawing code paints the full screen each time and only the band's slice
// lands.
type RenderContext struct {
	Pix          []uint16
	Width        int16
	Height       int16
	Y            int16
	ScreenHeight int16
	FG           uint16
	BG           uint16
}

// Size implements drivers.Displayer: the full screen extent, so layout code
// positions text the same way regardless of which band is being flushed.
func (c *RenderContext) Size() (int16, int16) { return c.Width, c.ScreenHeight }

// SetPixel implements drivers.Displayer in absolute screen coordinates.
func (c *RenderContext) SetPixel(x, y int16, col color.RGBA) {
	c.Set(x, y, hal.RGB565(col.R, col.G, col.B))
}

// Display implements drivers.Displayer. The pipeline flushes the band; the
// context itself has nothing to push.
func (c *RenderContext) Display() error { return nil }

// Set writes one RGB565 pixel at absolute screen coordinates, clipping to
// the band.
func (c *RenderContext) Set(x, y int16, v uint16) {
	y -= c.Y
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return
	}
	c.Pix[int(y)*int(c.Width)+int(x)] = v
}

// FillRect paints a solid rectangle in absolute screen coordinates,
// clipping to the band.
func (c *RenderContext) FillRect(x, y, w, h int16, v uint16) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			c.Set(xx, yy, v)
		}
	}
}
