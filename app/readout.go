package app

import (
	"image/color"
	"strconv"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"

	"lumen/hal"
	"lumen/internal/buildinfo"
	"lumen/pipeline"
)

// Screen layout, landscape 320x240. Only the value text and the bar change
// between samples, so those are the only spans a sample invalidates.
const (
	headerBaseline = 14
	dividerY       = 22

	valueY        = 80
	valueH        = 48
	valueBaseline = 112

	barX = 20
	barY = 160
	barH = 24

	fullScaleMV = 3300
)

// readout is the demo instrument task: a synthesized voltage channel
// rendered as a numeric value and a bar graph.
type readout struct {
	w, h int16

	mv    int32
	dir   int32
	shown int32
	rng   uint32

	text string
	rec  []byte
}

func newReadout(w, h int16) *readout {
	r := &readout{w: w, h: h, dir: 1, rng: 0x2545F491}
	r.text = formatMillivolts(0)
	return r
}

// sample advances the synthesized channel and invalidates the spans whose
// pixels change. The header and frame never re-dirty after the initial
// full repaint.
func (r *readout) sample(tick uint64, pipe *pipeline.Pipeline) {
	r.mv += r.dir * 7
	if r.mv >= fullScaleMV {
		r.mv, r.dir = fullScaleMV, -1
	} else if r.mv <= 0 {
		r.mv, r.dir = 0, 1
	}

	r.rng = r.rng*1664525 + 1013904223
	v := r.mv + int32(r.rng>>28) - 8
	if v < 0 {
		v = 0
	} else if v > fullScaleMV {
		v = fullScaleMV
	}
	if v == r.shown {
		return
	}
	r.shown = v
	r.text = formatMillivolts(v)

	pipe.Invalidate(valueY, valueH)
	pipe.Invalidate(barY, barH)
}

// record is the line appended to the reading log.
func (r *readout) record() []byte {
	r.rec = strconv.AppendInt(r.rec[:0], int64(r.shown), 10)
	r.rec = append(r.rec, " mV"...)
	return r.rec
}

var (
	colText   = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	colValue  = color.RGBA{R: 0x30, G: 0xFF, B: 0x80, A: 0xFF}
	colBar    = hal.RGB565(0x30, 0xFF, 0x80)
	colFrame  = hal.RGB565(0x50, 0x50, 0x50)
	colDivide = hal.RGB565(0x30, 0x30, 0x30)
)

// render repaints one tile band. Everything draws in absolute coordinates
// and the context clips to its band, so this draws the full layout every
// time and only the band's pixels land.
func (r *readout) render(ctx *pipeline.RenderContext) {
	tinyfont.WriteLine(ctx, &proggy.TinySZ8pt7b, 8, headerBaseline,
		"LUMEN VOLTMETER "+buildinfo.Short(), colText)
	ctx.FillRect(0, dividerY, r.w, 1, colDivide)

	tinyfont.WriteLine(ctx, &freemono.Bold12pt7b, 70, valueBaseline, r.text, colValue)

	barW := r.w - 2*barX
	ctx.FillRect(barX-1, barY-1, barW+2, 1, colFrame)
	ctx.FillRect(barX-1, barY+barH, barW+2, 1, colFrame)
	ctx.FillRect(barX-1, barY, 1, barH, colFrame)
	ctx.FillRect(barX+barW, barY, 1, barH, colFrame)
	fill := int16(int32(barW) * r.shown / fullScaleMV)
	ctx.FillRect(barX, barY, fill, barH, colBar)
}

// formatMillivolts renders millivolts as "1.234 V".
func formatMillivolts(mv int32) string {
	whole := mv / 1000
	frac := mv % 1000
	b := make([]byte, 0, 8)
	b = strconv.AppendInt(b, int64(whole), 10)
	b = append(b, '.')
	b = append(b, byte('0'+frac/100), byte('0'+frac/10%10), byte('0'+frac%10))
	b = append(b, " V"...)
	return string(b)
}
