package app

import (
	"image/color"
	"unicode/utf8"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"lumen/hal"
	"lumen/panel"
)

// showFault paints an unrecoverable bring-up error on the panel so a unit
// without a serial console still shows why it stopped. Best effort: the
// panel may itself be the fault, in which case only the log line survives.
func showFault(d *panel.Device, err error) {
	w, h := d.Size()
	if w == 0 || h == 0 {
		return
	}
	_ = d.FillScreen(hal.RGB565(0x40, 0x00, 0x00))

	font := &proggy.TinySZ8pt7b
	fg := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	const lineHeight = 12
	cols := int16(w / 8)

	y := int16(lineHeight)
	for _, line := range []string{"FAULT", err.Error()} {
		for len(line) > 0 && y < h {
			chunk, rest := takeRunes(line, cols)
			tinyfont.WriteLine(d, font, 4, y, chunk, fg)
			y += lineHeight
			line = rest
		}
	}
}

// takeRunes splits s after at most n runes.
func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	return s[:i], s[i:]
}
