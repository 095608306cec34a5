package pipeline

// DirtyMap tracks which horizontal screen bands changed since the last
// flush. One bit per band, so a flush touches only the bands that actually
// need repainting instead of streaming the full frame.
type DirtyMap struct {
	bits       uint32
	tileHeight int16
	height     int16
}

func newDirtyMap(tileHeight, height int16) DirtyMap {
	return DirtyMap{tileHeight: tileHeight, height: height}
}

// Invalidate marks every band overlapping the vertical span [y, y+h).
// Spans outside the screen are clipped; a span that clips to nothing is a
// no-op. Arithmetic runs in int so a span end past the int16 range still
// clamps to the screen instead of wrapping.
func (m *DirtyMap) Invalidate(y, h int16) {
	if h <= 0 {
		return
	}
	lo := int(y)
	hi := int(y) + int(h) - 1
	if lo < 0 {
		lo = 0
	}
	if hi >= int(m.height) {
		hi = int(m.height) - 1
	}
	if lo > hi {
		return
	}
	for t := lo / int(m.tileHeight); t <= hi/int(m.tileHeight); t++ {
		m.bits |= 1 << uint(t)
	}
}

// ForceRedraw marks every band dirty.
func (m *DirtyMap) ForceRedraw() {
	n := m.tiles()
	if n >= 32 {
		m.bits = ^uint32(0)
		return
	}
	m.bits = 1<<uint(n) - 1
}

// Clear drops all dirty marks.
func (m *DirtyMap) Clear() { m.bits = 0 }

// Dirty reports whether band t needs repainting.
func (m *DirtyMap) Dirty(t int16) bool { return m.bits&(1<<uint(t)) != 0 }

// Any reports whether any band needs repainting.
func (m *DirtyMap) Any() bool { return m.bits != 0 }

func (m *DirtyMap) clear(t int16) { m.bits &^= 1 << uint(t) }

// tiles is the band count, rounding the last partial band up.
func (m *DirtyMap) tiles() int16 {
	return (m.height + m.tileHeight - 1) / m.tileHeight
}
