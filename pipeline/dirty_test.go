package pipeline

import "testing"

func TestInvalidateMarksOverlappingBands(t *testing.T) {
	m := newDirtyMap(8, 240)

	m.Invalidate(100, 20) // rows 100..119 -> bands 12..14
	for _, tc := range []struct {
		tile int16
		want bool
	}{
		{11, false},
		{12, true},
		{13, true},
		{14, true},
		{15, false},
	} {
		if got := m.Dirty(tc.tile); got != tc.want {
			t.Fatalf("Dirty(%d) = %v, want %v", tc.tile, got, tc.want)
		}
	}
}

func TestInvalidateClipsToScreen(t *testing.T) {
	m := newDirtyMap(8, 240)

	m.Invalidate(-10, 20) // rows 0..9 after clipping
	if !m.Dirty(0) || !m.Dirty(1) || m.Dirty(2) {
		t.Fatalf("top clip: bits %#x", m.bits)
	}

	m.Clear()
	m.Invalidate(235, 50) // rows 235..239 after clipping
	if !m.Dirty(29) || m.Dirty(28) {
		t.Fatalf("bottom clip: bits %#x", m.bits)
	}

	m.Clear()
	m.Invalidate(300, 10)
	if m.Any() {
		t.Fatalf("off-screen span marked bits %#x", m.bits)
	}
	m.Invalidate(10, 0)
	if m.Any() {
		t.Fatal("zero-height span marked bands")
	}
}

func TestInvalidateHugeSpanClampsToScreen(t *testing.T) {
	m := newDirtyMap(8, 240)

	// Span end far past the int16 range: rows 100..239 after clamping.
	m.Invalidate(100, 32700)
	for i := int16(12); i <= 29; i++ {
		if !m.Dirty(i) {
			t.Fatalf("band %d not marked, bits %#x", i, m.bits)
		}
	}
	if m.Dirty(11) {
		t.Fatalf("band 11 marked, bits %#x", m.bits)
	}

	m.Clear()
	m.Invalidate(-32768, 32767) // rows 0..(-2): clips to nothing
	if m.Any() {
		t.Fatalf("wrapped span marked bands, bits %#x", m.bits)
	}
}

func TestForceRedrawAndClear(t *testing.T) {
	m := newDirtyMap(8, 240)
	if m.tiles() != 30 {
		t.Fatalf("tiles = %d, want 30", m.tiles())
	}

	m.ForceRedraw()
	for i := int16(0); i < 30; i++ {
		if !m.Dirty(i) {
			t.Fatalf("band %d not dirty after ForceRedraw", i)
		}
	}
	if m.Dirty(30) {
		t.Fatal("band past screen end dirty")
	}

	m.Clear()
	if m.Any() {
		t.Fatal("Any after Clear")
	}
}

func TestPartialLastBand(t *testing.T) {
	m := newDirtyMap(8, 236) // 29 full bands + one 4-row band
	if m.tiles() != 30 {
		t.Fatalf("tiles = %d, want 30", m.tiles())
	}
	m.Invalidate(232, 4)
	if !m.Dirty(29) {
		t.Fatal("partial last band not marked")
	}
}
