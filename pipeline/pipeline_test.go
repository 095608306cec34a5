package pipeline

import (
	"errors"
	"testing"
)

type blitRec struct {
	x, y, w, h int16
	words      []uint16
}

type fakeTarget struct {
	w, h  int16
	blits []blitRec
	err   error
}

func (f *fakeTarget) Size() (int16, int16) { return f.w, f.h }

func (f *fakeTarget) Blit(x, y, w, h int16, pixels []uint16) error {
	if f.err != nil {
		return f.err
	}
	f.blits = append(f.blits, blitRec{x, y, w, h, append([]uint16(nil), pixels...)})
	return nil
}

func TestNewRejectsTooManyBands(t *testing.T) {
	tgt := &fakeTarget{w: 240, h: 320}
	if _, err := New(tgt, Config{TileHeight: 8}); !errors.Is(err, ErrTooManyTiles) {
		t.Fatalf("err = %v, want ErrTooManyTiles", err)
	}
	if _, err := New(tgt, Config{TileHeight: 10}); err != nil {
		t.Fatalf("TileHeight 10: %v", err)
	}
}

func TestFirstFlushPaintsWholeScreen(t *testing.T) {
	tgt := &fakeTarget{w: 64, h: 32}
	p, err := New(tgt, Config{TileHeight: 8, Background: 0x1234})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !p.Pending() {
		t.Fatal("new pipeline has nothing pending")
	}

	n, err := p.FlushDirty(func(*RenderContext) {})
	if err != nil {
		t.Fatalf("FlushDirty: %v", err)
	}
	if n != 4 || len(tgt.blits) != 4 {
		t.Fatalf("flushed %d bands, %d blits, want 4", n, len(tgt.blits))
	}
	for i, b := range tgt.blits {
		if b.x != 0 || b.y != int16(i*8) || b.w != 64 || b.h != 8 {
			t.Fatalf("blit %d = %+v", i, b)
		}
		for _, w := range b.words {
			if w != 0x1234 {
				t.Fatalf("blit %d not cleared to background: %#x", i, w)
			}
		}
	}
	if p.Pending() {
		t.Fatal("pending after full flush")
	}
}

func TestFlushRepaintsOnlyDirtyBands(t *testing.T) {
	tgt := &fakeTarget{w: 64, h: 32}
	p, _ := New(tgt, Config{TileHeight: 8})
	if _, err := p.FlushDirty(func(*RenderContext) {}); err != nil {
		t.Fatalf("first flush: %v", err)
	}
	tgt.blits = nil

	p.Invalidate(10, 1)
	n, err := p.FlushDirty(func(*RenderContext) {})
	if err != nil {
		t.Fatalf("FlushDirty: %v", err)
	}
	if n != 1 || len(tgt.blits) != 1 {
		t.Fatalf("flushed %d bands, %d blits, want 1", n, len(tgt.blits))
	}
	if tgt.blits[0].y != 8 || tgt.blits[0].h != 8 {
		t.Fatalf("blit = %+v, want band at y=8", tgt.blits[0])
	}

	tgt.blits = nil
	n, err = p.FlushDirty(func(*RenderContext) {})
	if err != nil || n != 0 || len(tgt.blits) != 0 {
		t.Fatalf("idempotent flush: n=%d blits=%d err=%v", n, len(tgt.blits), err)
	}
}

func TestRenderContextAbsoluteCoordinates(t *testing.T) {
	tgt := &fakeTarget{w: 16, h: 32}
	p, _ := New(tgt, Config{TileHeight: 8})

	_, err := p.FlushDirty(func(ctx *RenderContext) {
		// Absolute coordinates: only the band containing row 10 keeps it.
		ctx.Set(5, 10, 0xBEEF)
	})
	if err != nil {
		t.Fatalf("FlushDirty: %v", err)
	}

	for _, b := range tgt.blits {
		want := b.y == 8
		got := false
		for i, w := range b.words {
			if w == 0xBEEF {
				if i != (10-8)*16+5 {
					t.Fatalf("pixel at index %d in band y=%d", i, b.y)
				}
				got = true
			}
		}
		if got != want {
			t.Fatalf("band y=%d contains pixel: %v", b.y, got)
		}
	}
}

func TestRenderContextClipsOutsideBand(t *testing.T) {
	ctx := RenderContext{
		Pix:          make([]uint16, 16*8),
		Width:        16,
		Height:       8,
		Y:            8,
		ScreenHeight: 32,
	}
	ctx.Set(0, 0, 0xFFFF)  // above the band
	ctx.Set(0, 16, 0xFFFF) // below the band
	ctx.Set(-1, 9, 0xFFFF)
	ctx.Set(16, 9, 0xFFFF)
	for i, w := range ctx.Pix {
		if w != 0 {
			t.Fatalf("clipped write landed at %d", i)
		}
	}
	if w, h := ctx.Size(); w != 16 || h != 32 {
		t.Fatalf("Size = %dx%d, want full screen 16x32", w, h)
	}
}

func TestFlushErrorDropsBandAndContinues(t *testing.T) {
	tgt := &fakeTarget{w: 64, h: 32}
	p, _ := New(tgt, Config{TileHeight: 8})

	boom := errors.New("bus stalled")
	tgt.err = boom
	n, err := p.FlushDirty(func(*RenderContext) {})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected fault", err)
	}
	if n != 1 {
		t.Fatalf("flushed %d bands before fault, want 1", n)
	}

	// The failed band's mark is dropped; the rest flush on retry.
	tgt.err = nil
	n, err = p.FlushDirty(func(*RenderContext) {})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if n != 3 {
		t.Fatalf("retry flushed %d bands, want 3", n)
	}
}
