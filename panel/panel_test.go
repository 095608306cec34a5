package panel

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers"

	"lumen/hal"
)

func newTestDevice(t *testing.T, id [3]byte) (*Device, *hal.SimBus) {
	t.Helper()
	sim := hal.NewSimBus(id)
	port := hal.DisplayPort{
		Bus: hal.NewSharedBus(sim),
		CS:  sim.CS(),
		DC:  sim.DC(),
		RST: sim.RST(),
	}
	d := New(port, Config{})
	if err := d.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return d, sim
}

func TestInitDetectsST7789(t *testing.T) {
	d, sim := newTestDevice(t, hal.IDST7789)
	if d.Detected() != ControllerST7789 {
		t.Fatalf("Detected = %v, want ST7789", d.Detected())
	}
	// Default orientation is landscape.
	if d.Width() != 320 || d.Height() != 240 {
		t.Fatalf("dims = %dx%d, want 320x240", d.Width(), d.Height())
	}
	if w, h := sim.Dims(); w != 320 || h != 240 {
		t.Fatalf("controller dims = %dx%d, want 320x240", w, h)
	}
}

func TestInitFallsBackToILI9341(t *testing.T) {
	d, _ := newTestDevice(t, hal.IDILI9341)
	if d.Detected() != ControllerILI9341 {
		t.Fatalf("Detected = %v, want ILI9341", d.Detected())
	}
	if d.Width() != 320 || d.Height() != 240 {
		t.Fatalf("dims = %dx%d, want 320x240", d.Width(), d.Height())
	}
}

func TestBlitTransactionShape(t *testing.T) {
	d, sim := newTestDevice(t, hal.IDST7789)
	sim.ResetOps()

	words := []uint16{1, 2, 3, 4, 5, 6, 7, 8}
	if err := d.Blit(10, 20, 4, 2, words); err != nil {
		t.Fatalf("Blit: %v", err)
	}

	// One chip-select pair brackets the whole operation.
	if n := sim.CountOps(hal.SimOpCSLow); n != 1 {
		t.Fatalf("CS asserted %d times, want 1", n)
	}
	if n := sim.CountOps(hal.SimOpCSHigh); n != 1 {
		t.Fatalf("CS released %d times, want 1", n)
	}
	for _, cmd := range []byte{cmdCASET, cmdRASET, cmdRAMWR} {
		if n := sim.CountCommands(cmd); n != 1 {
			t.Fatalf("command %#x issued %d times, want 1", cmd, n)
		}
	}

	got := sim.Words16()
	if len(got) != len(words) {
		t.Fatalf("streamed %d words, want %d", len(got), len(words))
	}
	for i := range words {
		if got[i] != words[i] {
			t.Fatalf("word %d = %d, want %d (row-major order)", i, got[i], words[i])
		}
	}

	// Window decode: corners land where addressed.
	if p := sim.Pixel(10, 20); p != 1 {
		t.Fatalf("pixel (10,20) = %d, want 1", p)
	}
	if p := sim.Pixel(13, 21); p != 8 {
		t.Fatalf("pixel (13,21) = %d, want 8", p)
	}
}

func TestBlitZeroAreaIsNoOp(t *testing.T) {
	d, sim := newTestDevice(t, hal.IDST7789)
	sim.ResetOps()

	if err := d.Blit(0, 0, 0, 5, nil); err != nil {
		t.Fatalf("zero width: %v", err)
	}
	if err := d.FillRect(0, 0, 5, 0, 0xFFFF); err != nil {
		t.Fatalf("zero height: %v", err)
	}
	if n := sim.CountOps(hal.SimOpCSLow); n != 0 {
		t.Fatalf("zero-area operation touched the bus (%d transactions)", n)
	}
}

func TestBlitShortBuffer(t *testing.T) {
	d, _ := newTestDevice(t, hal.IDST7789)
	if err := d.Blit(0, 0, 4, 2, make([]uint16, 7)); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("err = %v, want ErrShortBuffer", err)
	}
}

func TestRectBoundsChecked(t *testing.T) {
	d, _ := newTestDevice(t, hal.IDST7789)
	for _, tc := range []struct{ x, y, w, h int16 }{
		{-1, 0, 4, 4},
		{0, -1, 4, 4},
		{318, 0, 4, 4},
		{0, 238, 4, 4},
		{0, 0, 321, 1},
		{32767, 0, 2, 2}, // x+w wraps negative in int16
		{0, 32767, 2, 2},
	} {
		if err := d.FillRect(tc.x, tc.y, tc.w, tc.h, 0); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("FillRect(%d,%d,%d,%d) err = %v, want ErrOutOfBounds",
				tc.x, tc.y, tc.w, tc.h, err)
		}
	}
}

func TestFillRectPaints(t *testing.T) {
	d, sim := newTestDevice(t, hal.IDST7789)
	if err := d.FillRect(100, 50, 3, 2, 0xF800); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	if p := sim.Pixel(100, 50); p != 0xF800 {
		t.Fatalf("pixel (100,50) = %#x, want 0xF800", p)
	}
	if p := sim.Pixel(102, 51); p != 0xF800 {
		t.Fatalf("pixel (102,51) = %#x, want 0xF800", p)
	}
	if p := sim.Pixel(103, 50); p == 0xF800 {
		t.Fatal("fill leaked past the window")
	}
}

func TestBusTimeoutSurfacesAndReleasesBus(t *testing.T) {
	d, sim := newTestDevice(t, hal.IDST7789)
	sim.FillErr = hal.ErrBusTimeout
	sim.ResetOps()

	if err := d.FillRect(0, 0, 4, 4, 0); !errors.Is(err, hal.ErrBusTimeout) {
		t.Fatalf("err = %v, want ErrBusTimeout", err)
	}
	// Chip select must be released on the error path.
	if lo, hi := sim.CountOps(hal.SimOpCSLow), sim.CountOps(hal.SimOpCSHigh); lo != hi {
		t.Fatalf("CS asserted %d times, released %d", lo, hi)
	}

	// The bus stays usable for the next operation.
	sim.FillErr = nil
	if err := d.FillRect(0, 0, 4, 4, 0); err != nil {
		t.Fatalf("FillRect after fault: %v", err)
	}
}

func TestSetOrientation(t *testing.T) {
	d, sim := newTestDevice(t, hal.IDST7789)

	if err := d.SetOrientation(drivers.Rotation0, false); err != nil {
		t.Fatalf("SetOrientation: %v", err)
	}
	if d.Width() != 240 || d.Height() != 320 {
		t.Fatalf("portrait dims = %dx%d, want 240x320", d.Width(), d.Height())
	}
	if w, h := sim.Dims(); w != 240 || h != 320 {
		t.Fatalf("controller dims = %dx%d, want 240x320", w, h)
	}

	if err := d.SetOrientation(drivers.Rotation270, true); err != nil {
		t.Fatalf("SetOrientation: %v", err)
	}
	if d.Width() != 320 || d.Height() != 240 {
		t.Fatalf("landscape dims = %dx%d, want 320x240", d.Width(), d.Height())
	}
}

func TestOperationsBeforeInit(t *testing.T) {
	sim := hal.NewSimBus(hal.IDST7789)
	port := hal.DisplayPort{
		Bus: hal.NewSharedBus(sim),
		CS:  sim.CS(),
		DC:  sim.DC(),
		RST: sim.RST(),
	}
	d := New(port, Config{})

	if err := d.FillRect(0, 0, 1, 1, 0); !errors.Is(err, ErrNotReady) {
		t.Fatalf("FillRect before Init: %v, want ErrNotReady", err)
	}
	if err := d.SetWindow(0, 0, 1, 1); !errors.Is(err, ErrNotReady) {
		t.Fatalf("SetWindow before Init: %v, want ErrNotReady", err)
	}
	if d.Width() != 0 || d.Height() != 0 {
		t.Fatalf("dims before Init = %dx%d, want 0x0", d.Width(), d.Height())
	}

	var nilDev *Device
	if nilDev.Width() != 0 {
		t.Fatal("nil device Width != 0")
	}
	if err := nilDev.FillRect(0, 0, 1, 1, 0); !errors.Is(err, ErrNotReady) {
		t.Fatalf("nil device FillRect: %v, want ErrNotReady", err)
	}
}
