// Package panel drives an SPI-attached ST7789/ILI9341 class display
// controller: reset and identity detection, register-level init, window
// addressing, and DMA-backed fill/blit primitives in 16-bit RGB565.
//
// Every public operation is one bus transaction: the SPI peripheral is
// reprogrammed on entry, chip select is held for the duration, and both are
// restored before returning, error paths included. The driver therefore
// coexists with other devices on the same bus as long as they follow the
// same discipline (see hal.SharedBus).
package panel

import (
	"errors"
	"image/color"
	"time"

	"tinygo.org/x/drivers"

	"lumen/hal"
)

var (
	ErrNotReady    = errors.New("panel: not ready")
	ErrOutOfBounds = errors.New("panel: coordinates outside display area")
	ErrShortBuffer = errors.New("panel: pixel buffer shorter than window")
)

// Controller identifies the detected display controller family.
type Controller uint8

const (
	ControllerUnknown Controller = iota
	ControllerST7789
	ControllerILI9341
)

func (c Controller) String() string {
	switch c {
	case ControllerST7789:
		return "ST7789"
	case ControllerILI9341:
		return "ILI9341"
	default:
		return "unknown"
	}
}

type state uint8

const (
	stateUninitialized state = iota
	stateResetting
	stateDetecting
	stateInitializing
	stateReady
)

// Native controller geometry (portrait). Odd rotations swap the axes.
const (
	nativeWidth  = 240
	nativeHeight = 320
)

// Config adjusts the panel driver. The zero value selects landscape
// orientation, RGB order, and a 40 MHz SPI clock.
type Config struct {
	Rotation  drivers.Rotation
	BGR       bool
	Frequency uint32
	Logger    hal.Logger
}

// Device is the exclusive handle to one display controller. Create it with
// New, bring it up with Init, and thread it by reference to everything that
// draws.
type Device struct {
	bus *hal.SharedBus
	cs  hal.Pin
	dc  hal.Pin
	rst hal.Pin
	bl  hal.Pin

	state      state
	controller Controller

	rotation      drivers.Rotation
	bgr           bool
	width, height int16

	freq uint32
	log  hal.Logger
	buf  [4]byte
}

// New wires a device to the given display port. The panel is not touched
// until Init.
func New(port hal.DisplayPort, cfg Config) *Device {
	if cfg.Frequency == 0 {
		cfg.Frequency = 40_000_000
	}
	if cfg.Rotation == 0 {
		cfg.Rotation = drivers.Rotation90 // landscape 320x240
	}
	return &Device{
		bus:      port.Bus,
		cs:       port.CS,
		dc:       port.DC,
		rst:      port.RST,
		bl:       port.BL,
		rotation: cfg.Rotation % 4,
		bgr:      cfg.BGR,
		freq:     cfg.Frequency,
		log:      cfg.Logger,
	}
}

// Init resets the controller, detects its family via the vendor read-ID
// command, runs the matching init table, and programs the configured
// orientation. The ST7789 identity selects the ST7789 table; any other
// answer falls back to the ILI9341 table.
func (d *Device) Init() error {
	if d == nil || d.bus == nil {
		return ErrNotReady
	}

	d.state = stateResetting
	d.reset()

	d.state = stateDetecting
	id, err := d.readID()
	if err != nil {
		d.state = stateUninitialized
		return err
	}
	if id == st7789ID {
		d.controller = ControllerST7789
	} else {
		d.controller = ControllerILI9341
	}
	d.logLine("panel: detected " + d.controller.String())

	d.state = stateInitializing
	table := ili9341Init
	if d.controller == ControllerST7789 {
		table = st7789Init
	}
	if err := d.runInit(table); err != nil {
		d.state = stateUninitialized
		return err
	}

	err = d.transaction(func(bus hal.Bus) error {
		return d.applyOrientation(bus, d.rotation, d.bgr)
	})
	if err != nil {
		d.state = stateUninitialized
		return err
	}

	d.state = stateReady
	if d.bl != nil {
		d.bl.High()
	}
	return nil
}

// reset pulses the hardware reset line. The controller needs the line held
// low, then a settle period before it accepts commands.
func (d *Device) reset() {
	d.rst.Low()
	time.Sleep(10 * time.Millisecond)
	d.rst.High()
	time.Sleep(120 * time.Millisecond)
}

// readID issues the read-ID command, clocks one dummy byte, and reads the
// three identity bytes.
func (d *Device) readID() ([3]byte, error) {
	var id [3]byte
	err := d.transaction(func(bus hal.Bus) error {
		d.dc.Low()
		if err := bus.Tx([]byte{cmdRDDID}, nil); err != nil {
			return err
		}
		d.dc.High()
		var raw [4]byte
		if err := bus.Tx(nil, raw[:]); err != nil {
			return err
		}
		copy(id[:], raw[1:])
		return nil
	})
	return id, err
}

func (d *Device) runInit(table []initEntry) error {
	return d.transaction(func(bus hal.Bus) error {
		for _, e := range table {
			if err := d.writeCmd(bus, e.cmd, e.params...); err != nil {
				return err
			}
			delay := e.delay
			if delay == 0 {
				delay = time.Millisecond
			}
			time.Sleep(delay)
		}
		return nil
	})
}

// transaction runs fn with the bus programmed for 8-bit command traffic and
// the panel's chip select asserted.
func (d *Device) transaction(fn func(hal.Bus) error) error {
	cfg := hal.BusConfig{Frequency: d.freq, Width: hal.Width8}
	return d.bus.Transaction(cfg, d.cs, fn)
}

// writeCmd sends one command byte and its parameters. Chip select is
// managed by the surrounding transaction, not here.
func (d *Device) writeCmd(bus hal.Bus, cmd byte, params ...byte) error {
	d.dc.Low()
	if err := bus.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	d.dc.High()
	if len(params) == 0 {
		return nil
	}
	return bus.Tx(params, nil)
}

// setWindow programs the column and row address windows and issues the
// memory-write command, leaving the controller primed for pixel data.
// Address ranges travel as packed (start<<16)|end words, split big-endian
// on the wire.
func (d *Device) setWindow(bus hal.Bus, x, y, w, h int16) error {
	cols := uint32(uint16(x))<<16 | uint32(uint16(x+w-1))
	d.buf = [4]byte{byte(cols >> 24), byte(cols >> 16), byte(cols >> 8), byte(cols)}
	if err := d.writeCmd(bus, cmdCASET, d.buf[:]...); err != nil {
		return err
	}
	rows := uint32(uint16(y))<<16 | uint32(uint16(y+h-1))
	d.buf = [4]byte{byte(rows >> 24), byte(rows >> 16), byte(rows >> 8), byte(rows)}
	if err := d.writeCmd(bus, cmdRASET, d.buf[:]...); err != nil {
		return err
	}
	return d.writeCmd(bus, cmdRAMWR)
}

// SetWindow programs the addressable window as its own transaction. Fill
// and blit program their window themselves; this entry point serves callers
// that stream pixel data through some other path.
func (d *Device) SetWindow(x, y, w, h int16) error {
	if d == nil || d.state != stateReady {
		return ErrNotReady
	}
	return d.transaction(func(bus hal.Bus) error {
		return d.setWindow(bus, x, y, w, h)
	})
}

// checkRect validates a rectangle against the panel extent. Sums run in int
// so coordinates near the int16 limit reject instead of wrapping negative
// and slipping past the guard.
func (d *Device) checkRect(x, y, w, h int16) error {
	if x < 0 || y < 0 || w < 0 || h < 0 ||
		int(x)+int(w) > int(d.width) || int(y)+int(h) > int(d.height) {
		return ErrOutOfBounds
	}
	return nil
}

// FillRect paints a solid rectangle. The fast path: the DMA channel
// retransmits one 16-bit word w*h times without touching memory per pixel.
// A zero-area rectangle is a no-op, not an error.
func (d *Device) FillRect(x, y, w, h int16, c uint16) error {
	if d == nil || d.state != stateReady {
		return ErrNotReady
	}
	if w == 0 || h == 0 {
		return nil
	}
	if err := d.checkRect(x, y, w, h); err != nil {
		return err
	}
	return d.transaction(func(bus hal.Bus) error {
		if err := d.setWindow(bus, x, y, w, h); err != nil {
			return err
		}
		if err := bus.Configure(hal.BusConfig{Frequency: d.freq, Width: hal.Width16}); err != nil {
			return err
		}
		return bus.Fill16(c, int(w)*int(h))
	})
}

// Blit streams w*h pixels from the caller's buffer to the window at (x, y),
// row-major. The buffer must be DMA-reachable memory and must stay alive
// until Blit returns.
func (d *Device) Blit(x, y, w, h int16, pixels []uint16) error {
	if d == nil || d.state != stateReady {
		return ErrNotReady
	}
	if w == 0 || h == 0 {
		return nil
	}
	if err := d.checkRect(x, y, w, h); err != nil {
		return err
	}
	n := int(w) * int(h)
	if len(pixels) < n {
		return ErrShortBuffer
	}
	return d.transaction(func(bus hal.Bus) error {
		if err := d.setWindow(bus, x, y, w, h); err != nil {
			return err
		}
		if err := bus.Configure(hal.BusConfig{Frequency: d.freq, Width: hal.Width16}); err != nil {
			return err
		}
		return bus.Write16(pixels[:n])
	})
}

// applyOrientation writes MADCTL for the rotation and derives the reported
// dimensions: odd rotations are landscape, even ones portrait.
func (d *Device) applyOrientation(bus hal.Bus, rotation drivers.Rotation, bgr bool) error {
	madctl := uint8(0)
	switch rotation % 4 {
	case drivers.Rotation0:
	case drivers.Rotation90:
		madctl = madctlMX | madctlMV
	case drivers.Rotation180:
		madctl = madctlMX | madctlMY
	case drivers.Rotation270:
		madctl = madctlMY | madctlMV
	}
	if bgr {
		madctl |= madctlBGR
	}
	if err := d.writeCmd(bus, cmdMADCTL, madctl); err != nil {
		return err
	}

	d.rotation = rotation % 4
	d.bgr = bgr
	if d.rotation%2 == 1 {
		d.width, d.height = nativeHeight, nativeWidth
	} else {
		d.width, d.height = nativeWidth, nativeHeight
	}
	return nil
}

// SetOrientation rotates the panel and updates the reported dimensions.
// The caller owns repainting; the screen content is stale afterwards.
func (d *Device) SetOrientation(rotation drivers.Rotation, bgr bool) error {
	if d == nil || d.state != stateReady {
		return ErrNotReady
	}
	return d.transaction(func(bus hal.Bus) error {
		return d.applyOrientation(bus, rotation, bgr)
	})
}

// Rotation returns the current rotation.
func (d *Device) Rotation() drivers.Rotation {
	if d == nil {
		return 0
	}
	return d.rotation
}

// Detected returns the controller family chosen during Init.
func (d *Device) Detected() Controller {
	if d == nil {
		return ControllerUnknown
	}
	return d.controller
}

// Width returns the panel width in pixels for the current orientation, or 0
// for an invalid device.
func (d *Device) Width() int16 {
	if d == nil {
		return 0
	}
	return d.width
}

// Height is the counterpart of Width.
func (d *Device) Height() int16 {
	if d == nil {
		return 0
	}
	return d.height
}

// Size implements drivers.Displayer.
func (d *Device) Size() (int16, int16) {
	return d.Width(), d.Height()
}

// SetPixel implements drivers.Displayer so widget and font code can draw
// straight to the panel in absolute coordinates.
func (d *Device) SetPixel(x, y int16, c color.RGBA) {
	_ = d.FillRect(x, y, 1, 1, hal.RGB565(c.R, c.G, c.B))
}

// Display implements drivers.Displayer. Pixels reach the panel as they are
// written; there is no buffer to flush.
func (d *Device) Display() error {
	if d == nil || d.state != stateReady {
		return ErrNotReady
	}
	return nil
}

// DrawPixel paints a single pixel.
func (d *Device) DrawPixel(x, y int16, c uint16) error {
	return d.FillRect(x, y, 1, 1, c)
}

// DrawHLine draws a horizontal line from (x0, y) to (x1, y).
func (d *Device) DrawHLine(x0, x1, y int16, c uint16) error {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	return d.FillRect(x0, y, x1-x0+1, 1, c)
}

// DrawVLine draws a vertical line from (x, y0) to (x, y1).
func (d *Device) DrawVLine(x, y0, y1 int16, c uint16) error {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return d.FillRect(x, y0, 1, y1-y0+1, c)
}

// FillScreen paints the whole panel.
func (d *Device) FillScreen(c uint16) error {
	return d.FillRect(0, 0, d.Width(), d.Height(), c)
}

// Sleep puts the panel into or out of sleep mode. Contents survive; the
// panel just stops emitting light.
func (d *Device) Sleep(enable bool) error {
	if d == nil || d.state != stateReady {
		return ErrNotReady
	}
	err := d.transaction(func(bus hal.Bus) error {
		if enable {
			return d.writeCmd(bus, cmdSLPIN)
		}
		return d.writeCmd(bus, cmdSLPOUT)
	})
	if err == nil {
		time.Sleep(5 * time.Millisecond)
	}
	return err
}

// Backlight switches the backlight enable pin. Carriers with a hardwired
// backlight report hal.ErrNotImplemented.
func (d *Device) Backlight(on bool) error {
	if d == nil || d.bl == nil {
		return hal.ErrNotImplemented
	}
	if on {
		d.bl.High()
	} else {
		d.bl.Low()
	}
	return nil
}

func (d *Device) logLine(s string) {
	if d.log != nil {
		d.log.WriteLineString(s)
	}
}
