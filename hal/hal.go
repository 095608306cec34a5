package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// DisplayPort groups the shared SPI bus with the control pins wired to the
// LCD panel. CS selects the panel, DC distinguishes command bytes from data
// bytes, RST is the hardware reset line. BL is the backlight enable pin and
// may be nil on carriers with a hardwired backlight.
type DisplayPort struct {
	Bus *SharedBus
	CS  Pin
	DC  Pin
	RST Pin
	BL  Pin
}

// Time provides a base tick stream.
//
// The tick duration is platform-defined; higher-level timers live in the app.
type Time interface {
	Ticks() <-chan uint64
}

// HAL provides the only contact point between the firmware and the hardware.
type HAL interface {
	Logger() Logger
	Display() DisplayPort
	Time() Time
}
