//go:build tinygo && baremetal && rp2040

package hal

import (
	"machine"

	"device/rp"
)

// Instrument carrier wiring: panel and SD card share SPI0 with separate
// chip selects. SD chip select lives in the storage package.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
const (
	pinSCK = machine.GP18
	pinSDO = machine.GP19
	pinSDI = machine.GP16

	pinLCDCS  = machine.GP13
	pinLCDDC  = machine.GP14
	pinLCDRST = machine.GP15
	pinLCDBL  = machine.GP12
)

type picoHAL struct {
	logger *uartLogger
	shared *SharedBus
	t      *tinyGoTime
}

// New returns the Pico instrument HAL implementation.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	machine.SPI0.Configure(machine.SPIConfig{
		SCK:       pinSCK,
		SDO:       pinSDO,
		SDI:       pinSDI,
		Frequency: 40_000_000,
	})

	bus := newRP2040Bus(machine.SPI0, rp.SPI0, dreqSPI0TX)
	return &picoHAL{
		logger: &uartLogger{uart: uart},
		shared: NewSharedBus(bus),
		t:      newTinyGoTime(),
	}
}

func (h *picoHAL) Logger() Logger { return h.logger }
func (h *picoHAL) Time() Time     { return h.t }

func (h *picoHAL) Display() DisplayPort {
	return DisplayPort{
		Bus: h.shared,
		CS:  newOutPin(pinLCDCS),
		DC:  newOutPin(pinLCDDC),
		RST: newOutPin(pinLCDRST),
		BL:  newOutPin(pinLCDBL),
	}
}

type outPin struct {
	pin machine.Pin
}

func newOutPin(p machine.Pin) *outPin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.High()
	return &outPin{pin: p}
}

func (p *outPin) High() { p.pin.High() }
func (p *outPin) Low()  { p.pin.Low() }
