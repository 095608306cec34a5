package hal

import (
	"errors"
	"sync"
)

// BusWidth selects the SPI frame size for subsequent transfers.
type BusWidth uint8

const (
	Width8 BusWidth = iota
	Width16
)

// BusConfig describes how a bus owner wants the peripheral programmed.
//
// The peripheral keeps no per-device state: every owner must reprogram
// frequency and width at the start of its own transaction and must never
// assume the bus was left in its preferred configuration.
type BusConfig struct {
	Frequency uint32
	Width     BusWidth
}

var (
	ErrBusTimeout = errors.New("hal: bus transfer timed out")
	ErrBusClosed  = errors.New("hal: transfer outside transaction")
)

// Bus is one SPI peripheral plus its DMA channel.
//
// Tx performs 8-bit transfers and is used for command/parameter traffic.
// Fill16 streams the same 16-bit word count times (DMA without source
// increment); Write16 streams a buffer of 16-bit words (DMA with source
// increment). 16-bit words go out most significant byte first. All three
// block until the hardware reports completion and return ErrBusTimeout if
// it never does.
type Bus interface {
	Configure(cfg BusConfig) error
	Tx(w, r []byte) error
	Fill16(value uint16, count int) error
	Write16(words []uint16) error
}

// Pin is a minimal output pin abstraction.
type Pin interface {
	High()
	Low()
}

// SharedBus serializes transactions from multiple drivers on one physical
// SPI bus.
//
// Each transaction reprograms the peripheral, asserts the owner's chip
// select, runs fn, and deasserts chip select before returning, error path
// included. The superloop is cooperative, but the host backend runs the
// window loop and the tick source on separate goroutines, so exclusion is
// a real mutex rather than call ordering alone.
type SharedBus struct {
	mu  sync.Mutex
	bus Bus
}

func NewSharedBus(b Bus) *SharedBus {
	return &SharedBus{bus: b}
}

// Transaction runs one bus-atomic operation on behalf of the device behind
// cs. fn may reconfigure the transfer width mid-transaction (command bytes
// in 8-bit mode, pixel data in 16-bit mode); the peripheral is restored to
// the entry configuration before the chip select is released.
func (s *SharedBus) Transaction(cfg BusConfig, cs Pin, fn func(Bus) error) error {
	if s == nil || s.bus == nil {
		return ErrBusClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.bus.Configure(cfg); err != nil {
		return err
	}
	cs.Low()
	err := fn(s.bus)
	if rerr := s.bus.Configure(cfg); err == nil {
		err = rerr
	}
	cs.High()
	return err
}

// Borrow hands the raw bus to a driver that manages its own chip select and
// configuration (e.g. an SD block driver), holding exclusion for the whole
// call. The borrower must still honor the transaction discipline: reprogram
// before use, deassert its chip select before returning.
func (s *SharedBus) Borrow(fn func() error) error {
	if s == nil || s.bus == nil {
		return ErrBusClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
