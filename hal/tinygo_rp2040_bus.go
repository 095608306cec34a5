//go:build tinygo && baremetal && rp2040

package hal

import (
	"machine"
	"runtime/volatile"
	"time"
	"unsafe"

	"device/rp"
)

// rp2040Bus drives one PL022 SPI peripheral with a dedicated DMA channel
// for pixel traffic. 8-bit command traffic goes through the machine SPI
// API; 16-bit pixel data is streamed by DMA, either from a single word
// (solid fill, no read increment) or from a buffer (blit, read increment).
type rp2040Bus struct {
	spi  *machine.SPI
	hw   *rp.SPI0_Type
	ch   *dmaChannel
	dreq uint32
	cfg  BusConfig
}

// Per-channel DMA register block (0x40 bytes; alias registers unused).
type dmaChannel struct {
	readAddr   volatile.Register32
	writeAddr  volatile.Register32
	transCount volatile.Register32
	ctrlTrig   volatile.Register32
	_          [12]volatile.Register32
}

const (
	dmaEnable      = 1 << 0
	dmaDataSize16  = 1 << 2 // DATA_SIZE field (bits 3:2) = 1
	dmaIncrRead    = 1 << 4
	dmaChainShift  = 11
	dmaTreqShift   = 15
	dmaIrqQuiet    = 1 << 21
	dmaBusy        = 1 << 24
	dmaChannelSPI  = 11 // channel reserved for panel pixel traffic
	dreqSPI0TX     = 16
	dreqSPI1TX     = 18
	sspDSSMask     = 0xF // SSPCR0 data size select, bits 3:0
	sspDSS8        = 0x7
	sspDSS16       = 0xF
	sspStatusRNE   = 1 << 2
	sspStatusBSY   = 1 << 4
	sspTXDMAEnable = 1 << 1
)

// busWaitTimeout bounds every completion wait. A stalled peripheral must
// surface as an error instead of hanging the control loop.
const busWaitTimeout = 100 * time.Millisecond

func newRP2040Bus(spi *machine.SPI, hw *rp.SPI0_Type, dreq uint32) *rp2040Bus {
	base := uintptr(unsafe.Pointer(rp.DMA))
	ch := (*dmaChannel)(unsafe.Pointer(base + dmaChannelSPI*0x40))
	hw.SSPDMACR.SetBits(sspTXDMAEnable)
	return &rp2040Bus{spi: spi, hw: hw, ch: ch, dreq: dreq}
}

func (b *rp2040Bus) Configure(cfg BusConfig) error {
	if cfg.Frequency != b.cfg.Frequency {
		if err := b.spi.SetBaudRate(cfg.Frequency); err != nil {
			return err
		}
	}
	switch cfg.Width {
	case Width16:
		b.hw.SSPCR0.ReplaceBits(sspDSS16, sspDSSMask, 0)
	default:
		b.hw.SSPCR0.ReplaceBits(sspDSS8, sspDSSMask, 0)
	}
	b.cfg = cfg
	return nil
}

func (b *rp2040Bus) Tx(w, r []byte) error {
	if err := b.spi.Tx(w, r); err != nil {
		return err
	}
	return b.waitIdle()
}

func (b *rp2040Bus) Fill16(value uint16, count int) error {
	if count <= 0 {
		return nil
	}
	v := value
	return b.dma(uintptr(unsafe.Pointer(&v)), uint32(count), false)
}

func (b *rp2040Bus) Write16(words []uint16) error {
	if len(words) == 0 {
		return nil
	}
	return b.dma(uintptr(unsafe.Pointer(&words[0])), uint32(len(words)), true)
}

func (b *rp2040Bus) dma(src uintptr, count uint32, incrRead bool) error {
	ctrl := uint32(dmaEnable | dmaDataSize16 | dmaIrqQuiet)
	ctrl |= b.dreq << dmaTreqShift
	ctrl |= dmaChannelSPI << dmaChainShift // chain to self: chaining off
	if incrRead {
		ctrl |= dmaIncrRead
	}

	b.ch.readAddr.Set(uint32(src))
	b.ch.writeAddr.Set(uint32(uintptr(unsafe.Pointer(&b.hw.SSPDR))))
	b.ch.transCount.Set(count)
	b.ch.ctrlTrig.Set(ctrl)

	start := time.Now()
	for b.ch.ctrlTrig.HasBits(dmaBusy) {
		if time.Since(start) > busWaitTimeout {
			b.ch.ctrlTrig.ClearBits(dmaEnable)
			return ErrBusTimeout
		}
	}
	return b.waitIdle()
}

// waitIdle blocks until the SPI shifter drains, then flushes the unused
// receive FIFO so a later owner does not read stale words.
func (b *rp2040Bus) waitIdle() error {
	start := time.Now()
	for b.hw.SSPSR.HasBits(sspStatusBSY) {
		if time.Since(start) > busWaitTimeout {
			return ErrBusTimeout
		}
	}
	for b.hw.SSPSR.HasBits(sspStatusRNE) {
		_ = b.hw.SSPDR.Get()
	}
	return nil
}
