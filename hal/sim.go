package hal

import (
	"errors"
	"sync"
)

// Controller command bytes the simulator decodes. Kept in sync with the
// panel driver's register table.
const (
	simCmdSWRESET = 0x01
	simCmdRDDID   = 0x04
	simCmdCASET   = 0x2A
	simCmdRASET   = 0x2B
	simCmdRAMWR   = 0x2C
	simCmdMADCTL  = 0x36
)

const simMADCTLMV = 0x20

// Native panel geometry (portrait). MADCTL row/column exchange flips it.
const (
	simNativeW = 240
	simNativeH = 320
)

// IDST7789 is the identity an ST7789 reports for the vendor read-ID command.
var IDST7789 = [3]byte{0x85, 0x85, 0x52}

// IDILI9341 is a typical ILI9341 identity (many clones report zeros).
var IDILI9341 = [3]byte{0x00, 0x93, 0x41}

var errSimNoCS = errors.New("sim: transfer with chip select deasserted")

// SimOpKind tags one recorded bus operation.
type SimOpKind uint8

const (
	SimOpConfigure SimOpKind = iota
	SimOpCSLow
	SimOpCSHigh
	SimOpReset
	SimOpCommand
	SimOpData
	SimOpFill16
	SimOpWrite16
)

// SimOp is one operation observed on the simulated bus.
type SimOp struct {
	Kind  SimOpKind
	Cmd   byte     // SimOpCommand
	Data  []byte   // SimOpData (parameter bytes)
	Words []uint16 // SimOpWrite16 (copied)
	Value uint16   // SimOpFill16
	Count int      // SimOpFill16
	Cfg   BusConfig
}

// SimBus emulates an ST7789/ILI9341 class controller behind an SPI bus.
//
// It decodes window addressing and memory writes into a graphics RAM,
// answers the read-ID query with a configurable identity, and records every
// bus operation so tests can assert on exact transaction shapes. It also
// backs the host build: the desktop window presents the simulated RAM.
type SimBus struct {
	mu sync.Mutex

	id  [3]byte
	cfg BusConfig

	csLow  bool
	dcData bool // true = data mode

	gram   []uint16
	w, h   int
	madctl byte

	x0, x1, y0, y1 int
	cx, cy         int
	lastCmd        byte
	params         []byte

	ops []SimOp

	// Injected faults, returned by the matching transfer op.
	FillErr  error
	WriteErr error
}

// NewSimBus returns a simulated controller reporting the given identity.
func NewSimBus(id [3]byte) *SimBus {
	s := &SimBus{
		id:   id,
		gram: make([]uint16, simNativeW*simNativeH),
	}
	s.resetLocked()
	return s
}

func (s *SimBus) resetLocked() {
	s.madctl = 0
	s.w, s.h = simNativeW, simNativeH
	s.x0, s.y0 = 0, 0
	s.x1, s.y1 = s.w-1, s.h-1
	s.cx, s.cy = 0, 0
	s.lastCmd = 0
	s.params = nil
}

func (s *SimBus) record(op SimOp) {
	s.ops = append(s.ops, op)
}

// Configure implements Bus.
func (s *SimBus) Configure(cfg BusConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.record(SimOp{Kind: SimOpConfigure, Cfg: cfg})
	return nil
}

// Tx implements Bus (8-bit transfers).
func (s *SimBus) Tx(w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.csLow {
		return errSimNoCS
	}

	if len(w) > 0 {
		if s.dcData {
			s.record(SimOp{Kind: SimOpData, Data: append([]byte(nil), w...)})
			for _, b := range w {
				s.param(b)
			}
		} else {
			for _, b := range w {
				s.record(SimOp{Kind: SimOpCommand, Cmd: b})
				s.command(b)
			}
		}
	}

	if len(r) > 0 {
		s.read(r)
	}
	return nil
}

// Fill16 implements Bus (DMA solid fill, no source increment).
func (s *SimBus) Fill16(value uint16, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.csLow {
		return errSimNoCS
	}
	if s.FillErr != nil {
		return s.FillErr
	}
	s.record(SimOp{Kind: SimOpFill16, Value: value, Count: count})
	for i := 0; i < count; i++ {
		s.push(value)
	}
	return nil
}

// Write16 implements Bus (DMA stream, source increment).
func (s *SimBus) Write16(words []uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.csLow {
		return errSimNoCS
	}
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.record(SimOp{Kind: SimOpWrite16, Words: append([]uint16(nil), words...)})
	for _, v := range words {
		s.push(v)
	}
	return nil
}

func (s *SimBus) command(b byte) {
	s.lastCmd = b
	s.params = s.params[:0]

	switch b {
	case simCmdSWRESET:
		s.resetLocked()
	case simCmdRAMWR:
		s.cx, s.cy = s.x0, s.y0
	}
}

func (s *SimBus) param(b byte) {
	s.params = append(s.params, b)

	switch s.lastCmd {
	case simCmdCASET:
		if len(s.params) == 4 {
			s.x0 = int(s.params[0])<<8 | int(s.params[1])
			s.x1 = int(s.params[2])<<8 | int(s.params[3])
		}
	case simCmdRASET:
		if len(s.params) == 4 {
			s.y0 = int(s.params[0])<<8 | int(s.params[1])
			s.y1 = int(s.params[2])<<8 | int(s.params[3])
		}
	case simCmdMADCTL:
		s.madctl = b
		if s.madctl&simMADCTLMV != 0 {
			s.w, s.h = simNativeH, simNativeW
		} else {
			s.w, s.h = simNativeW, simNativeH
		}
	}
}

func (s *SimBus) read(r []byte) {
	// The only read the controller answers is the identity query: one dummy
	// byte, then three ID bytes.
	if s.lastCmd != simCmdRDDID {
		for i := range r {
			r[i] = 0
		}
		return
	}
	for i := range r {
		switch {
		case i == 0:
			r[i] = 0xFF
		case i <= 3:
			r[i] = s.id[i-1]
		default:
			r[i] = 0
		}
	}
}

func (s *SimBus) push(v uint16) {
	if s.cy > s.y1 {
		return
	}
	if s.cx >= 0 && s.cx < s.w && s.cy >= 0 && s.cy < s.h {
		s.gram[s.cy*s.w+s.cx] = v
	}
	s.cx++
	if s.cx > s.x1 {
		s.cx = s.x0
		s.cy++
	}
}

// Pins.

type simPinKind uint8

const (
	simPinCS simPinKind = iota
	simPinDC
	simPinRST
)

type simPin struct {
	bus  *SimBus
	kind simPinKind
}

// CS returns the chip-select pin wired to the simulated controller.
func (s *SimBus) CS() Pin { return &simPin{bus: s, kind: simPinCS} }

// DC returns the data/command pin.
func (s *SimBus) DC() Pin { return &simPin{bus: s, kind: simPinDC} }

// RST returns the reset pin. A low pulse resets the controller state.
func (s *SimBus) RST() Pin { return &simPin{bus: s, kind: simPinRST} }

func (p *simPin) High() { p.set(true) }
func (p *simPin) Low()  { p.set(false) }

func (p *simPin) set(level bool) {
	s := p.bus
	s.mu.Lock()
	defer s.mu.Unlock()

	switch p.kind {
	case simPinCS:
		if level {
			s.csLow = false
			s.record(SimOp{Kind: SimOpCSHigh})
		} else {
			s.csLow = true
			s.record(SimOp{Kind: SimOpCSLow})
		}
	case simPinDC:
		s.dcData = level
	case simPinRST:
		if !level {
			s.resetLocked()
			s.record(SimOp{Kind: SimOpReset})
		}
	}
}

// Inspection helpers for tests and the host window.

// Ops returns a copy of the recorded operation log.
func (s *SimBus) Ops() []SimOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SimOp(nil), s.ops...)
}

// ResetOps clears the recorded operation log.
func (s *SimBus) ResetOps() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
}

// CountOps returns how many recorded operations match kind.
func (s *SimBus) CountOps(kind SimOpKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, op := range s.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// CountCommands returns how many times command cmd was issued.
func (s *SimBus) CountCommands(cmd byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, op := range s.ops {
		if op.Kind == SimOpCommand && op.Cmd == cmd {
			n++
		}
	}
	return n
}

// Words16 returns all 16-bit words streamed since the last ResetOps, in
// order, fills expanded.
func (s *SimBus) Words16() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint16
	for _, op := range s.ops {
		switch op.Kind {
		case SimOpWrite16:
			out = append(out, op.Words...)
		case SimOpFill16:
			for i := 0; i < op.Count; i++ {
				out = append(out, op.Value)
			}
		}
	}
	return out
}

// Dims returns the logical panel dimensions for the current MADCTL state.
func (s *SimBus) Dims() (w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

// Pixel returns the graphics RAM content at logical (x, y).
func (s *SimBus) Pixel(x, y int) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x < 0 || x >= s.w || y < 0 || y >= s.h {
		return 0
	}
	return s.gram[y*s.w+x]
}

// Snapshot copies the graphics RAM (w*h words, row-major) into dst.
func (s *SimBus) Snapshot(dst []uint16) (w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(dst, s.gram[:s.w*s.h])
	return s.w, s.h
}
