//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
)

type hostHAL struct {
	logger *hostLogger
	sim    *SimBus
	shared *SharedBus
	t      *hostTicker
}

// New returns a host HAL implementation backed by a simulated ST7789.
func New() HAL {
	sim := NewSimBus(IDST7789)
	return &hostHAL{
		logger: &hostLogger{w: os.Stdout},
		sim:    sim,
		shared: NewSharedBus(sim),
		t:      newHostTicker(),
	}
}

func (h *hostHAL) Logger() Logger { return h.logger }
func (h *hostHAL) Time() Time     { return h.t }

func (h *hostHAL) Display() DisplayPort {
	return DisplayPort{
		Bus: h.shared,
		CS:  h.sim.CS(),
		DC:  h.sim.DC(),
		RST: h.sim.RST(),
	}
}

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
