//go:build !tinygo

package hal

import "time"

// hostTickInterval is the base tick the firmware sees, matching the 1 ms
// hardware timer on the baremetal backend.
const hostTickInterval = time.Millisecond

// hostTicker converts wall-clock progress into base ticks. The window and
// headless runners call advance once per frame; the real time elapsed since
// the previous call is paid out as whole ticks, with the sub-tick remainder
// carried forward, so the superloop steps at hardware cadence regardless of
// the frame rate.
type hostTicker struct {
	ch  chan uint64
	seq uint64

	now  func() time.Time
	prev time.Time
	rem  time.Duration
}

func newHostTicker() *hostTicker {
	return &hostTicker{ch: make(chan uint64, 1024), now: time.Now}
}

func (t *hostTicker) Ticks() <-chan uint64 { return t.ch }

// advance emits the base ticks owed for the wall time since the last call.
// The first call emits a single tick to get the loop moving.
func (t *hostTicker) advance() {
	now := t.now()
	if t.prev.IsZero() {
		t.prev = now
		t.emit(1)
		return
	}

	t.rem += now.Sub(t.prev)
	t.prev = now
	if n := t.rem / hostTickInterval; n > 0 {
		t.rem -= n * hostTickInterval
		t.emit(uint64(n))
	}
}

// emit publishes n ticks, dropping on a full channel so a stalled consumer
// slows down instead of blocking the frame loop.
func (t *hostTicker) emit(n uint64) {
	for ; n > 0; n-- {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
