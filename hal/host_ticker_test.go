//go:build !tinygo

package hal

import (
	"testing"
	"time"
)

func drainTicks(ch <-chan uint64) (n int, last uint64) {
	for {
		select {
		case seq := <-ch:
			n++
			last = seq
		default:
			return n, last
		}
	}
}

func TestHostTickerPaysOutWholeTicks(t *testing.T) {
	now := time.Unix(0, 0)
	tk := newHostTicker()
	tk.now = func() time.Time { return now }

	tk.advance() // first call primes the loop with one tick
	if n, last := drainTicks(tk.ch); n != 1 || last != 1 {
		t.Fatalf("first advance: %d ticks, last seq %d", n, last)
	}

	now = now.Add(3500 * time.Microsecond)
	tk.advance()
	if n, last := drainTicks(tk.ch); n != 3 || last != 4 {
		t.Fatalf("3.5ms advance: %d ticks, last seq %d, want 3 ticks", n, last)
	}

	// The 0.5ms remainder carries: another 0.6ms crosses one tick boundary.
	now = now.Add(600 * time.Microsecond)
	tk.advance()
	if n, last := drainTicks(tk.ch); n != 1 || last != 5 {
		t.Fatalf("remainder carry: %d ticks, last seq %d, want 1 tick", n, last)
	}

	// Sub-tick progress emits nothing.
	now = now.Add(50 * time.Microsecond)
	tk.advance()
	if n, _ := drainTicks(tk.ch); n != 0 {
		t.Fatalf("sub-tick advance emitted %d ticks", n)
	}
}
