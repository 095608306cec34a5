// Package storage mounts the FAT filesystem on the SD card that shares the
// instrument's SPI bus with the display panel. Every card operation borrows
// the bus for its full duration, so SD traffic and pixel traffic never
// interleave mid-transfer.
package storage

import "errors"

var (
	// ErrNotAvailable means the platform has no card slot (host builds) or
	// no card answered at mount time.
	ErrNotAvailable = errors.New("storage: no card available")
	ErrNotReady     = errors.New("storage: not mounted")
)
