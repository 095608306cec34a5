//go:build !tinygo

package storage

import "lumen/hal"

// Store is a stub on host builds. The simulator has no card slot; the app
// treats a failed mount as a normal degraded mode.
type Store struct{}

func Mount(bus *hal.SharedBus, log hal.Logger) (*Store, error) {
	return nil, ErrNotAvailable
}

func (s *Store) ReadFile(path string, p []byte) (int, error) { return 0, ErrNotReady }

func (s *Store) WriteFile(path string, p []byte) error { return ErrNotReady }

func (s *Store) AppendLine(path string, line []byte) error { return ErrNotReady }
