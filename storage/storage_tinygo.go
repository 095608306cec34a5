//go:build tinygo && baremetal && rp2040

package storage

import (
	"errors"
	"fmt"
	"io"
	"machine"
	"os"

	"tinygo.org/x/drivers/sdcard"
	"tinygo.org/x/tinyfs/fatfs"

	"lumen/hal"
)

// SD chip select on the instrument carrier. Clock and data pins are shared
// with the panel and configured by the HAL.
const pinSDCS = machine.GP17

// Store is a mounted FAT filesystem on the shared-bus SD card.
type Store struct {
	bus *hal.SharedBus
	sd  sdcard.Device
	fat *fatfs.FATFS
}

// Mount probes the card and mounts its FAT filesystem. The card driver
// reprograms the SPI peripheral for its own clock and manages its own chip
// select, so the probe and every later operation run under a bus borrow.
// A missing or blank card is not a fault: the caller gets ErrNotAvailable
// and runs without storage.
func Mount(bus *hal.SharedBus, log hal.Logger) (*Store, error) {
	s := &Store{
		bus: bus,
		sd:  sdcard.New(machine.SPI0, machine.GP18, machine.GP19, machine.GP16, pinSDCS),
	}
	err := bus.Borrow(func() error {
		if err := s.sd.Configure(); err != nil {
			return fmt.Errorf("storage: card probe: %w", err)
		}
		fat := fatfs.New(&s.sd)
		fat.Configure(&fatfs.Config{SectorSize: fatfs.SectorSize})
		if err := fat.Mount(); err != nil {
			// Do not auto-format removable media.
			return fmt.Errorf("storage: mount: %w", err)
		}
		s.fat = fat
		return nil
	})
	if err != nil {
		if log != nil {
			log.WriteLineString(err.Error())
		}
		return nil, ErrNotAvailable
	}
	if log != nil {
		log.WriteLineString("storage: FAT volume mounted")
	}
	return s, nil
}

// ReadFile reads up to len(p) bytes from the start of path.
func (s *Store) ReadFile(path string, p []byte) (int, error) {
	if s == nil || s.fat == nil {
		return 0, ErrNotReady
	}
	n := 0
	err := s.bus.Borrow(func() error {
		f, err := s.fat.OpenFile(path, os.O_RDONLY)
		if err != nil {
			return fmt.Errorf("storage: open %q: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		n, err = f.Read(p)
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return err
	})
	return n, err
}

// WriteFile replaces path with p.
func (s *Store) WriteFile(path string, p []byte) error {
	return s.write(path, p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, false)
}

// AppendLine appends line plus a newline to path, creating it if needed.
// This is the measurement log path: one record per line.
func (s *Store) AppendLine(path string, line []byte) error {
	return s.write(path, line, os.O_WRONLY|os.O_CREATE|os.O_APPEND, true)
}

func (s *Store) write(path string, p []byte, flags int, newline bool) error {
	if s == nil || s.fat == nil {
		return ErrNotReady
	}
	return s.bus.Borrow(func() error {
		f, err := s.fat.OpenFile(path, flags)
		if err != nil {
			return fmt.Errorf("storage: open %q: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		if _, err := f.Write(p); err != nil {
			return fmt.Errorf("storage: write %q: %w", path, err)
		}
		if newline {
			if _, err := f.Write([]byte{'\n'}); err != nil {
				return fmt.Errorf("storage: write %q: %w", path, err)
			}
		}
		return nil
	})
}
