// Package app wires the firmware together: panel bring-up, the tile
// compositor, SD storage, and the instrument task, all driven by one
// cooperative step function.
package app

import (
	"lumen/hal"
	"lumen/panel"
	"lumen/pipeline"
	"lumen/storage"
)

type Config struct {
	// TileHeight overrides the compositor band height (0 = default).
	TileHeight int16
	// SampleEvery, FlushEvery and LogEvery are step periods. Zero picks
	// the defaults below.
	SampleEvery uint64
	FlushEvery  uint64
	LogEvery    uint64
}

const (
	defaultSampleEvery = 3
	defaultFlushEvery  = 1
	defaultLogEvery    = 600

	logPath = "readings.log"
)

type system struct {
	log   hal.Logger
	panel *panel.Device
	pipe  *pipeline.Pipeline
	store *storage.Store
	read  *readout

	cfg  Config
	tick uint64
}

// New initializes the firmware and returns its step function.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// Run initializes the firmware and steps it on every base tick, blocking
// forever (TinyGo entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, Config{})
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	s, err := newSystem(h, cfg)
	if err != nil {
		h.Logger().WriteLineString("app: init failed: " + err.Error())
		return func() error { return err }
	}
	return s.step
}

func RunWithConfig(h hal.HAL, cfg Config) {
	step := NewWithConfig(h, cfg)
	for range h.Time().Ticks() {
		if err := step(); err != nil {
			h.Logger().WriteLineString("app: stopped: " + err.Error())
			return
		}
	}
	select {}
}

func newSystem(h hal.HAL, cfg Config) (*system, error) {
	if cfg.SampleEvery == 0 {
		cfg.SampleEvery = defaultSampleEvery
	}
	if cfg.FlushEvery == 0 {
		cfg.FlushEvery = defaultFlushEvery
	}
	if cfg.LogEvery == 0 {
		cfg.LogEvery = defaultLogEvery
	}

	log := h.Logger()
	port := h.Display()

	dev := panel.New(port, panel.Config{Logger: log})
	if err := dev.Init(); err != nil {
		return nil, err
	}

	pipe, err := pipeline.New(dev, pipeline.Config{TileHeight: cfg.TileHeight})
	if err != nil {
		showFault(dev, err)
		return nil, err
	}

	// Storage is optional: a missing card logs once and the instrument
	// runs without a reading log.
	store, err := storage.Mount(port.Bus, log)
	if err != nil {
		log.WriteLineString("app: running without storage: " + err.Error())
		store = nil
	}

	return &system{
		log:   log,
		panel: dev,
		pipe:  pipe,
		store: store,
		read:  newReadout(dev.Width(), dev.Height()),
		cfg:   cfg,
	}, nil
}

// step advances the firmware by one base tick. Bus faults on flush are
// logged and the screen re-marked dirty, so a transient stall degrades to
// a late repaint instead of stopping the loop.
func (s *system) step() error {
	s.tick++

	if s.tick%s.cfg.SampleEvery == 0 {
		s.read.sample(s.tick, s.pipe)
	}

	if s.store != nil && s.tick%s.cfg.LogEvery == 0 {
		if err := s.store.AppendLine(logPath, s.read.record()); err != nil {
			s.log.WriteLineString("app: reading log: " + err.Error())
			s.store = nil
		}
	}

	if s.tick%s.cfg.FlushEvery == 0 && s.pipe.Pending() {
		if _, err := s.pipe.FlushDirty(s.read.render); err != nil {
			s.log.WriteLineString("app: flush: " + err.Error())
			s.pipe.ForceRedraw()
		}
	}
	return nil
}
