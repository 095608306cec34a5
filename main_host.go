//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"lumen/app"
	"lumen/hal"
	"lumen/internal/buildinfo"
)

func main() {
	var hc hal.HeadlessConfig
	var tile int
	flag.BoolVar(&hc.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hc.Hz, "hz", 60, "Step rate in headless mode.")
	flag.Uint64Var(&hc.Ticks, "ticks", 0, "Stop after N steps in headless mode (0 = run forever).")
	flag.IntVar(&tile, "tile", 0, "Compositor tile height in pixels (0 = default).")
	flag.Parse()

	cfg := app.Config{TileHeight: int16(tile)}
	newApp := func(h hal.HAL) func() error {
		h.Logger().WriteLineString(buildinfo.Line())
		return app.NewWithConfig(h, cfg)
	}

	if hc.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, hc); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
