//go:build tinygo

package main

import (
	"lumen/app"
	"lumen/hal"
	"lumen/internal/buildinfo"
)

func main() {
	h := hal.New()
	h.Logger().WriteLineString(buildinfo.Line())
	app.Run(h)
}
