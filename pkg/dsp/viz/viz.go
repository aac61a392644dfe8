// Package viz renders live plots of sample streams and serves them over
// HTTP, so a developer can watch what the simulated channel is doing to a
// signal.
package viz

import (
	"image/color"

	"gonum.org/v1/plot"
)

type PlotOptions func(p *plot.Plot)

func plotWithDefaults() *plot.Plot {
	p := plot.New()
	p.BackgroundColor = color.Black

	white := color.White
	p.Title.TextStyle.Color = white
	p.X.Color = white
	p.Y.Color = white
	p.X.Label.TextStyle.Color = white
	p.Y.Label.TextStyle.Color = white
	p.X.Tick.Color = white
	p.Y.Tick.Color = white
	p.X.Tick.Label.Color = white
	p.Y.Tick.Label.Color = white
	p.Legend.TextStyle.Color = white

	return p
}
