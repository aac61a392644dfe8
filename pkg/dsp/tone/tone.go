// Package tone generates complex exponential test signals.
package tone

import (
	"math"
)

const tau float64 = math.Pi * 2

// Generator produces a complex tone at a fixed frequency, continuing its
// phase across calls so consecutive blocks splice seamlessly.
type Generator struct {
	sampleRate     float64
	frequency      float64
	amplitude      float64
	phase          float64
	phaseIncrement float64
}

func NewGenerator(sampleRate, frequency, amplitude float64) *Generator {
	return &Generator{
		sampleRate:     sampleRate,
		frequency:      frequency,
		amplitude:      amplitude,
		phaseIncrement: frequency * tau / sampleRate,
	}
}

func (g *Generator) incrementPhase() {
	g.phase += g.phaseIncrement
	if g.phase > tau {
		g.phase -= tau
	} else if g.phase < -tau {
		g.phase += tau
	}
}

func (g *Generator) WorkBuffer(output []complex64) int {
	for i := range output {
		sin, cos := math.Sincos(g.phase)
		output[i] = complex(float32(g.amplitude*cos), float32(g.amplitude*sin))
		g.incrementPhase()
	}
	return len(output)
}

func (g *Generator) Work(n int) []complex64 {
	ret := make([]complex64, n)
	g.WorkBuffer(ret)
	return ret
}
