// Package freqest measures the mean per-sample phase advance of a complex
// baseband block, i.e. its instantaneous frequency in radians per sample.
// Useful for observing the carrier frequency offset a channel introduces.
package freqest

import (
	"math"

	"github.com/racerxdl/segdsp/dsp"
)

// Estimator is a quadrature discriminator averaged over each block. It keeps
// one sample of history so estimates stay continuous across block boundaries.
type Estimator struct {
	history []complex64
}

func NewEstimator() *Estimator {
	return &Estimator{
		history: make([]complex64, 1),
	}
}

// Work returns the mean phase increment of the block in radians/sample.
func (e *Estimator) Work(data []complex64) float64 {
	if len(data) == 0 {
		return 0
	}

	samples := append(e.history, data...)
	diffs := dsp.MultiplyConjugate(samples[1:], samples, len(data))

	var sum float64
	for i := 0; i < len(data); i++ {
		sum += math.Atan2(float64(imag(diffs[i])), float64(real(diffs[i])))
	}

	e.history = samples[len(data):]
	return sum / float64(len(data))
}
