package sim

import (
	"fmt"
	"math"
)

// maxDelaySlots bounds the delay line so a bad delay/rate combination fails
// at construction instead of allocating an enormous history buffer.
const maxDelaySlots = 1000000

// Tap is a single multipath component: a copy of the signal arriving Delay
// seconds after the direct path, scaled by a complex attenuation.
type Tap struct {
	// Delay of this path in seconds.
	Delay float64 `yaml:"delay"`
	// AttnI and AttnQ are the real and imaginary parts of the complex
	// attenuation applied to the delayed copy.
	AttnI float64 `yaml:"attn_i"`
	AttnQ float64 `yaml:"attn_q"`
}

// Attn returns the complex attenuation of the tap.
func (t Tap) Attn() complex128 {
	return complex(t.AttnI, t.AttnQ)
}

// Config describes the simulated channel. It is supplied once to NewPair and
// never mutated afterwards; only the center frequency may change at runtime,
// through Rx.SetFreq.
type Config struct {
	// MaxStartTimeOffset models the fact that the Tx and Rx start producing
	// samples at different times: the Rx emits N zero samples before signal
	// from the Tx flows, with N sampled uniformly from [0, MaxStartTimeOffset).
	// Units are samples.
	MaxStartTimeOffset uint64 `yaml:"max_start_time_offset"`
	// SampleRate in samples/sec.
	SampleRate float64 `yaml:"sample_rate"`
	// StartFreq is the center frequency at construction, in Hz. It can be
	// changed only through Rx.SetFreq.
	StartFreq float64 `yaml:"start_freq"`
	// MaxCFO bounds the carrier frequency offset: the pair starts with a
	// random CFO in [-MaxCFO, MaxCFO] radians/sample, and the drift random
	// walk never leaves that interval.
	MaxCFO float64 `yaml:"max_cfo"`
	// CFODrift is the standard deviation of the per-sample CFO random walk,
	// in radians/sample per step. For real clocks it is probably the case
	// that CFODrift << PhaseNoise << MaxCFO.
	CFODrift float64 `yaml:"cfo_drift"`
	// PhaseNoise is the standard deviation of the random per-sample phase
	// jitter, in radians/sample, independent of the CFO.
	PhaseNoise float64 `yaml:"phase_noise"`
	// Noise is the standard deviation of the gaussian noise added to each
	// of the I and Q components of every sample.
	Noise float64 `yaml:"noise"`
	// Multipath lists the additional signal paths, beyond the zero-delay
	// direct path.
	Multipath []Tap `yaml:"multipath"`
}

// maxDelaySamples returns the largest configured tap delay converted to a
// sample count at the configured sample rate.
func (c Config) maxDelaySamples() int {
	var max float64
	for _, tap := range c.Multipath {
		if tap.Delay > max {
			max = tap.Delay
		}
	}
	return int(math.Ceil(max * c.SampleRate))
}

// Validate rejects configurations that cannot produce a usable simulator.
// All failures here are construction-time: nothing is checked lazily during
// streaming.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %v", c.SampleRate)
	}
	if c.MaxCFO < 0 {
		return fmt.Errorf("max cfo must be non-negative, got %v", c.MaxCFO)
	}
	if c.CFODrift < 0 {
		return fmt.Errorf("cfo drift std must be non-negative, got %v", c.CFODrift)
	}
	if c.PhaseNoise < 0 {
		return fmt.Errorf("phase noise std must be non-negative, got %v", c.PhaseNoise)
	}
	if c.Noise < 0 {
		return fmt.Errorf("noise std must be non-negative, got %v", c.Noise)
	}
	for i, tap := range c.Multipath {
		if tap.Delay < 0 {
			return fmt.Errorf("multipath tap %d: delay must be non-negative, got %v", i, tap.Delay)
		}
	}
	if n := c.maxDelaySamples(); n > maxDelaySlots {
		return fmt.Errorf("multipath delay needs %d history slots at %v samples/sec, max is %d", n, c.SampleRate, maxDelaySlots)
	}
	return nil
}
