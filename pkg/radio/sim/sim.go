// Package sim is a software stand-in for a radio transceiver pair. NewPair
// produces a connected Transmitter and Receiver satisfying the pkg/radio
// contract: samples sent into the Transmitter come back out of the Receiver
// with the impairments a real radio link introduces — carrier frequency
// offset with drift, phase noise, multipath echoes, and additive gaussian
// noise — so receive/transmit code can be exercised without hardware.
package sim

import (
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sdrlab/simradio/pkg/radio"
)

// Transmitter is the sending half of a simulated pair. It forwards sample
// blocks into the channel unmodified; all impairments are applied on the
// receiving side.
type Transmitter struct {
	q *sampleQueue
}

// Receiver is the receiving half of a simulated pair. It pulls raw samples
// from the channel, applies the impairment model per sample, and hands out
// fixed-length blocks through Recv. All of its state is owned by the
// receiving goroutine; only the queue is shared with the Transmitter.
type Receiver struct {
	cfg    Config
	rng    *rand.Rand
	logger zerolog.Logger

	driftDist distuv.Normal
	phaseDist distuv.Normal
	noiseDist distuv.Normal

	q *sampleQueue

	// curCFO and cumPhase are unit-magnitude phasors: curCFO encodes the
	// current phase increment per sample, cumPhase the accumulated offset
	// applied to outgoing samples. Both are renormalized every step.
	curCFO   complex128
	cumPhase complex128

	sampsBeforeStart uint64
	totNumSamps      uint64
	curFreq          float64

	history *delayLine
	buf     []complex64
}

var (
	_ radio.Tx = (*Transmitter)(nil)
	_ radio.Rx = (*Receiver)(nil)
)

// Option adjusts a pair at construction time.
type Option func(r *Receiver)

// WithSeed makes the run reproducible: all random state, including the
// initial CFO, phase, and start delay, derives from the given seed.
func WithSeed(seed uint64) Option {
	return func(r *Receiver) {
		r.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger attaches a logger to the receiver.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Receiver) {
		r.logger = logger
	}
}

// NewPair builds a connected Transmitter and Receiver from the given
// configuration. The two halves share only the sample channel; dropping
// either side surfaces radio.ErrChannelClosed on the other.
func NewPair(cfg Config, opts ...Option) (*Transmitter, *Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid channel config: %w", err)
	}

	q := newSampleQueue()
	rx := &Receiver{
		cfg:     cfg,
		q:       q,
		curFreq: cfg.StartFreq,
		// Capacity covers offsets 0 (the newest sample, so a zero-delay
		// tap doubles the direct path) through the largest configured
		// delay in samples.
		history: newDelayLine(cfg.maxDelaySamples() + 1),
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(rx)
	}
	if rx.rng == nil {
		rx.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}

	rx.driftDist = distuv.Normal{Mu: 0, Sigma: cfg.CFODrift, Src: rx.rng}
	rx.phaseDist = distuv.Normal{Mu: 0, Sigma: cfg.PhaseNoise, Src: rx.rng}
	rx.noiseDist = distuv.Normal{Mu: 0, Sigma: cfg.Noise, Src: rx.rng}

	rx.curCFO = cmplx.Exp(complex(0, (2*rx.rng.Float64()-1)*cfg.MaxCFO))
	// A zero MaxCFO models perfectly locked oscillators, so the channel
	// must be phase transparent: only draw a random starting phase when an
	// oscillator mismatch exists.
	rx.cumPhase = complex(1, 0)
	if cfg.MaxCFO > 0 {
		rx.cumPhase = cmplx.Exp(complex(0, 2*math.Pi*rx.rng.Float64()))
	}
	if cfg.MaxStartTimeOffset > 0 {
		rx.sampsBeforeStart = rx.rng.Uint64n(cfg.MaxStartTimeOffset)
	}

	rx.logger.Debug().
		Uint64("start_delay", rx.sampsBeforeStart).
		Float64("start_cfo", cmplx.Phase(rx.curCFO)).
		Float64("start_freq", cfg.StartFreq).
		Msg("simulated pair created")

	return &Transmitter{q: q}, rx, nil
}

// Send pushes each sample, in order, into the channel. It fails with
// radio.ErrChannelClosed once the Receiver has been closed.
func (t *Transmitter) Send(data []complex64) error {
	for _, s := range data {
		if err := t.q.push(s); err != nil {
			return err
		}
	}
	return nil
}

// SetFreq is applied instantaneously in simulation; no settling delay is
// modeled on the transmit side.
func (t *Transmitter) SetFreq(freq float64) error {
	return nil
}

// Close drops the transmitting end. Samples already queued remain
// deliverable to the Receiver; once drained, its Recv fails.
func (t *Transmitter) Close() error {
	t.q.closeSend()
	return nil
}

// stepPhase advances the CFO bounded random walk and folds it, together with
// an independent phase noise draw, into the cumulative phase offset.
func (r *Receiver) stepPhase() {
	r.curCFO = clampArg(rotate(r.curCFO, r.driftDist.Rand()), r.cfg.MaxCFO)
	r.cumPhase = rotate(r.cumPhase, r.phaseDist.Rand())
	r.cumPhase *= r.curCFO
	r.cumPhase /= complex(cmplx.Abs(r.cumPhase), 0)
}

// nextSample produces one output sample: a priming zero while the start
// delay has not elapsed, otherwise the next raw sample from the channel run
// through multipath mixing, CFO/phase rotation, and additive noise.
func (r *Receiver) nextSample() (complex64, error) {
	if r.totNumSamps < r.sampsBeforeStart {
		return 0, nil
	}

	samp, err := r.q.pop()
	if err != nil {
		return 0, err
	}

	r.history.push(samp)
	for _, tap := range r.cfg.Multipath {
		// The offset scales with the current center frequency, so path
		// length in samples tracks retuning.
		offset := int(math.Round(tap.Delay * r.curFreq))
		// The history may be too short if it hasn't accumulated samples
		// from the start yet or the frequency increased recently.
		if past, ok := r.history.at(offset); ok {
			samp += complex64(tap.Attn() * complex128(past))
		}
	}

	r.stepPhase()
	samp = complex64(complex128(samp) * r.cumPhase)

	samp += complex(float32(r.noiseDist.Rand()), float32(r.noiseDist.Rand()))
	return samp, nil
}

// Recv returns exactly n samples and the timestamp of the first one, in
// microseconds of simulated time. The returned block is reused by the next
// Recv call; callers must not retain it. If the channel drains before n
// samples are produced, the partial block is discarded and the channel-closed
// error propagates.
func (r *Receiver) Recv(n int) ([]complex64, uint64, error) {
	if cap(r.buf) < n {
		r.buf = make([]complex64, n)
	}
	r.buf = r.buf[:n]

	ts := uint64(float64(r.totNumSamps) / r.cfg.SampleRate * 1e6)
	for i := range r.buf {
		s, err := r.nextSample()
		if err != nil {
			return nil, 0, fmt.Errorf("recv after %d samples: %w", r.totNumSamps, err)
		}
		r.buf[i] = s
		r.totNumSamps++
	}
	return r.buf, ts, nil
}

// TotNumSamps returns the running count of samples ever returned by Recv,
// including zero samples emitted before the start delay elapsed.
func (r *Receiver) TotNumSamps() uint64 {
	return r.totNumSamps
}

// SetFreq retunes immediately for both ends of the pair. Unlike real
// hardware there is no oscillator settling and no lock detection to wait on.
func (r *Receiver) SetFreq(freq float64) error {
	r.curFreq = freq
	return nil
}

// SetTimeNow is a no-op: there is no real clock to synchronize in simulation.
func (r *Receiver) SetTimeNow(now float64) {}

// Close drops the receiving end; subsequent Send calls on the paired
// Transmitter fail with radio.ErrChannelClosed.
func (r *Receiver) Close() error {
	r.q.closeRecv()
	return nil
}
