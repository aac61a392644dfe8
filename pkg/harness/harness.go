// Package harness wires a simulated transceiver pair to a test signal
// source and drives both sides: a transmit loop feeding a tone through the
// channel and a receive loop pulling impaired blocks back out, with optional
// live spectrum plots and InfluxDB metrics.
package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sdrlab/simradio/pkg/dsp/freqest"
	"github.com/sdrlab/simradio/pkg/dsp/tone"
	"github.com/sdrlab/simradio/pkg/dsp/viz"
	"github.com/sdrlab/simradio/pkg/radio"
	"github.com/sdrlab/simradio/pkg/radio/sim"
	"github.com/sdrlab/simradio/pkg/util"
)

type Options struct {
	// Channel configures the simulated link between the two halves.
	Channel sim.Config
	// ToneFreq is the frequency of the transmitted test tone in Hz.
	ToneFreq float64
	// ToneAmplitude defaults to 1.0 when zero.
	ToneAmplitude float64
	// BlockSize is the number of samples sent and received per iteration.
	BlockSize int
	// TotalSamples, when nonzero, stops the run once the receiver has
	// produced that many samples.
	TotalSamples uint64
}

type Harness struct {
	opts      Options
	simOpts   []sim.Option
	tx        *sim.Transmitter
	rx        *sim.Receiver
	gen       *tone.Generator
	est       *freqest.Estimator
	writeAPI  api.WriteAPI
	vizServer *viz.Server
	plotter   *viz.FFTPlotter
	logger    zerolog.Logger
}

type HarnessOption func(h *Harness) error

func WithInfluxDB(writeAPI api.WriteAPI) HarnessOption {
	return func(h *Harness) error {
		h.writeAPI = writeAPI
		return nil
	}
}

func WithVizServer(vizServer *viz.Server) HarnessOption {
	return func(h *Harness) error {
		h.vizServer = vizServer
		return nil
	}
}

func WithLogger(logger zerolog.Logger) HarnessOption {
	return func(h *Harness) error {
		h.logger = logger
		return nil
	}
}

// WithSimOptions forwards options (seed, logger) to the simulated pair.
func WithSimOptions(opts ...sim.Option) HarnessOption {
	return func(h *Harness) error {
		h.simOpts = append(h.simOpts, opts...)
		return nil
	}
}

func New(options Options, opts ...HarnessOption) (*Harness, error) {
	h := &Harness{
		opts:     options,
		writeAPI: &util.NopWriteAPI{}, // overwritten with option
		est:      freqest.NewEstimator(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}

	if h.opts.BlockSize <= 0 {
		return nil, fmt.Errorf("must specify a positive block size")
	}
	if h.opts.ToneAmplitude == 0 {
		h.opts.ToneAmplitude = 1.0
	}

	tx, rx, err := sim.NewPair(h.opts.Channel, h.simOpts...)
	if err != nil {
		return nil, err
	}
	h.tx, h.rx = tx, rx
	h.gen = tone.NewGenerator(h.opts.Channel.SampleRate, h.opts.ToneFreq, h.opts.ToneAmplitude)

	if h.vizServer != nil {
		h.plotter = viz.NewFFTPlotter("channel.output", 1024, h.opts.Channel.SampleRate)
		h.vizServer.Register(h.plotter)
	}

	return h, nil
}

// Start runs the transmit and receive loops until the context is canceled
// or the TotalSamples budget is reached.
func (h *Harness) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if h.vizServer != nil {
		eg.Go(func() error {
			return h.vizServer.Run(ctx)
		})
		eg.Go(func() error {
			<-ctx.Done()
			h.vizServer.Stop(context.TODO())
			return nil
		})
	}

	eg.Go(func() error {
		return h.transmit(ctx)
	})
	eg.Go(func() error {
		// Ends the transmit loop once the receive side is done.
		defer cancel()
		return h.receive(ctx)
	})

	return eg.Wait()
}

// Stop drops both ends of the simulated channel.
func (h *Harness) Stop() error {
	h.tx.Close()
	return h.rx.Close()
}

func (h *Harness) transmit(ctx context.Context) error {
	// Pace transmission at roughly the configured sample rate.
	interval := time.Duration(float64(h.opts.BlockSize) / h.opts.Channel.SampleRate * float64(time.Second))
	if interval <= 0 {
		interval = time.Millisecond
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	buf := make([]complex64, h.opts.BlockSize)
	for {
		select {
		case <-ctx.Done():
			// Lets a blocked receiver drain and finish.
			h.tx.Close()
			return nil
		case <-tick.C:
			h.gen.WorkBuffer(buf)
			if err := h.tx.Send(buf); err != nil {
				if errors.Is(err, radio.ErrChannelClosed) {
					return nil
				}
				return err
			}
		}
	}
}

func (h *Harness) receive(ctx context.Context) error {
	for {
		start := time.Now()
		block, ts, err := h.rx.Recv(h.opts.BlockSize)
		if err != nil {
			if errors.Is(err, radio.ErrChannelClosed) {
				return nil
			}
			return err
		}

		var measuredCFO float64
		estMicros := util.TimeOperationMicroseconds(func() {
			measuredCFO = h.est.Work(block)
		})
		if h.plotter != nil {
			h.plotter.Append(block)
		}

		h.writeAPI.WritePoint(influxdb2.NewPoint("channel.received",
			map[string]string{
				"sample_type": "complex64",
			},
			map[string]interface{}{
				"sample_length": len(block),
				"timestamp_us":  int64(ts),
				"measured_cfo":  measuredCFO,
				"est_duration":  estMicros,
				"duration":      time.Since(start).Microseconds(),
			}, start))

		h.logger.Debug().
			Uint64("ts_us", ts).
			Float64("measured_cfo", measuredCFO).
			Uint64("total_samples", h.rx.TotNumSamps()).
			Msg("received block")

		if h.opts.TotalSamples > 0 && h.rx.TotNumSamps() >= h.opts.TotalSamples {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}
