package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/sdrlab/simradio/pkg/dsp/viz"
	"github.com/sdrlab/simradio/pkg/harness"
	"github.com/sdrlab/simradio/pkg/harness/config"
	"github.com/sdrlab/simradio/pkg/radio/sim"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)
	configFile := flag.String("config", "simradio.yaml", "YAML config file")
	debug := flag.Bool("debug", false, "log every received block")

	flag.Parse()
	if configFile == nil {
		flag.Usage()
		os.Exit(1)
	}
	if *debug {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	}

	configContents, err := os.ReadFile(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("error reading config file")
	}
	var opts config.Config
	if err := yaml.Unmarshal(configContents, &opts); err != nil {
		log.Fatal().Err(err).Msg("error unmarshaling yaml file")
	}

	hopts := []harness.HarnessOption{harness.WithLogger(log.Logger)}

	if opts.Seed != 0 {
		hopts = append(hopts, harness.WithSimOptions(sim.WithSeed(opts.Seed), sim.WithLogger(log.Logger)))
	} else {
		hopts = append(hopts, harness.WithSimOptions(sim.WithLogger(log.Logger)))
	}

	if opts.VizServer.Port != 0 {
		log.Info().Int("port", opts.VizServer.Port).Msg("starting viz server...")
		interval := opts.VizServer.UpdateInterval
		if interval <= 0 {
			interval = 500 * time.Millisecond
		}
		hopts = append(hopts, harness.WithVizServer(
			viz.NewServer(opts.VizServer.Port, interval)))
	}

	if opts.InfluxDB.Host != "" {
		writeAPI := influxdb2.NewClient(opts.InfluxDB.Host, "").
			WriteAPI(opts.InfluxDB.Organization, opts.InfluxDB.Bucket)
		hopts = append(hopts, harness.WithInfluxDB(writeAPI))
	}

	h, err := harness.New(harness.Options{
		Channel:       opts.Channel,
		ToneFreq:      opts.ToneFreq,
		ToneAmplitude: opts.ToneAmplitude,
		BlockSize:     opts.BlockSize,
		TotalSamples:  opts.TotalSamples,
	}, hopts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create harness")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	eg.Go(func() error {
		select {
		case <-sigChan:
		case <-ctx.Done():
		}
		return h.Stop()
	})

	eg.Go(func() error {
		// Unblocks the signal goroutine when a bounded run finishes.
		defer cancel()
		return h.Start(ctx)
	})

	if err := eg.Wait(); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("exited program")
	}
}
