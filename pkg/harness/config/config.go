package config

import (
	"time"

	"github.com/sdrlab/simradio/pkg/radio/sim"
)

type Config struct {
	Channel       sim.Config `yaml:"channel"`
	ToneFreq      float64    `yaml:"tone_freq"`
	ToneAmplitude float64    `yaml:"tone_amplitude"`
	BlockSize     int        `yaml:"block_size"`
	TotalSamples  uint64     `yaml:"total_samples"`
	// Seed, when nonzero, makes the whole run reproducible.
	Seed      uint64 `yaml:"seed"`
	VizServer struct {
		Port           int           `yaml:"port"`
		UpdateInterval time.Duration `yaml:"update_interval_ms"`
	} `yaml:"viz_server"`
	InfluxDB struct {
		Host         string `yaml:"host"`
		Organization string `yaml:"organization"`
		Bucket       string `yaml:"bucket"`
	} `yaml:"influxdb"`
}
