package harness

import (
	"context"
	"testing"
	"time"

	"github.com/sdrlab/simradio/pkg/radio/sim"
)

func TestBoundedRunCompletes(t *testing.T) {
	h, err := New(Options{
		Channel: sim.Config{
			SampleRate: 1e6,
			StartFreq:  915e6,
			MaxCFO:     0.01,
			CFODrift:   1e-5,
			PhaseNoise: 1e-4,
			Noise:      0.01,
		},
		ToneFreq:     100e3,
		BlockSize:    1024,
		TotalSamples: 8192,
	}, WithSimOptions(sim.WithSeed(42)))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Start(ctx); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if got := h.rx.TotNumSamps(); got < 8192 {
		t.Fatalf("run ended after %d samples, want at least 8192", got)
	}
}

func TestNewRejectsMissingBlockSize(t *testing.T) {
	_, err := New(Options{
		Channel: sim.Config{SampleRate: 1e6, StartFreq: 915e6},
	})
	if err == nil {
		t.Fatal("New() accepted a zero block size")
	}
}

func TestNewRejectsInvalidChannel(t *testing.T) {
	_, err := New(Options{
		Channel:   sim.Config{SampleRate: 1e6, StartFreq: 915e6, Noise: -1},
		BlockSize: 512,
	})
	if err == nil {
		t.Fatal("New() accepted an invalid channel config")
	}
}

func TestStopUnblocksPeer(t *testing.T) {
	h, err := New(Options{
		Channel:   sim.Config{SampleRate: 1e6, StartFreq: 915e6},
		ToneFreq:  10e3,
		BlockSize: 256,
	}, WithSimOptions(sim.WithSeed(1)))
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Stop(); err != nil {
		t.Fatal(err)
	}

	// With both ends dropped, a receive attempt must fail immediately
	// rather than block.
	done := make(chan error, 1)
	go func() {
		_, _, err := h.rx.Recv(1)
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Recv succeeded on a stopped harness")
		}
	case <-time.After(time.Second):
		t.Fatal("Recv blocked after Stop")
	}
}
