// Package radio defines the receive/transmit contract shared by every radio
// backend. The simulated pair in pkg/radio/sim implements it in software; a
// hardware binding would implement the same interfaces against a real device.
package radio

import "errors"

// ErrChannelClosed is returned by Recv and Send when the peer endpoint has
// been dropped. It is a recoverable condition: a harness may legitimately end
// a session by closing one side.
var ErrChannelClosed = errors.New("radio: sample channel closed")

// Rx receives complex baseband samples from a real or simulated radio.
type Rx interface {
	// SetTimeNow sets the device clock to the given time in seconds.
	SetTimeNow(now float64)
	// Recv returns a buffer containing exactly n samples and the timestamp
	// (in microseconds) of the first sample. The returned slice is only
	// valid until the next call to Recv.
	Recv(n int) ([]complex64, uint64, error)
	// TotNumSamps returns the count of samples returned since construction.
	TotNumSamps() uint64
	// SetFreq changes the center frequency. On real hardware the oscillator
	// takes time to settle to the new frequency.
	SetFreq(freq float64) error
}

// Tx transmits complex baseband samples through a real or simulated radio.
type Tx interface {
	// Send queues the given samples for transmission, in order.
	Send(data []complex64) error
	// SetFreq changes the center frequency of the transmitter.
	SetFreq(freq float64) error
}
