package sim

import (
	"sync"

	"github.com/sdrlab/simradio/pkg/radio"
)

// sampleQueue is the unbounded FIFO conduit between the transmitter and the
// receiver. Single producer, single consumer: push never blocks, pop blocks
// until a sample is available or the producer end is closed and the queue is
// drained. Either side may be closed independently; the other side then sees
// radio.ErrChannelClosed.
type sampleQueue struct {
	mu    sync.Mutex
	ready *sync.Cond

	buf  []complex64
	head int

	sendClosed bool
	recvClosed bool
}

func newSampleQueue() *sampleQueue {
	q := &sampleQueue{}
	q.ready = sync.NewCond(&q.mu)
	return q
}

// push appends a sample. It fails only if the consumer end is gone.
func (q *sampleQueue) push(s complex64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.recvClosed || q.sendClosed {
		return radio.ErrChannelClosed
	}
	q.buf = append(q.buf, s)
	q.ready.Signal()
	return nil
}

// pop removes and returns the oldest sample, blocking while the queue is
// empty and the producer is still alive. Once the producer is closed,
// already-queued samples remain deliverable; after the queue drains, pop
// fails with radio.ErrChannelClosed.
func (q *sampleQueue) pop() (complex64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head == len(q.buf) && !q.sendClosed {
		q.ready.Wait()
	}
	if q.head == len(q.buf) {
		return 0, radio.ErrChannelClosed
	}
	s := q.buf[q.head]
	q.head++
	// Reclaim consumed space once it dominates the backing array.
	if q.head > 1024 && q.head*2 >= len(q.buf) {
		n := copy(q.buf, q.buf[q.head:])
		q.buf = q.buf[:n]
		q.head = 0
	}
	return s, nil
}

func (q *sampleQueue) closeSend() {
	q.mu.Lock()
	q.sendClosed = true
	q.ready.Broadcast()
	q.mu.Unlock()
}

func (q *sampleQueue) closeRecv() {
	q.mu.Lock()
	q.recvClosed = true
	q.ready.Broadcast()
	q.mu.Unlock()
}
