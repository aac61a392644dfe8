package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/sdrlab/simradio/pkg/radio"
)

func Test_sampleQueue_order(t *testing.T) {
	q := newSampleQueue()
	for i := 0; i < 100; i++ {
		if err := q.push(complex(float32(i), 0)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	for i := 0; i < 100; i++ {
		got, err := q.pop()
		if err != nil {
			t.Fatalf("pop %d: %v", i, err)
		}
		if want := complex(float32(i), 0); got != want {
			t.Fatalf("pop %d = %v, want %v", i, got, want)
		}
	}
}

func Test_sampleQueue_popBlocksUntilPush(t *testing.T) {
	q := newSampleQueue()
	done := make(chan complex64, 1)
	go func() {
		s, err := q.pop()
		if err != nil {
			t.Errorf("pop: %v", err)
		}
		done <- s
	}()

	select {
	case <-done:
		t.Fatal("pop returned before any sample was pushed")
	case <-time.After(10 * time.Millisecond):
	}

	if err := q.push(complex(7, 0)); err != nil {
		t.Fatalf("push: %v", err)
	}
	select {
	case s := <-done:
		if s != complex(7, 0) {
			t.Fatalf("pop = %v, want (7+0i)", s)
		}
	case <-time.After(time.Second):
		t.Fatal("pop did not wake after push")
	}
}

func Test_sampleQueue_drainsAfterSendClose(t *testing.T) {
	q := newSampleQueue()
	q.push(complex(1, 0))
	q.push(complex(2, 0))
	q.closeSend()

	for i, want := range []complex64{complex(1, 0), complex(2, 0)} {
		got, err := q.pop()
		if err != nil || got != want {
			t.Fatalf("pop %d = %v, %v, want %v, nil", i, got, err, want)
		}
	}
	if _, err := q.pop(); !errors.Is(err, radio.ErrChannelClosed) {
		t.Fatalf("pop on drained closed queue = %v, want ErrChannelClosed", err)
	}
}

func Test_sampleQueue_pushAfterRecvClose(t *testing.T) {
	q := newSampleQueue()
	q.closeRecv()
	if err := q.push(complex(1, 0)); !errors.Is(err, radio.ErrChannelClosed) {
		t.Fatalf("push after recv close = %v, want ErrChannelClosed", err)
	}
}

func Test_sampleQueue_closeSendWakesBlockedPop(t *testing.T) {
	q := newSampleQueue()
	errc := make(chan error, 1)
	go func() {
		_, err := q.pop()
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.closeSend()

	select {
	case err := <-errc:
		if !errors.Is(err, radio.ErrChannelClosed) {
			t.Fatalf("pop after close = %v, want ErrChannelClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked pop was not woken by closeSend")
	}
}

func Test_sampleQueue_compaction(t *testing.T) {
	q := newSampleQueue()
	const n = 10000
	for i := 0; i < n; i++ {
		if err := q.push(complex(float32(i), 0)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		got, err := q.pop()
		if err != nil {
			t.Fatalf("pop %d: %v", i, err)
		}
		if want := complex(float32(i), 0); got != want {
			t.Fatalf("pop %d = %v, want %v (order broken across compaction)", i, got, want)
		}
	}
}
