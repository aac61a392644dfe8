package sim

// delayLine is a fixed-capacity rolling history of past raw samples, used to
// realize delayed multipath taps. It is an index-addressed ring: push and
// eviction are O(1) and the capacity bound holds mechanically. Offset 0 is
// the most recently pushed sample.
type delayLine struct {
	buf  []complex64
	head int
	size int
}

func newDelayLine(capacity int) *delayLine {
	return &delayLine{buf: make([]complex64, capacity)}
}

// push records s as the newest sample, evicting the oldest one once the
// line is full.
func (d *delayLine) push(s complex64) {
	d.head++
	if d.head == len(d.buf) {
		d.head = 0
	}
	d.buf[d.head] = s
	if d.size < len(d.buf) {
		d.size++
	}
}

// at returns the sample pushed offset steps ago. ok is false when the line
// has not yet accumulated that much history or the offset exceeds capacity.
func (d *delayLine) at(offset int) (complex64, bool) {
	if offset < 0 || offset >= d.size {
		return 0, false
	}
	i := d.head - offset
	if i < 0 {
		i += len(d.buf)
	}
	return d.buf[i], true
}

func (d *delayLine) len() int {
	return d.size
}
