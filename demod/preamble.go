package demod

// RingBuffer is a fixed-length circular array of magnitudes, sized to hold
// one candidate preamble plus the longest possible message (PPM-encoded, 2
// samples per bit): PREAMBLE_SAMPLES + 2*MODES_LONG_MSG_BITS = 240. No heap
// allocation happens per sample; Push only ever touches the backing array.
type RingBuffer struct {
	buf    [ringLen]uint32
	cursor int
}

// Push records the newest magnitude and advances the write cursor. After
// Push, the newest sample sits at cursor-1 and the next candidate preamble
// begins at cursor (the oldest sample still held).
func (r *RingBuffer) Push(mag uint32) {
	r.buf[r.cursor] = mag
	r.cursor++
	if r.cursor == ringLen {
		r.cursor = 0
	}
}

// At returns the magnitude offset samples ahead of the current candidate
// preamble start (r.cursor), wrapping modulo the buffer length.
func (r *RingBuffer) At(offset int) uint32 {
	idx := r.cursor + offset
	idx %= ringLen
	return r.buf[idx]
}

// hasPreamble runs the shape, high-spike-average, and quiet-zone tests
// against the candidate window starting at the ring's current cursor. It
// is evaluated on every sample tick; the Mode S preamble is four pulses at
// chip positions 0, 2, 7, 9 of a 16-sample window, with positions
// 1,3,4,5,6,8,11-14 required low and position 10 unconstrained.
func (r *RingBuffer) hasPreamble() bool {
	p0 := r.At(0)
	p1 := r.At(1)
	p2 := r.At(2)
	p3 := r.At(3)
	p4 := r.At(4)
	p5 := r.At(5)
	p6 := r.At(6)
	p7 := r.At(7)
	p8 := r.At(8)
	p9 := r.At(9)
	p11 := r.At(11)
	p12 := r.At(12)
	p13 := r.At(13)
	p14 := r.At(14)

	// Shape test.
	if !(p0 > p1 && p1 < p2 && p2 > p3 && p3 < p0) {
		return false
	}
	if !(p4 < p0 && p5 < p0 && p6 < p0) {
		return false
	}
	if !(p7 > p8 && p8 < p9 && p9 > p6) {
		return false
	}

	// High-spike average test. Integer division by 6, not 4, is
	// intentional slack carried over from the reference implementation.
	highAvg := (p0 + p2 + p7 + p9) / 6
	if !(p4 < highAvg && p5 < highAvg) {
		return false
	}

	// Quiet-zone test.
	if !(p11 < highAvg && p12 < highAvg && p13 < highAvg && p14 < highAvg) {
		return false
	}

	return true
}
