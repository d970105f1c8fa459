package demod

import (
	"sync/atomic"
	"time"
)

const (
	stateIdle int32 = iota
	stateAsyncRunning
)

// idlePollInterval is how long the async worker sleeps when the producer
// queue is momentarily empty, per the spec's concurrency model. 2 Msps
// streams tolerate this because the producer buffer is expected to be
// deep; see SPEC_FULL.md's Open Question Resolutions for why this isn't
// replaced with a condition variable.
const idlePollInterval = 100 * time.Millisecond

// Stats is a snapshot of pipeline activity, useful for the testable
// properties in spec.md §8 and for the demo CLI's periodic reporting. It
// adds no decoded higher-layer field (altitude, position, callsign stay
// out of scope).
type Stats struct {
	SamplesProcessed uint64
	PreamblesMatched uint64
	FramesSliced     uint64
	FramesRejected   uint64
	FramesEmitted    uint64
	Promotions       uint64
}

// Decoder is the demodulator + parity + trust-filter pipeline. A single
// instance owns one ring buffer, one frame buffer, and one trust filter;
// it supports either synchronous demodulation of a caller-supplied sample
// batch, or a single dedicated asynchronous worker draining a producer
// queue. The two modes are mutually exclusive at any given time.
type Decoder struct {
	ring  RingBuffer
	trust *TrustFilter

	consumer FrameConsumer

	state  int32
	cancel chan struct{}

	stats Stats
}

// NewDecoder builds a Decoder wired to the given consumer callback. A zero
// Config uses Medium confidence and the default 180s ICAO timeout.
func NewDecoder(cfg Config, consumer FrameConsumer) *Decoder {
	confidence := cfg.Confidence
	if confidence == 0 {
		confidence = Medium
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultICAOTimeout
	}

	return &Decoder{
		trust:    NewTrustFilter(confidence, timeout),
		consumer: consumer,
	}
}

// Stats returns a snapshot of the decoder's running counters.
func (d *Decoder) Stats() Stats {
	return Stats{
		SamplesProcessed: atomic.LoadUint64(&d.stats.SamplesProcessed),
		PreamblesMatched: atomic.LoadUint64(&d.stats.PreamblesMatched),
		FramesSliced:     atomic.LoadUint64(&d.stats.FramesSliced),
		FramesRejected:   atomic.LoadUint64(&d.stats.FramesRejected),
		FramesEmitted:    atomic.LoadUint64(&d.stats.FramesEmitted),
		Promotions:       atomic.LoadUint64(&d.stats.Promotions),
	}
}

// Demodulate processes a bounded slice of samples inline on the caller's
// execution context: no suspension, no concurrency. It is a MisuseError to
// call this while the asynchronous worker is running.
func (d *Decoder) Demodulate(samples []IQSample) error {
	if atomic.LoadInt32(&d.state) != stateIdle {
		return &MisuseError{Op: "Demodulate called while async worker is running"}
	}

	for _, s := range samples {
		d.processSample(s)
	}
	return nil
}

// StartAsync starts the single dedicated worker goroutine that dequeues
// samples from queue until Stop is called. Only one async worker may be
// active per Decoder at a time; attempting to start a second is a fatal
// MisuseError.
func (d *Decoder) StartAsync(queue SampleQueue) error {
	if !atomic.CompareAndSwapInt32(&d.state, stateIdle, stateAsyncRunning) {
		return &MisuseError{Op: "StartAsync called while a worker is already running"}
	}

	d.cancel = make(chan struct{})
	cancel := d.cancel

	go func() {
		defer atomic.StoreInt32(&d.state, stateIdle)

		for {
			select {
			case <-cancel:
				return
			default:
			}

			sample, ok := queue.Pop()
			if !ok {
				time.Sleep(idlePollInterval)
				continue
			}

			d.processSample(sample)
		}
	}()

	return nil
}

// Stop signals the async worker to exit at its next iteration check. It
// does not block on the queue draining or on the worker goroutine
// actually exiting.
func (d *Decoder) Stop() {
	if d.cancel != nil {
		close(d.cancel)
	}
}

// processSample is the per-sample hot path shared by both scheduling
// modes: compute magnitude, push into the ring, test for a preamble, and
// on a hit attempt to slice, classify, validate, and trust a frame. The
// ring buffer, frame buffer, and bit-slicer's prev_avg state are all owned
// exclusively by whichever context calls this (the worker, or the
// synchronous caller) — never both at once, enforced by the state guard
// above.
func (d *Decoder) processSample(s IQSample) {
	atomic.AddUint64(&d.stats.SamplesProcessed, 1)

	mag := uint32(Magnitude(s))
	d.ring.Push(mag)

	if !d.ring.hasPreamble() {
		return
	}
	atomic.AddUint64(&d.stats.PreamblesMatched, 1)

	frame, ok := sliceFrame(&d.ring)
	if !ok {
		atomic.AddUint64(&d.stats.FramesRejected, 1)
		return
	}
	atomic.AddUint64(&d.stats.FramesSliced, 1)

	d.handleFrame(frame)
}

// handleFrame runs CRC validation, ICAO recovery, and the trust filter
// against a sliced frame, emitting it to the consumer if it clears all
// three. Every rejection here is a silent FrameRejection per spec §7:
// these are expected at high volume on a noisy RF channel and must not be
// logged per-event.
func (d *Decoder) handleFrame(frame []byte) {
	df := GetDownlinkFormat(frame)
	if df == INVALID {
		atomic.AddUint64(&d.stats.FramesRejected, 1)
		return
	}

	corrected, icao, ok := RecoverFrame(frame)
	if !ok {
		atomic.AddUint64(&d.stats.FramesRejected, 1)
		return
	}
	frame = corrected

	var emit bool
	if isPIFormat(df) {
		wasTrusted := d.trust.IsTrusted(icao)
		d.trust.ObservePI(icao)
		emit = true
		if !wasTrusted {
			atomic.AddUint64(&d.stats.Promotions, 1)
		}
	} else {
		wasTrusted := d.trust.IsTrusted(icao)
		emit = d.trust.ObserveAP(icao)
		if emit && !wasTrusted {
			atomic.AddUint64(&d.stats.Promotions, 1)
		}
	}

	if !emit {
		atomic.AddUint64(&d.stats.FramesRejected, 1)
		return
	}

	atomic.AddUint64(&d.stats.FramesEmitted, 1)

	if d.consumer != nil {
		d.consumer(RawFrame{Bytes: frame, DF: df, ICAO: icao})
	}
}
