package main

import (
	"bufio"
	"io"

	"modes1090/demod"
)

// sampleReaderQueue adapts an io.Reader of raw 8-bit unsigned I/Q pairs
// into a demod.SampleQueue. It is read from exactly one goroutine (the
// decoder's async worker), so it needs no internal locking.
type sampleReaderQueue struct {
	r   *bufio.Reader
	eof bool
}

func newSampleReaderQueue(r io.Reader) *sampleReaderQueue {
	return &sampleReaderQueue{r: bufio.NewReaderSize(r, 1<<16)}
}

func (q *sampleReaderQueue) Pop() (demod.IQSample, bool) {
	if q.eof {
		return demod.IQSample{}, false
	}
	i, err := q.r.ReadByte()
	if err != nil {
		q.eof = true
		return demod.IQSample{}, false
	}
	qq, err := q.r.ReadByte()
	if err != nil {
		q.eof = true
		return demod.IQSample{}, false
	}
	return demod.IQSample{I: i, Q: qq}, true
}
