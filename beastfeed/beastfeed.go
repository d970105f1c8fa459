// Package beastfeed adapts a line-oriented, pre-demodulated Mode S frame
// feed (the "*8d4840d6202cc371c32ce0576098;" text form the RTL-SDR
// rtl_adsb tool, and several other retrieval-pack examples, emit) into the
// same classifier/trust-filter stage the I/Q bit slicer feeds. It bypasses
// magnitude computation, preamble detection, and bit slicing entirely —
// those only make sense against raw samples — but still runs every frame
// through CRC validation, ICAO recovery, and the confidence-based trust
// filter, so a noisy text feed gets the same spurious-frame protection a
// live I/Q feed does.
package beastfeed

import (
	"bufio"
	"io"
	"strconv"
	"time"

	"modes1090/demod"
)

// FrameHandler receives one decoded RawFrame per valid line.
type FrameHandler func(demod.RawFrame)

// Reader adapts an io.Reader of newline-delimited "*hex;" lines into a
// decoded frame stream, running each line through its own trust filter
// exactly the way the I/Q pipeline's handleFrame does.
type Reader struct {
	trust *demod.TrustFilter
}

// NewReader builds a Reader backed by its own trust filter at the given
// confidence and ICAO timeout.
func NewReader(confidence demod.ConfidenceLevel, timeout time.Duration) *Reader {
	return &Reader{trust: demod.NewTrustFilter(confidence, timeout)}
}

// Run scans r line by line until EOF or a read error, invoking handler for
// every line that parses into a valid, trusted frame. Malformed or
// untrusted lines are silently skipped — the same FrameRejection posture
// the core pipeline takes, for the same reason: a line-oriented capture
// tool can emit noise just as a raw I/Q stream can.
func (rd *Reader) Run(r io.Reader, handler FrameHandler) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		raw, ok := parseLine(line)
		if !ok {
			continue
		}

		df := demod.GetDownlinkFormat(raw)
		if df == demod.INVALID {
			continue
		}

		icao, ok := demod.GetICAO(raw)
		if !ok {
			continue
		}

		emit := false
		switch df {
		case demod.DF11, demod.DF17, demod.DF18:
			rd.trust.ObservePI(icao)
			emit = true
		default:
			emit = rd.trust.ObserveAP(icao)
		}

		if emit {
			handler(demod.RawFrame{Bytes: raw, DF: df, ICAO: icao})
		}
	}
	return scanner.Err()
}

// parseLine recognizes the canonical "*" + hex + ";" wire form and decodes
// it to a 7- or 14-byte frame, mirroring the teacher's parseADSB /
// isValidMsgText pair but accepting both short and long frame lengths
// rather than assuming a fixed 14-byte payload.
func parseLine(line string) (frame []byte, ok bool) {
	if len(line) < 3 || line[0] != '*' || line[len(line)-1] != ';' {
		return nil, false
	}

	hexPart := line[1 : len(line)-1]
	if len(hexPart)%2 != 0 {
		return nil, false
	}

	n := len(hexPart) / 2
	if n != demod.MODES_SHORT_MSG_BYTES && n != demod.MODES_LONG_MSG_BYTES {
		return nil, false
	}

	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseUint(hexPart[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, false
		}
		buf[i] = byte(v)
	}
	return buf, true
}
