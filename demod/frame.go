package demod

// DownlinkFormat is the 5-bit field identifying a Mode S reply's structure.
type DownlinkFormat int

const (
	DF0  DownlinkFormat = 0
	DF4  DownlinkFormat = 4
	DF5  DownlinkFormat = 5
	DF11 DownlinkFormat = 11
	DF16 DownlinkFormat = 16
	DF17 DownlinkFormat = 17
	DF18 DownlinkFormat = 18
	DF20 DownlinkFormat = 20
	DF21 DownlinkFormat = 21
	DF24 DownlinkFormat = 24

	// INVALID marks any 5-bit value outside the enumerated set above.
	INVALID DownlinkFormat = -1
)

func (df DownlinkFormat) String() string {
	switch df {
	case DF0:
		return "DF0"
	case DF4:
		return "DF4"
	case DF5:
		return "DF5"
	case DF11:
		return "DF11"
	case DF16:
		return "DF16"
	case DF17:
		return "DF17"
	case DF18:
		return "DF18"
	case DF20:
		return "DF20"
	case DF21:
		return "DF21"
	case DF24:
		return "DF24"
	default:
		return "INVALID"
	}
}

// GetDownlinkFormat extracts the top 5 bits of frame[0]. Any value not in
// the enumerated DownlinkFormat set is reported as INVALID.
func GetDownlinkFormat(frame []byte) DownlinkFormat {
	raw := int(frame[0]>>3) & 0x1F
	switch raw {
	case 0, 4, 5, 11, 16, 17, 18, 20, 21, 24:
		return DownlinkFormat(raw)
	default:
		return INVALID
	}
}

// frameBitLength returns the wire length, in bits, for a given DF.
func frameBitLength(df DownlinkFormat) int {
	switch df {
	case DF16, DF17, DF18, DF20, DF21, DF24:
		return MODES_LONG_MSG_BITS
	default:
		return MODES_SHORT_MSG_BITS
	}
}

// isPIFormat reports whether df carries its ICAO address explicitly
// (parity-interrogator downlinks), as opposed to XORed into the checksum.
func isPIFormat(df DownlinkFormat) bool {
	return df == DF11 || df == DF17 || df == DF18
}

// cf extracts the Control Field of a DF18 frame (bits 6-8 of byte 0).
func cf(frame []byte) int {
	return int(frame[0]) & 0x07
}

// GetICAO recovers the ICAO24 candidate address from a classified frame.
// For PI downlinks (DF11/17/18 with CF=0) this is the address carried
// explicitly in bits 9-32, corrected for a single recoverable bit error if
// necessary. For AP downlinks the ICAO is not directly observable — the
// classifier returns the syndrome itself as the candidate address, and it
// is the trust filter's job (trust.go) to decide whether that candidate is
// real traffic or CRC noise. ok is false when the frame carries no ICAO at
// all (DF18 with CF!=0, or an INVALID DF), or when a PI downlink has a
// nonzero syndrome that no unique single-bit correction explains.
func GetICAO(frame []byte) (icao uint32, ok bool) {
	_, icao, ok = RecoverFrame(frame)
	return icao, ok
}

// RecoverFrame is GetICAO plus the corrected frame bytes: for a PI downlink
// recovered via a single-bit correction, corrected is a copy of frame with
// that bit flipped back, so a caller that re-emits the frame (e.g. as hex)
// doesn't surface the transmission error GetICAO already looked past. For
// every other case (clean PI frame, AP downlink, unrecoverable frame),
// corrected is frame itself, unmodified.
func RecoverFrame(frame []byte) (corrected []byte, icao uint32, ok bool) {
	df := GetDownlinkFormat(frame)

	switch {
	case df == INVALID:
		return frame, 0, false

	case df == DF18 && cf(frame) != 0:
		// No ICAO address field in this DF18 variant.
		return frame, 0, false

	case isPIFormat(df):
		syn := Syndrome(frame)
		if df == DF11 {
			// The low 7 bits of a DF11 syndrome encode the interrogator
			// identifier (II/SI code), not parity; mask them off.
			syn &= 0xFFFF80
		}

		if syn == 0 {
			return frame, explicitICAO(frame), true
		}

		pos := ErrorBit(len(frame), syn)
		if pos < 0 {
			return frame, 0, false
		}
		if pos < reservedSyndromeBits {
			// Error located within the DF field itself: unrecoverable.
			return frame, 0, false
		}

		fixed := make([]byte, len(frame))
		copy(fixed, frame)
		fixed[pos/8] ^= 1 << (7 - uint(pos%8))
		return fixed, explicitICAO(fixed), true

	default:
		// AP downlink: the transmitter XORed the ICAO into the CRC, so a
		// correctly received frame's syndrome equals the ICAO itself.
		// Every random bit pattern also produces a syntactically valid
		// 24-bit value here; the trust filter is what separates signal
		// from noise.
		return frame, Syndrome(frame) & 0xFFFFFF, true
	}
}

// explicitICAO reads the 24-bit ICAO carried in frame[1..4] (bits 9-32).
func explicitICAO(frame []byte) uint32 {
	return uint32(frame[1])<<16 | uint32(frame[2])<<8 | uint32(frame[3])
}
