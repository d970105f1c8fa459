package demod

// Mode S CRC-24, generator polynomial 0x1FFF409.
//
// crcTable holds, for each bit position 0..111 of a long (112-bit) frame,
// the 24-bit contribution that bit makes to the checksum if set. Because the
// CRC is linear over GF(2), flipping a single bit j of an otherwise
// error-free frame changes the syndrome by exactly crcTable[j] — the same
// table used to compute the checksum also locates single-bit errors. The
// last 24 entries are zero: those bit positions fall inside the frame's own
// parity field, which by construction must not perturb its own checksum.
//
// This table is reproduced bit-for-bit from the reference implementation
// rather than regenerated from the polynomial at package init, since this
// codebase cannot execute a build to cross-check a from-scratch LFSR
// derivation against it (see DESIGN.md).
var crcTable = [MODES_LONG_MSG_BITS]uint32{
	0x3935ea, 0x1c9af5, 0xf1b77e, 0x78dbbf, 0xc397db, 0x9e31e9, 0xb0e2f0, 0x587178,
	0x2c38bc, 0x161c5e, 0x0b0e2f, 0xfa7d13, 0x82c48d, 0xbe9842, 0x5f4c21, 0xd05c14,
	0x682e0a, 0x341705, 0xe5f186, 0x72f8c3, 0xc68665, 0x9cb936, 0x4e5c9b, 0xd8d449,
	0x939020, 0x49c810, 0x24e408, 0x127204, 0x093902, 0x049c81, 0xfdb444, 0x7eda22,
	0x3f6d11, 0xe04c8c, 0x702646, 0x381323, 0xe3f395, 0x8e03ce, 0x4701e7, 0xdc7af7,
	0x91c77f, 0xb719bb, 0xa476d9, 0xadc168, 0x56e0b4, 0x2b705a, 0x15b82d, 0xf52612,
	0x7a9309, 0xc2b380, 0x6159c0, 0x30ace0, 0x185670, 0x0c2b38, 0x06159c, 0x030ace,
	0x018567, 0xff38b7, 0x80665f, 0xbfc92b, 0xa01e91, 0xaff54c, 0x57faa6, 0x2bfd53,
	0xea04ad, 0x8af852, 0x457c29, 0xdd4410, 0x6ea208, 0x375104, 0x1ba882, 0x0dd441,
	0xf91024, 0x7c8812, 0x3e4409, 0xe0d800, 0x706c00, 0x383600, 0x1c1b00, 0x0e0d80,
	0x0706c0, 0x038360, 0x01c1b0, 0x00e0d8, 0x00706c, 0x003836, 0x001c1b, 0xfff409,
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000,
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000,
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000,
}

// invalidChecksumLength is the sentinel Checksum returns for any frame
// length other than MODES_SHORT_MSG_BYTES or MODES_LONG_MSG_BYTES.
const invalidChecksumLength = 0x0F000000

// Checksum computes the Mode S CRC-24 over a 7- or 14-byte frame, ignoring
// the trailing 3 bytes (the transmitted parity). Any other length returns
// the sentinel invalidChecksumLength.
func Checksum(frame []byte) uint32 {
	var bits int
	switch len(frame) {
	case MODES_SHORT_MSG_BYTES:
		bits = MODES_SHORT_MSG_BITS
	case MODES_LONG_MSG_BYTES:
		bits = MODES_LONG_MSG_BITS
	default:
		return invalidChecksumLength
	}

	offset := MODES_LONG_MSG_BITS - bits

	var crc uint32
	for j := 0; j < bits; j++ {
		byteIdx := j / 8
		bitmask := byte(1 << (7 - uint(j%8)))
		if frame[byteIdx]&bitmask != 0 {
			crc ^= crcTable[j+offset]
		}
	}
	return crc
}

// Syndrome returns Checksum(frame) XOR the transmitted parity (the last 3
// bytes of frame, big-endian). Zero means no bit error for a PI frame, or
// directly yields the ICAO for an AP frame (see frame.go).
func Syndrome(frame []byte) uint32 {
	n := len(frame)
	if n != MODES_SHORT_MSG_BYTES && n != MODES_LONG_MSG_BYTES {
		return invalidChecksumLength
	}
	parity := uint32(frame[n-3])<<16 | uint32(frame[n-2])<<8 | uint32(frame[n-1])
	return Checksum(frame) ^ parity
}

// df17Syndromes and df11Syndromes are the per-bit-position syndrome tables
// for long and short frames respectively: the syndrome a single-bit error
// at that position produces, starting from a zero-syndrome frame.
//
// For the data-field bits these equal crcTable (sliced the same way
// Checksum slices it for short frames, offset
// MODES_LONG_MSG_BITS-MODES_SHORT_MSG_BITS), since Checksum's own
// contribution is what changes. But for the trailing 24 parity-field bits
// crcTable is zero — Checksum never perturbs its own checksum field by
// construction — while Syndrome XORs the transmitted parity bytes in
// directly, so flipping transmitted parity bit k (counting from the
// field's MSB) changes the syndrome by exactly 2^(23-k), independent of
// crcTable. populateParitySyndromes fills that in.
var df17Syndromes = func() [MODES_LONG_MSG_BITS]uint32 {
	t := crcTable
	populateParitySyndromes(t[:], MODES_LONG_MSG_BITS)
	return t
}()
var df11Syndromes = func() [MODES_SHORT_MSG_BITS]uint32 {
	var t [MODES_SHORT_MSG_BITS]uint32
	offset := MODES_LONG_MSG_BITS - MODES_SHORT_MSG_BITS
	copy(t[:], crcTable[offset:])
	populateParitySyndromes(t[:], MODES_SHORT_MSG_BITS)
	return t
}()

// populateParitySyndromes overwrites the last 24 entries of table (the
// transmitted parity field, bits n-24..n-1) in place with the syndrome a
// single-bit flip there actually produces: 2^(n-1-i), the weight of that
// bit within the 24-bit parity value Syndrome reads directly off the wire.
func populateParitySyndromes(table []uint32, n int) {
	for i := n - 24; i < n; i++ {
		table[i] = 1 << uint(n-1-i)
	}
}

// reservedSyndromeBits is how many leading bit positions (the DF field) are
// excluded from error-bit search: a located error there is unrecoverable,
// so it is never reported.
const reservedSyndromeBits = 5

// ErrorBit locates the single bit position whose flip would produce the
// given syndrome, for a frame of frameLenBytes (7 or 14). Returns -1 if no
// position matches, or more than one position matches (not a unique
// single-bit explanation), or frameLenBytes is neither 7 nor 14.
func ErrorBit(frameLenBytes int, syndrome uint32) int {
	var table []uint32
	switch frameLenBytes {
	case MODES_LONG_MSG_BYTES:
		table = df17Syndromes[:]
	case MODES_SHORT_MSG_BYTES:
		table = df11Syndromes[:]
	default:
		return -1
	}

	found := -1
	matches := 0
	for i := reservedSyndromeBits; i < len(table); i++ {
		if table[i] == syndrome {
			matches++
			found = i
		}
	}
	if matches != 1 {
		return -1
	}
	return found
}

// FixSingleBitError attempts to correct a single bit error in msg (which
// must carry a nonzero syndrome) using ErrorBit. On success it flips the
// located bit in place and returns its position; on failure it returns -1
// and leaves msg untouched.
func FixSingleBitError(msg []byte) int {
	pos := ErrorBit(len(msg), Syndrome(msg))
	if pos < 0 {
		return -1
	}
	msg[pos/8] ^= 1 << (7 - uint(pos%8))
	return pos
}
