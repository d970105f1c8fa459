package demod

import "testing"

func TestGetDownlinkFormat(t *testing.T) {
	cases := []struct {
		byte0 byte
		want  DownlinkFormat
	}{
		{0x00, DF0},
		{0x20, DF4},
		{0x28, DF5},
		{0x58, DF11},
		{0x80, DF16},
		{0x8D, DF17},
		{0x90, DF18},
		{0xA0, DF20},
		{0xA8, DF21},
		{0xC0, DF24},
		{0x08, INVALID}, // DF1, unassigned
	}
	for _, c := range cases {
		got := GetDownlinkFormat([]byte{c.byte0})
		if got != c.want {
			t.Errorf("byte0=%#x: got %s, want %s", c.byte0, got, c.want)
		}
	}
}

func TestGetICAOCleanDF17(t *testing.T) {
	frame := mustHex(t, cleanDF17Hex)
	icao, ok := GetICAO(frame)
	if !ok {
		t.Fatal("expected ok=true for clean frame")
	}
	if want := uint32(0x4840D6); icao != want {
		t.Fatalf("icao = %#x, want %#x", icao, want)
	}
}

func TestGetICAOCorrectsSingleBitFlip(t *testing.T) {
	frame := mustHex(t, cleanDF17Hex)
	// Flip a bit safely inside the ICAO/data payload, away from the DF
	// field (bits 0-4) so it remains recoverable.
	const bit = 40
	frame[bit/8] ^= 1 << (7 - uint(bit%8))

	icao, ok := GetICAO(frame)
	if !ok {
		t.Fatal("expected recoverable single-bit error")
	}
	if want := uint32(0x4840D6); icao != want {
		t.Fatalf("icao after correction = %#x, want %#x", icao, want)
	}
}

func TestGetICAORejectsTwoBitErrors(t *testing.T) {
	frame := mustHex(t, cleanDF17Hex)
	frame[5] ^= 1 << 3
	frame[9] ^= 1 << 1

	if _, ok := GetICAO(frame); ok {
		t.Fatal("expected two-bit corruption to be rejected, not silently corrected")
	}
}

func TestGetICAODF18WithNonzeroCF(t *testing.T) {
	frame := mustHex(t, cleanDF17Hex)
	frame[0] = 0x90 | 0x01 // DF18, CF=1: no ICAO field

	if _, ok := GetICAO(frame); ok {
		t.Fatal("expected DF18 CF!=0 to report no ICAO")
	}
}

func TestGetICAOInvalidDF(t *testing.T) {
	frame := mustHex(t, cleanDF17Hex)
	frame[0] = 0x08 // DF1: unassigned

	if _, ok := GetICAO(frame); ok {
		t.Fatal("expected INVALID DF to report no ICAO")
	}
}

func TestGetICAOAPFrameReturnsSyndrome(t *testing.T) {
	// An AP-class frame (e.g. DF4) has no explicit ICAO field: GetICAO must
	// return the syndrome unconditionally, leaving trust evaluation to the
	// caller.
	frame := make([]byte, MODES_SHORT_MSG_BYTES)
	frame[0] = 0x20 // DF4
	icao, ok := GetICAO(frame)
	if !ok {
		t.Fatal("expected ok=true for AP-class frame")
	}
	if icao != Syndrome(frame)&0xFFFFFF {
		t.Fatalf("icao = %#x, want syndrome %#x", icao, Syndrome(frame)&0xFFFFFF)
	}
}

func TestFrameBitLength(t *testing.T) {
	if frameBitLength(DF17) != MODES_LONG_MSG_BITS {
		t.Fatal("DF17 should be a long frame")
	}
	if frameBitLength(DF4) != MODES_SHORT_MSG_BITS {
		t.Fatal("DF4 should be a short frame")
	}
}
