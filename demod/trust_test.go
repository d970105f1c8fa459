package demod

import (
	"testing"
	"time"
)

func TestObservePITrustsImmediately(t *testing.T) {
	tf := NewTrustFilter(Medium, time.Minute)
	const icao = uint32(0xABCDEF)

	if tf.IsTrusted(icao) {
		t.Fatal("icao should not start trusted")
	}
	tf.ObservePI(icao)
	if !tf.IsTrusted(icao) {
		t.Fatal("a single PI sighting must trust immediately")
	}
}

func TestObserveAPRequiresThreshold(t *testing.T) {
	tf := NewTrustFilter(Medium, time.Minute) // threshold 2
	const icao = uint32(0x112233)

	if emit := tf.ObserveAP(icao); emit {
		t.Fatal("first AP sighting must not emit below threshold")
	}
	if tf.IsTrusted(icao) {
		t.Fatal("icao should still be a mere candidate")
	}
	if count := tf.CandidateCount(icao); count != 1 {
		t.Fatalf("candidate count = %d, want 1", count)
	}

	if emit := tf.ObserveAP(icao); !emit {
		t.Fatal("second AP sighting must reach Medium threshold and emit")
	}
	if !tf.IsTrusted(icao) {
		t.Fatal("icao should be promoted to trusted after threshold")
	}
	if count := tf.CandidateCount(icao); count != 0 {
		t.Fatalf("candidate entry should be cleared after promotion, count = %d", count)
	}
}

func TestObserveAPLowConfidencePromotesOnFirstSighting(t *testing.T) {
	tf := NewTrustFilter(Low, time.Minute)
	const icao = uint32(0x445566)

	if emit := tf.ObserveAP(icao); !emit {
		t.Fatal("Low confidence (threshold 1) must emit on the first sighting")
	}
}

func TestObserveAPOnceTrustedAlwaysEmits(t *testing.T) {
	tf := NewTrustFilter(High, time.Minute)
	const icao = uint32(0x778899)

	tf.ObservePI(icao)
	for i := 0; i < 3; i++ {
		if emit := tf.ObserveAP(icao); !emit {
			t.Fatalf("iteration %d: already-trusted icao must keep emitting on AP sightings", i)
		}
	}
}

func TestTrustEntryExpiresAfterTimeout(t *testing.T) {
	const timeout = 40 * time.Millisecond
	tf := NewTrustFilter(High, timeout)
	const icao = uint32(0x0A0B0C)

	tf.ObservePI(icao)
	if !tf.IsTrusted(icao) {
		t.Fatal("expected immediate trust after PI sighting")
	}

	time.Sleep(timeout + 100*time.Millisecond)

	if tf.IsTrusted(icao) {
		t.Fatal("expected trusted entry to expire after the timeout elapses with no refresh")
	}
}

func TestTrustEntryRefreshExtendsLifetime(t *testing.T) {
	const timeout = 80 * time.Millisecond
	tf := NewTrustFilter(High, timeout)
	const icao = uint32(0x0D0E0F)

	tf.ObservePI(icao)

	time.Sleep(timeout / 2)
	tf.ObserveAP(icao) // refresh before expiry

	time.Sleep(timeout / 2)
	if !tf.IsTrusted(icao) {
		t.Fatal("a refreshed entry should still be trusted past the original deadline")
	}
}

func TestCandidateCountZeroForUnknownICAO(t *testing.T) {
	tf := NewTrustFilter(Medium, time.Minute)
	if count := tf.CandidateCount(0xFFFFFF); count != 0 {
		t.Fatalf("unknown icao candidate count = %d, want 0", count)
	}
}
