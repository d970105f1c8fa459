package demod

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// ConfidenceLevel is the policy knob controlling how many address-parity
// sightings of a previously-unseen ICAO24 are required before it is
// promoted from CandidateMap to TrustedMap. PI downlinks (DF11/17/18) skip
// this requirement entirely: they carry a verifiable checksum, not one
// XORed with the address, so a zero syndrome is sufficient on its own.
type ConfidenceLevel int

const (
	Low    ConfidenceLevel = 1
	Medium ConfidenceLevel = 2
	High   ConfidenceLevel = 5
)

// DefaultICAOTimeout is the TTL after which an unseen ICAO24 is evicted
// from either map, per spec: 180 seconds.
const DefaultICAOTimeout = 180 * time.Second

// sweepInterval is how often the background janitor checks for expired
// entries. The same interval drives both maps.
const sweepInterval = 10 * time.Second

// candidateEntry tracks an ICAO24 that has not yet reached TrustedMap: how
// many valid address-parity frames have named it. Trusted entries need
// only the last-seen timestamp, which go-cache already tracks internally
// per item, so TrustedMap stores no payload at all.
type candidateEntry struct {
	count uint32
}

// TrustFilter maintains the TrustedMap and CandidateMap described in the
// data model: an ICAO24 is never in both at once, and promotion between
// them is atomic from the perspective of any single caller. It is driven
// exclusively by the demodulator's worker; the TTL sweep that evicts stale
// entries runs on its own independent goroutine (go-cache's janitor),
// exactly the way the teacher's icao_cache does.
type TrustFilter struct {
	trusted    *cache.Cache
	candidates *cache.Cache
	threshold  int
}

// NewTrustFilter builds a trust filter with the given confidence level and
// ICAO timeout. Both maps share the same TTL and are swept every 10s.
func NewTrustFilter(confidence ConfidenceLevel, timeout time.Duration) *TrustFilter {
	return &TrustFilter{
		trusted:    cache.New(timeout, sweepInterval),
		candidates: cache.New(timeout, sweepInterval),
		threshold:  int(confidence),
	}
}

func icaoKey(icao uint32) string {
	return strconv.FormatUint(uint64(icao), 16)
}

// IsTrusted reports whether icao currently has an unexpired TrustedMap
// entry.
func (t *TrustFilter) IsTrusted(icao uint32) bool {
	_, found := t.trusted.Get(icaoKey(icao))
	return found
}

// CandidateCount reports how many address-parity sightings icao has
// accumulated so far, or 0 if it is not in CandidateMap.
func (t *TrustFilter) CandidateCount(icao uint32) int {
	v, found := t.candidates.Get(icaoKey(icao))
	if !found {
		return 0
	}
	return int(v.(*candidateEntry).count)
}

// ObservePI processes a PI-class frame (DF11/17/18) whose syndrome the
// caller has already verified is zero (after any single-bit correction).
// PI downlinks carry a genuine checksum, so the address is promoted or
// refreshed in TrustedMap unconditionally and any stale CandidateMap entry
// for it is cleared.
func (t *TrustFilter) ObservePI(icao uint32) {
	key := icaoKey(icao)
	t.trusted.SetDefault(key, struct{}{})
	t.candidates.Delete(key)
}

// ObserveAP processes an AP-class frame (DF0/4/5/16/20/21/24) whose
// candidate ICAO is the frame's syndrome. Because the transmitter XORs the
// real ICAO into the checksum, any random bit pattern also produces a
// plausible-looking address here; ObserveAP is what tells noise from
// signal apart. It returns whether the frame should be emitted to the
// consumer.
func (t *TrustFilter) ObserveAP(icao uint32) bool {
	key := icaoKey(icao)

	if t.IsTrusted(icao) {
		t.trusted.SetDefault(key, struct{}{}) // refresh last-seen
		return true
	}

	existing, found := t.candidates.Get(key)
	if !found {
		if 1 >= t.threshold {
			t.trusted.SetDefault(key, struct{}{})
			return true
		}
		t.candidates.SetDefault(key, &candidateEntry{count: 1})
		return false
	}

	entry := existing.(*candidateEntry)
	entry.count++
	t.candidates.SetDefault(key, entry) // refresh last-seen, keep the pointer

	if int(entry.count) < t.threshold {
		return false
	}

	t.trusted.SetDefault(key, struct{}{})
	t.candidates.Delete(key)
	return true
}
