// Package fingerprint implements the deterministic SimHash and MinHash
// signatures and the similarity measures built on them (spec.md §4.2).
// The underlying hash family is github.com/cespare/xxhash/v2, seeded by
// writing an 8-byte big-endian seed ahead of the token bytes into a
// streaming digest — non-cryptographic, fixed-seed, and pure.
package fingerprint

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// seededHash returns a deterministic 64-bit hash of token under the given
// seed. Seed 0 is used for the un-seeded, single-hash cases (SimHash).
func seededHash(token string, seed uint64) uint64 {
	var seedBuf [8]byte
	binary.BigEndian.PutUint64(seedBuf[:], seed)

	d := xxhash.New()
	_, _ = d.Write(seedBuf[:])
	_, _ = d.Write([]byte(token))
	return d.Sum64()
}

// bandDigest streams a band's MinHash values into a single deterministic
// hash, order-sensitive (the band's rows are always visited low-to-high).
type bandDigest struct {
	d *xxhash.Digest
}

func newBandDigest() bandDigest {
	return bandDigest{d: xxhash.New()}
}

func (b bandDigest) writeUint64(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, _ = b.d.Write(buf[:])
}

func (b bandDigest) sum64() uint64 {
	return b.d.Sum64()
}
