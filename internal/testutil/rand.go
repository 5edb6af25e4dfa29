// Package testutil holds small generators shared by this module's
// property-based round-trip tests.
package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
)

// Rand is a deterministic pseudo-random generator: the same seed produces
// the same sequence on every Go version and platform, so property tests
// built on it stay reproducible across runs.
type Rand struct {
	cipher.Block
	blk [aes.BlockSize]byte
}

// NewRand returns a Rand seeded from seed.
func NewRand(seed int) *Rand {
	var key [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	r, _ := aes.NewCipher(key[:])
	return &Rand{Block: r}
}

// Int returns a non-negative pseudo-random int64-range value.
func (r *Rand) Int() (x int) {
	r.Encrypt(r.blk[:], r.blk[:])
	x |= int(r.blk[0]) << 0
	x |= int(r.blk[1]) << 8
	x |= int(r.blk[2]) << 16
	x |= int(r.blk[3]) << 24
	x |= int(r.blk[4]) << 32
	x |= int(r.blk[5]) << 40
	x |= int(r.blk[6]) << 48
	x |= int(r.blk[7]&0x3f) << 56
	return x
}

// Intn returns a pseudo-random value in [0, n).
func (r *Rand) Intn(n int) int {
	return r.Int() % n
}
