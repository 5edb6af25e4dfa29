package seqfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-primes/primeseq/internal/header"
	"github.com/go-primes/primeseq/internal/testutil"
)

// genAscending produces a random sequence in the shape the format actually
// targets: 2 followed by strictly ascending odd values, so every gap halves
// cleanly under the prime-gap encoding without requiring the values to
// actually be prime.
func genAscending(r *testutil.Rand, n int, maxGap int) []int64 {
	values := make([]int64, n)
	values[0] = 2
	values[1] = 3
	cur := int64(3)
	for i := 2; i < n; i++ {
		gap := int64(2 + 2*r.Intn(maxGap/2))
		cur += gap
		values[i] = cur
	}
	return values
}

// bitsFor derives the geometry frames of offsetsPerFrame entries need to hold values
// without overflowing either field, mirroring internal/config.BitsPerFullEntry
// but computed from the actual generated sequence rather than a bound.
func bitsFor(values []int64, offsetsPerFrame int) (bitsFull, bitsOffset uint8) {
	var maxFullEnc, maxGapEnc uint64
	for i, v := range values {
		if i%offsetsPerFrame == 0 {
			if e := header.EncodeFull(uint64(v)); e > maxFullEnc {
				maxFullEnc = e
			}
			continue
		}
		if e := header.EncodeOffset(uint64(v - values[i-1])); e > maxGapEnc {
			maxGapEnc = e
		}
	}
	return bitsNeeded(maxFullEnc), bitsNeeded(maxGapEnc)
}

func TestPropertyRandomAscendingRoundTrips(t *testing.T) {
	r := testutil.NewRand(1)

	for trial := 0; trial < 20; trial++ {
		n := 8 + r.Intn(200)
		values := genAscending(r, n, 40)
		const offsetsPerFrame = 5
		bitsFull, bitsOffset := bitsFor(values, offsetsPerFrame)
		geom := Geometry{BitsPerFullEntry: bitsFull, BitsPerOffsetEntry: bitsOffset, OffsetsPerFrame: offsetsPerFrame}

		path := filepath.Join(t.TempDir(), "prop.seq")
		writeValues(t, path, geom, values)

		sf, err := Open(path, Read, false, Geometry{})
		require.NoError(t, err)

		it, err := sf.Iterate()
		require.NoError(t, err)
		var got []int64
		for {
			v, ok, err := it.Next()
			require.NoError(t, err)
			if !ok {
				break
			}
			got = append(got, v)
		}
		assert.Equal(t, values, got, "trial %d", trial)

		for i, want := range values {
			v, err := sf.Get(uint64(i))
			require.NoError(t, err)
			assert.Equal(t, want, v, "trial %d index %d", trial, i)
		}

		for i := range values {
			idx, ok, err := sf.Search(values[i], BiasNone)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.EqualValues(t, i, idx)
		}

		require.NoError(t, sf.Close())
	}
}
