package bitio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriteReadRoundTrip verifies that a sequence of arbitrary-width fields
// written MSB-first comes back out unchanged, for widths spanning 1 to 64
// bits including sequences that don't land on byte boundaries.
func TestWriteReadRoundTrip(t *testing.T) {
	var vectors = []struct {
		desc   string
		widths []uint
		values []uint64
	}{
		{"single bit", []uint{1}, []uint64{1}},
		{"byte aligned", []uint{8, 8, 8}, []uint64{0xAB, 0x00, 0xFF}},
		{"odd widths", []uint{3, 5, 1, 7}, []uint64{5, 17, 0, 100}},
		{"wide fields", []uint{64, 33, 17}, []uint64{0xFFFFFFFFFFFFFFFF, 1 << 32, 1}},
		{"prime-sized gaps", []uint{11, 5, 5, 5, 11}, []uint64{997, 2, 0, 1, 1009}},
	}

	for _, v := range vectors {
		t.Run(v.desc, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			for i, width := range v.widths {
				require.NoError(t, w.WriteBits(v.values[i], width))
			}
			require.NoError(t, w.Close())

			r := NewReader(&buf)
			for i, width := range v.widths {
				got, err := r.ReadBits(width)
				require.NoError(t, err)
				assert.Equal(t, v.values[i], got, "field %d", i)
			}
		})
	}
}

// TestPosition checks that cumulative bit position is tracked on both sides.
func TestPosition(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteBits(3, 3))
	assert.EqualValues(t, 3, w.Position())
	require.NoError(t, w.WriteBits(10, 11))
	assert.EqualValues(t, 14, w.Position())
	require.NoError(t, w.Close())

	r := NewReader(&buf)
	_, err := r.ReadBits(3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, r.Position())
	_, err = r.ReadBits(11)
	require.NoError(t, err)
	assert.EqualValues(t, 14, r.Position())
}

// TestAlignToByte checks padding on write and discard-to-boundary on read.
func TestAlignToByte(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteBits(1, 1)) // one bit into the first byte
	require.NoError(t, w.AlignToByte())
	require.NoError(t, w.WriteBits(0xAB, 8))
	require.NoError(t, w.Close())

	assert.Equal(t, []byte{0x80, 0xAB}, buf.Bytes())

	r := NewReader(&buf)
	bit, err := r.ReadBits(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, bit)
	r.AlignToByte()
	next, err := r.ReadBits(8)
	require.NoError(t, err)
	assert.EqualValues(t, 0xAB, next)
}

// TestShortRead checks that reading past the end of the channel surfaces
// ErrShortRead rather than a bare io.EOF.
func TestShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF}))
	_, err := r.ReadBits(4)
	require.NoError(t, err)
	_, err = r.ReadBits(16)
	assert.ErrorIs(t, err, ErrShortRead)
}

// TestEOFOnEmpty checks the boundary case of reading from an exhausted
// channel with no bits buffered at all.
func TestEOFOnEmpty(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	_, err := r.ReadBits(1)
	assert.ErrorIs(t, err, ErrShortRead)
}
