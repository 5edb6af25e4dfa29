package header

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{
		BitsPerOffsetEntry: 5,
		BitsPerFullEntry:   11,
		OffsetsPerFrame:    4,
		Count:              1000,
		MaxOffset:          31,
	}
	got, err := Decode(h.Encode())
	require.NoError(t, err)
	if diff := cmp.Diff(h, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	good := Header{BitsPerOffsetEntry: 5, BitsPerFullEntry: 11, OffsetsPerFrame: 4}.Encode()

	var vectors = []struct {
		desc    string
		mutate  func([]byte)
		wantErr error
	}{
		{"too short", func(b []byte) {}, ErrCorruptHeader},
		{"bad magic", func(b []byte) { b[0] = 0x00 }, ErrCorruptHeader},
		{"bad version", func(b []byte) { b[3] = 2 }, ErrCorruptHeader},
		{"zero offset width", func(b []byte) { b[4] = 0 }, ErrCorruptHeader},
		{"zero full width", func(b []byte) { b[5] = 0 }, ErrCorruptHeader},
		{"zero offsets per frame", func(b []byte) { b[6], b[7] = 0, 0 }, ErrCorruptHeader},
	}

	for _, v := range vectors {
		t.Run(v.desc, func(t *testing.T) {
			b := append([]byte(nil), good...)
			if v.desc == "too short" {
				b = b[:Size-1]
			} else {
				v.mutate(b)
			}
			_, err := Decode(b)
			assert.ErrorIs(t, err, v.wantErr)
		})
	}
}

func TestPositionOf(t *testing.T) {
	// bitsPerFullEntry=11, bitsPerOffsetEntry=5, offsetsPerFrame=4
	// bitsPerFrame = 11 + 3*5 = 26
	h := Header{BitsPerOffsetEntry: 5, BitsPerFullEntry: 11, OffsetsPerFrame: 4}

	var vectors = []struct {
		index uint64
		want  Position
	}{
		{0, Position{FrameByte: Size, SkipBits: 0, OffsetIntoFrame: 0}},
		{1, Position{FrameByte: Size, SkipBits: 0, OffsetIntoFrame: 1}},
		{3, Position{FrameByte: Size, SkipBits: 0, OffsetIntoFrame: 3}},
		{4, Position{FrameByte: Size + 26/8, SkipBits: 26 % 8, OffsetIntoFrame: 0}},
	}
	for _, v := range vectors {
		got := h.PositionOf(v.index)
		assert.Equal(t, v.want, got)
	}
}

func TestEstimatedCountExactFrames(t *testing.T) {
	h := Header{BitsPerOffsetEntry: 5, BitsPerFullEntry: 11, OffsetsPerFrame: 4}
	bitsPerFrame := h.bitsPerFrame() // 26
	dataSize := bitsPerFrame * 4 / 8
	require.Zero(t, (bitsPerFrame*4)%8, "test requires byte-aligned frames")
	assert.EqualValues(t, 16, h.EstimatedCount(dataSize))
}

func TestUpdateCountAndSaveRestoresPosition(t *testing.T) {
	h := Header{BitsPerOffsetEntry: 5, BitsPerFullEntry: 11, OffsetsPerFrame: 4}
	buf := append(h.Encode(), make([]byte, 8)...)
	rw := newSeekBuffer(buf)

	_, err := rw.Seek(5, 0)
	require.NoError(t, err)

	require.NoError(t, UpdateCountAndSave(rw, 42, 7))

	pos, err := rw.Seek(0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 5, pos)

	got, err := Decode(rw.data)
	require.NoError(t, err)
	assert.EqualValues(t, 42, got.Count)
	assert.EqualValues(t, 7, got.MaxOffset)
}

// seekBuffer is a minimal in-memory io.ReadWriteSeeker for header tests.
type seekBuffer struct {
	data []byte
	pos  int64
}

func newSeekBuffer(data []byte) *seekBuffer { return &seekBuffer{data: data} }

func (s *seekBuffer) Read(p []byte) (int, error) {
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	if n == 0 {
		return 0, bytes.ErrTooLarge
	}
	return n, nil
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.data)) {
		s.data = append(s.data, make([]byte, end-int64(len(s.data)))...)
	}
	n := copy(s.data[s.pos:end], p)
	s.pos = end
	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		s.pos = offset
	case 1:
		s.pos += offset
	case 2:
		s.pos = int64(len(s.data)) + offset
	}
	return s.pos, nil
}
