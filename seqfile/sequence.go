package seqfile

import (
	"io"

	"github.com/go-primes/primeseq/internal/bitio"
	"github.com/go-primes/primeseq/internal/header"
)

func wrapTruncated(err error) error {
	if err == bitio.ErrShortRead {
		return ErrTruncated
	}
	return ErrIoError
}

func fitsBits(v uint64, bits uint8) bool {
	if bits >= 64 {
		return true
	}
	return v < uint64(1)<<bits
}

func bitsNeeded(maxVal uint64) uint8 {
	var n uint8
	for maxVal > 0 {
		n++
		maxVal >>= 1
	}
	if n == 0 {
		n = 1
	}
	return n
}

// SequenceReader decodes the ascending-integer sequence encoded in a
// sequence file's data section, one entry at a time. It is a pure bit-level
// cursor: it knows nothing of channel positions or concurrent access, which
// SeqFile layers on top.
type SequenceReader struct {
	br    *bitio.Reader
	hdr   header.Header
	count uint64
	last  int64

	pending    int64
	hasPending bool
}

// NewSequenceReader constructs a SequenceReader that decodes from the start
// of the data section (the caller has already seeked r there).
func NewSequenceReader(r io.Reader, hdr header.Header) *SequenceReader {
	return &SequenceReader{br: bitio.NewReader(r), hdr: hdr}
}

// NewSequenceReaderAt constructs a SequenceReader resuming at the index-th
// logical entry. The caller must have already seeked r to
// hdr.PositionOf(index).FrameByte.
func NewSequenceReaderAt(r io.Reader, hdr header.Header, index uint64) (*SequenceReader, error) {
	pos := hdr.PositionOf(index)
	br := bitio.NewReader(r)
	if pos.SkipBits > 0 {
		if _, err := br.ReadBits(uint(pos.SkipBits)); err != nil {
			return nil, wrapTruncated(err)
		}
	}

	sr := &SequenceReader{br: br, hdr: hdr, count: (index / uint64(hdr.OffsetsPerFrame)) * uint64(hdr.OffsetsPerFrame)}
	fullRaw, err := br.ReadBits(uint(hdr.BitsPerFullEntry))
	if err != nil {
		return nil, wrapTruncated(err)
	}
	sr.last = int64(header.DecodeFull(fullRaw))
	sr.count++

	for k := 0; k < pos.OffsetIntoFrame; k++ {
		raw, err := br.ReadBits(uint(hdr.BitsPerOffsetEntry))
		if err != nil {
			return nil, wrapTruncated(err)
		}
		sr.last += int64(header.DecodeOffset(raw))
		sr.count++
	}

	sr.pending, sr.hasPending = sr.last, true
	return sr, nil
}

// Count reports how many entries have been decoded so far, including one
// buffered by NewSequenceReaderAt but not yet returned by Next.
func (sr *SequenceReader) Count() uint64 { return sr.count }

// Next decodes the next entry. It reports ok=false once count reaches total
// without error; total is typically the file's header Count, or
// ^uint64(0) to decode until the channel runs out (used by repair).
func (sr *SequenceReader) Next(total uint64) (int64, bool, error) {
	if sr.hasPending {
		sr.hasPending = false
		return sr.pending, true, nil
	}
	if sr.count >= total {
		return 0, false, nil
	}

	var v int64
	if sr.count%uint64(sr.hdr.OffsetsPerFrame) == 0 {
		raw, err := sr.br.ReadBits(uint(sr.hdr.BitsPerFullEntry))
		if err != nil {
			return 0, false, wrapTruncated(err)
		}
		v = int64(header.DecodeFull(raw))
	} else {
		raw, err := sr.br.ReadBits(uint(sr.hdr.BitsPerOffsetEntry))
		if err != nil {
			return 0, false, wrapTruncated(err)
		}
		v = sr.last + int64(header.DecodeOffset(raw))
	}
	sr.last = v
	sr.count++
	return v, true, nil
}

// SequenceWriter encodes an ascending-integer sequence into a sequence
// file's data section. It implements Accept/End structurally (no import
// needed) so it can be plugged directly into a sieve.Consumer chain.
type SequenceWriter struct {
	bw                 *bitio.Writer
	bitsPerFullEntry   uint8
	bitsPerOffsetEntry uint8
	offsetsPerFrame    uint16

	count     uint64
	last      int64
	maxOffset uint64
}

// NewSequenceWriter constructs a SequenceWriter with the given fixed
// geometry, writing to w from its current position.
func NewSequenceWriter(w io.Writer, bitsPerFullEntry, bitsPerOffsetEntry uint8, offsetsPerFrame uint16) *SequenceWriter {
	return &SequenceWriter{
		bw:                 bitio.NewWriter(w),
		bitsPerFullEntry:   bitsPerFullEntry,
		bitsPerOffsetEntry: bitsPerOffsetEntry,
		offsetsPerFrame:    offsetsPerFrame,
	}
}

// Accept encodes and writes the next value, which must be strictly greater
// than the previous one accepted (the very first call accepts any value).
func (sw *SequenceWriter) Accept(v int64) error {
	if sw.count > 0 && v <= sw.last {
		return ErrBadInput
	}

	if sw.count%uint64(sw.offsetsPerFrame) == 0 {
		enc := header.EncodeFull(uint64(v))
		if !fitsBits(enc, sw.bitsPerFullEntry) {
			return ErrBadInput
		}
		if err := sw.bw.WriteBits(enc, uint(sw.bitsPerFullEntry)); err != nil {
			return ErrIoError
		}
	} else {
		gap := uint64(v - sw.last)
		enc := header.EncodeOffset(gap)
		if !fitsBits(enc, sw.bitsPerOffsetEntry) {
			return ErrBadInput
		}
		if err := sw.bw.WriteBits(enc, uint(sw.bitsPerOffsetEntry)); err != nil {
			return ErrIoError
		}
		if enc > sw.maxOffset {
			sw.maxOffset = enc
		}
	}

	sw.last = v
	sw.count++
	return nil
}

// End is a no-op: byte alignment and header persistence are owned by the
// enclosing SeqFile, not the writer cursor.
func (sw *SequenceWriter) End() error { return nil }

// Count reports how many values have been accepted.
func (sw *SequenceWriter) Count() uint64 { return sw.count }

// MaxOffset reports the largest encoded offset written so far.
func (sw *SequenceWriter) MaxOffset() uint64 { return sw.maxOffset }

// Last reports the most recently accepted value.
func (sw *SequenceWriter) Last() int64 { return sw.last }

// Close pads the final byte with zero bits and flushes the writer. There is
// no intra-frame padding; this runs exactly once, at the end of the whole
// data section.
func (sw *SequenceWriter) Close() error {
	if err := sw.bw.Close(); err != nil {
		return ErrIoError
	}
	return nil
}
