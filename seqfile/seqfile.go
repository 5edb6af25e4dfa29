// Package seqfile implements the random-access, bit-packed sequence file
// container: a 20-byte header plus a frame-structured data section holding a
// strictly ascending sequence of non-negative integers.
package seqfile

import (
	"io"
	"os"

	"github.com/dsnet/golib/errs"
	"github.com/natefinch/atomic"

	"github.com/go-primes/primeseq/internal/header"
)

// SeqFile is a sequence file opened for reading, writing, or appending.
type SeqFile struct {
	path    string
	tmpPath string // set only for Write/Overwrite, published atomically on Close

	f   *os.File
	hdr header.Header
	sync bool

	writer *SequenceWriter // non-nil in Write/Overwrite/Append mode
}

// Open opens path per mode. geom is only consulted for Write and Overwrite;
// Read and Append recover geometry from the file's existing header. sync, if
// true, fsyncs the file before Close returns in any writing mode.
func Open(path string, mode Mode, sync bool, geom Geometry) (*SeqFile, error) {
	switch mode {
	case Read:
		return openRead(path)
	case Write, Overwrite:
		return openForWrite(path, mode, sync, geom)
	case Append:
		return openForAppend(path, sync)
	default:
		return nil, ErrBadInput
	}
}

func openRead(path string) (*SeqFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrIoError
	}
	hdr, err := header.ReadFrom(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &SeqFile{path: path, f: f, hdr: hdr}, nil
}

func openForWrite(path string, mode Mode, sync bool, geom Geometry) (*SeqFile, error) {
	if mode == Write {
		if _, err := os.Stat(path); err == nil {
			return nil, ErrBadInput
		}
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, ErrIoError
	}
	hdr := header.Header{
		BitsPerFullEntry:   geom.BitsPerFullEntry,
		BitsPerOffsetEntry: geom.BitsPerOffsetEntry,
		OffsetsPerFrame:    geom.OffsetsPerFrame,
	}
	if err := hdr.WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, err
	}

	sf := &SeqFile{path: path, tmpPath: tmp, f: f, hdr: hdr, sync: sync}
	sf.writer = NewSequenceWriter(f, geom.BitsPerFullEntry, geom.BitsPerOffsetEntry, geom.OffsetsPerFrame)
	return sf, nil
}

func openForAppend(path string, sync bool) (*SeqFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, ErrIoError
	}
	hdr, err := header.ReadFrom(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	sf := &SeqFile{path: path, f: f, hdr: hdr, sync: sync}
	sf.writer = NewSequenceWriter(f, hdr.BitsPerFullEntry, hdr.BitsPerOffsetEntry, hdr.OffsetsPerFrame)
	sf.writer.count = hdr.Count
	sf.writer.maxOffset = uint64(hdr.MaxOffset)

	if hdr.Count > 0 {
		last, err := sf.getAt(hdr.Count - 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		sf.writer.last = last
	}
	// Resume at the exact bit where the data ends: Close zero-padded the
	// final byte, so its used bits are re-loaded into the writer.
	endBit := hdr.FrameStartBit(hdr.Count)
	if k := hdr.Count % uint64(hdr.OffsetsPerFrame); k > 0 {
		endBit += int64(hdr.BitsPerFullEntry) + int64(k-1)*int64(hdr.BitsPerOffsetEntry)
	}
	endByte := header.Size + endBit/8
	if _, err := f.Seek(endByte, io.SeekStart); err != nil {
		f.Close()
		return nil, ErrIoError
	}
	if rem := uint(endBit % 8); rem > 0 {
		var b [1]byte
		if _, err := f.ReadAt(b[:], endByte); err != nil {
			f.Close()
			return nil, ErrIoError
		}
		sf.writer.bw.WriteBits(uint64(b[0]>>(8-rem)), rem)
	}
	return sf, nil
}

// Count reports the number of values in the file, including any accepted
// but not yet persisted by Close.
func (sf *SeqFile) Count() uint64 {
	if sf.writer != nil {
		return sf.writer.Count()
	}
	return sf.hdr.Count
}

// Accept implements sieve.Consumer structurally, appending v to a file
// opened for writing or appending.
func (sf *SeqFile) Accept(v int64) error {
	if sf.writer == nil {
		return ErrBadInput
	}
	return sf.writer.Accept(v)
}

// End implements sieve.Consumer; the actual flush and header rewrite happen
// in Close, which the caller controls explicitly.
func (sf *SeqFile) End() error { return nil }

func (sf *SeqFile) getAt(index uint64) (int64, error) {
	if index >= sf.hdr.Count {
		return 0, ErrOutOfRange
	}
	prior, err := sf.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, ErrIoError
	}

	pos := sf.hdr.PositionOf(index)
	if _, err := sf.f.Seek(pos.FrameByte, io.SeekStart); err != nil {
		return 0, ErrIoError
	}
	sr, err := NewSequenceReaderAt(sf.f, sf.hdr, index)
	if err != nil {
		sf.f.Seek(prior, io.SeekStart)
		return 0, err
	}
	v, _, err := sr.Next(sf.hdr.Count)

	if _, serr := sf.f.Seek(prior, io.SeekStart); serr != nil && err == nil {
		err = ErrIoError
	}
	return v, err
}

// Get returns the index-th value (0-based). The channel's position is
// restored to whatever it was before the call, so Get never disturbs a
// concurrently active sequential cursor on the same SeqFile.
func (sf *SeqFile) Get(index uint64) (int64, error) {
	return sf.getAt(index)
}

// First returns the smallest value in the file.
func (sf *SeqFile) First() (int64, error) {
	return sf.getAt(0)
}

// Last returns the largest value in the file.
func (sf *SeqFile) Last() (int64, error) {
	if sf.hdr.Count == 0 {
		return 0, ErrOutOfRange
	}
	return sf.getAt(sf.hdr.Count - 1)
}

// lowerBound returns the smallest index whose value is >= value, or
// sf.hdr.Count if every stored value is smaller.
func (sf *SeqFile) lowerBound(value int64) (uint64, error) {
	lo, hi := uint64(0), sf.hdr.Count
	for lo < hi {
		mid := lo + (hi-lo)/2
		v, err := sf.getAt(mid)
		if err != nil {
			return 0, err
		}
		if v < value {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// Search locates value by binary search. On an exact match it is returned
// regardless of bias; otherwise bias determines what (if anything) is
// returned in its place.
func (sf *SeqFile) Search(value int64, bias Bias) (int64, bool, error) {
	n := sf.hdr.Count
	if n == 0 {
		return 0, false, nil
	}

	idx, err := sf.lowerBound(value)
	if err != nil {
		return 0, false, err
	}
	if idx < n {
		v, err := sf.getAt(idx)
		if err != nil {
			return 0, false, err
		}
		if v == value {
			return v, true, nil
		}
	}

	switch bias {
	case BiasForward:
		if idx < n {
			v, err := sf.getAt(idx)
			return v, err == nil, err
		}
		return 0, false, nil
	case BiasBackward:
		if idx == 0 {
			return 0, false, nil
		}
		v, err := sf.getAt(idx - 1)
		return v, err == nil, err
	case BiasNearest:
		return sf.nearest(value, idx, n)
	default:
		return 0, false, nil
	}
}

func (sf *SeqFile) nearest(value int64, idx, n uint64) (int64, bool, error) {
	var below, above int64
	haveBelow, haveAbove := false, false

	if idx > 0 {
		v, err := sf.getAt(idx - 1)
		if err != nil {
			return 0, false, err
		}
		below, haveBelow = v, true
	}
	if idx < n {
		v, err := sf.getAt(idx)
		if err != nil {
			return 0, false, err
		}
		above, haveAbove = v, true
	}

	switch {
	case !haveBelow && !haveAbove:
		return 0, false, nil
	case !haveBelow:
		return above, true, nil
	case !haveAbove:
		return below, true, nil
	case above-value <= value-below:
		return above, true, nil
	default:
		return below, true, nil
	}
}

// Iterate starts a sequential cursor at the first entry.
func (sf *SeqFile) Iterate() (*Iterator, error) {
	if _, err := sf.f.Seek(header.Size, io.SeekStart); err != nil {
		return nil, ErrIoError
	}
	sr := NewSequenceReader(sf.f, sf.hdr)
	pos, err := sf.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, ErrIoError
	}
	return &Iterator{sf: sf, sr: sr, lastChanPos: pos}, nil
}

// IterateFrom starts a sequential cursor at the index-th entry, whose value
// is the first one the cursor's Next call returns.
func (sf *SeqFile) IterateFrom(index uint64) (*Iterator, error) {
	if index >= sf.hdr.Count {
		return nil, ErrOutOfRange
	}
	pos := sf.hdr.PositionOf(index)
	if _, err := sf.f.Seek(pos.FrameByte, io.SeekStart); err != nil {
		return nil, ErrIoError
	}
	sr, err := NewSequenceReaderAt(sf.f, sf.hdr, index)
	if err != nil {
		return nil, err
	}
	chanPos, err := sf.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, ErrIoError
	}
	return &Iterator{sf: sf, sr: sr, lastChanPos: chanPos}, nil
}

// Iterator is a fail-fast sequential cursor: it detects if the channel's
// position moved between calls to Next through some means other than the
// iterator's own reads, e.g. an interleaved Get on the same SeqFile that
// failed to restore its position.
type Iterator struct {
	sf          *SeqFile
	sr          *SequenceReader
	lastChanPos int64
}

// Next returns the next value in ascending order, or ok=false at the end of
// the file.
func (it *Iterator) Next() (int64, bool, error) {
	cur, err := it.sf.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false, ErrIoError
	}
	if cur != it.lastChanPos {
		return 0, false, ErrConcurrentAccess
	}

	v, ok, err := it.sr.Next(it.sf.hdr.Count)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}

	newPos, err := it.sf.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false, ErrIoError
	}
	it.lastChanPos = newPos
	return v, true, nil
}

// Predicate selects values for Filter. Reset is invoked between Filter's two
// passes (the geometry-sizing pass and the copy pass) so a stateful
// predicate, e.g. one that keeps every Nth survivor, restarts from the same
// state for both.
type Predicate interface {
	Accept(v int64) bool
	Reset()
}

// PredicateFunc adapts a stateless accept function to a Predicate whose
// Reset is a no-op.
type PredicateFunc func(v int64) bool

// Accept implements Predicate.
func (f PredicateFunc) Accept(v int64) bool { return f(v) }

// Reset implements Predicate.
func (f PredicateFunc) Reset() {}

// Filter copies every value for which pred accepts into a new file at
// outPath, re-deriving bit widths for the filtered subsequence since
// removing values changes the gaps between what remains. Fails with
// ErrEmptyFilter if fewer than two values survive the predicate.
func (sf *SeqFile) Filter(outPath string, pred Predicate) (*SeqFile, error) {
	_, bitsFull, bitsOffset, err := sf.filterGeometry(pred)
	if err != nil {
		return nil, err
	}
	pred.Reset()

	out, err := Open(outPath, Write, sf.sync, Geometry{
		BitsPerFullEntry:   bitsFull,
		BitsPerOffsetEntry: bitsOffset,
		OffsetsPerFrame:    sf.hdr.OffsetsPerFrame,
	})
	if err != nil {
		return nil, err
	}

	it, err := sf.Iterate()
	if err != nil {
		out.Close()
		os.Remove(outPath)
		return nil, err
	}
	for {
		v, ok, err := it.Next()
		if err != nil {
			out.Close()
			return nil, err
		}
		if !ok {
			break
		}
		if !pred.Accept(v) {
			continue
		}
		if err := out.Accept(v); err != nil {
			out.Close()
			return nil, err
		}
	}
	if err := out.Close(); err != nil {
		return nil, err
	}
	return Open(outPath, Read, false, Geometry{})
}

// filterGeometry is Filter's first pass: it counts survivors and the widest
// encoded full/offset field the filtered subsequence will need.
func (sf *SeqFile) filterGeometry(pred Predicate) (count uint64, bitsFull, bitsOffset uint8, err error) {
	it, err := sf.Iterate()
	if err != nil {
		return 0, 0, 0, err
	}

	var maxFullEnc, maxOffsetEnc uint64
	var last int64
	for {
		v, ok, err := it.Next()
		if err != nil {
			return 0, 0, 0, err
		}
		if !ok {
			break
		}
		if !pred.Accept(v) {
			continue
		}
		if count%uint64(sf.hdr.OffsetsPerFrame) == 0 {
			if enc := header.EncodeFull(uint64(v)); enc > maxFullEnc {
				maxFullEnc = enc
			}
		} else if enc := header.EncodeOffset(uint64(v - last)); enc > maxOffsetEnc {
			maxOffsetEnc = enc
		}
		last = v
		count++
	}

	if count < 2 {
		return 0, 0, 0, ErrEmptyFilter
	}
	return count, bitsNeeded(maxFullEnc), bitsNeeded(maxOffsetEnc), nil
}

// Close finalizes the file: for a writing mode it byte-aligns the data
// section, rewrites the header's Count and MaxOffset, optionally fsyncs,
// then (for Write/Overwrite, which worked against a temp file) atomically
// publishes it to path. Any step failing aborts the rest of the sequence
// immediately, via panic/recover rather than a chain of manual checks.
func (sf *SeqFile) Close() (err error) {
	defer errs.Recover(&err)
	defer sf.f.Close()

	if sf.writer != nil {
		errs.Panic(sf.writer.Close())
		errs.Panic(header.UpdateCountAndSave(sf.f, sf.writer.Count(), uint32(sf.writer.MaxOffset())))
		if sf.sync {
			errs.Assert(sf.f.Sync() == nil, ErrIoError)
		}
	}

	if sf.tmpPath == "" {
		return nil
	}

	rf, oerr := os.Open(sf.tmpPath)
	errs.Assert(oerr == nil, ErrIoError)
	writeErr := atomic.WriteFile(sf.path, rf)
	rf.Close()
	os.Remove(sf.tmpPath)
	errs.Assert(writeErr == nil, ErrIoError)
	return nil
}
