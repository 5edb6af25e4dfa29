package seqfile

import "github.com/go-primes/primeseq/internal/header"

// MultiSeqReader virtually concatenates several sequence files into one
// ascending stream, for batch sieving's scratch-file chain and for reading
// a file set back out as a single sequence.
//
// Adjacent files may overlap by one value, the first value of a file
// repeating the last value of the file before it. Next emits such a repeat
// once; Seek and the Count of each file still include it. The scratch
// files of a batch run do not overlap, since a warm sieve run never emits
// its own start value.
type MultiSeqReader struct {
	files []*SeqFile
	iters []*Iterator
	cur   int

	lastEmitted int64
	haveEmitted bool
}

// NewMultiSeqReader constructs a reader over files, read in order.
func NewMultiSeqReader(files []*SeqFile) *MultiSeqReader {
	return &MultiSeqReader{files: files, iters: make([]*Iterator, len(files))}
}

// Next returns the next value in the virtual concatenation, or ok=false once
// every file is exhausted. Its signature matches sieve.Seed, so a method
// value m.Next can seed a warm sieve run directly.
func (m *MultiSeqReader) Next() (int64, bool, error) {
	for m.cur < len(m.files) {
		if m.iters[m.cur] == nil {
			it, err := m.files[m.cur].Iterate()
			if err != nil {
				return 0, false, err
			}
			m.iters[m.cur] = it
		}

		v, ok, err := m.iters[m.cur].Next()
		if err != nil {
			return 0, false, err
		}
		if !ok {
			m.cur++
			continue
		}
		if m.haveEmitted && v == m.lastEmitted {
			continue
		}

		m.lastEmitted, m.haveEmitted = v, true
		return v, true, nil
	}
	return 0, false, nil
}

// Seek repositions the virtual cursor at the index-th entry of the
// concatenation (counted against each file's own Count, before boundary
// dedup), so the next Next call returns that entry. It walks the file list
// accumulating counts to find the file index falls in, then seeks into that
// file directly; every other file's cursor is discarded, so a Seek backward
// re-opens iterators lazily on the next Next call that needs them.
func (m *MultiSeqReader) Seek(index uint64) error {
	remaining := index
	for i, f := range m.files {
		count := f.Count()
		if remaining < count {
			it, err := f.IterateFrom(remaining)
			if err != nil {
				return err
			}
			for j := range m.iters {
				m.iters[j] = nil
			}
			m.iters[i] = it
			m.cur = i
			m.haveEmitted = false
			return nil
		}
		remaining -= count
	}
	return ErrOutOfRange
}

// Search locates value across the whole concatenation: it scans each file's
// Last in file order to find the one value falls within, then delegates to
// that file's own Search. Files are assumed internally sorted and the
// concatenation itself ascending, per the chain's construction.
func (m *MultiSeqReader) Search(value int64, bias Bias) (int64, bool, error) {
	for i, f := range m.files {
		last, err := f.Last()
		if err == ErrOutOfRange {
			continue // empty file
		}
		if err != nil {
			return 0, false, err
		}
		if value <= last || i == len(m.files)-1 {
			return f.Search(value, bias)
		}
	}
	return 0, false, nil
}

// SizeOptimizedHeaderForNewFile scans the full concatenation once to derive
// the minimal BitsPerFullEntry/BitsPerOffsetEntry a merged copy of this
// chain needs under offsetsPerFrame, the same way filterGeometry sizes a
// Filter's output. It consumes m's cursor; call it on a fresh
// MultiSeqReader before a separate pass that actually copies the data.
func (m *MultiSeqReader) SizeOptimizedHeaderForNewFile(offsetsPerFrame uint16) (header.Header, error) {
	var maxFullEnc, maxOffsetEnc uint64
	var last int64
	var count uint64
	for {
		v, ok, err := m.Next()
		if err != nil {
			return header.Header{}, err
		}
		if !ok {
			break
		}
		if count%uint64(offsetsPerFrame) == 0 {
			if enc := header.EncodeFull(uint64(v)); enc > maxFullEnc {
				maxFullEnc = enc
			}
		} else if enc := header.EncodeOffset(uint64(v - last)); enc > maxOffsetEnc {
			maxOffsetEnc = enc
		}
		last = v
		count++
	}

	return header.Header{
		BitsPerFullEntry:   bitsNeeded(maxFullEnc),
		BitsPerOffsetEntry: bitsNeeded(maxOffsetEnc),
		OffsetsPerFrame:    offsetsPerFrame,
		Count:              count,
	}, nil
}

// Close closes every underlying file.
func (m *MultiSeqReader) Close() error {
	var firstErr error
	for _, f := range m.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
