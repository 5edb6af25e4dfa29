package seqfile

import (
	"io"
	"os"

	"github.com/go-primes/primeseq/internal/header"
)

// Repair rescans a sequence file's data section from the first byte,
// decoding entries until the channel runs out, and rewrites the header's
// Count and MaxOffset to match what actually decoded. It recovers a file
// whose writer crashed or was killed before its final header update, at the
// cost of the one entry (if any) that was left mid-write.
func Repair(path string) (Info, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return Info{}, ErrIoError
	}
	defer f.Close()

	hdr, err := header.ReadFrom(f)
	if err != nil {
		return Info{}, err
	}
	if _, err := f.Seek(header.Size, io.SeekStart); err != nil {
		return Info{}, ErrIoError
	}

	sr := NewSequenceReader(f, hdr)
	var count, maxOffset uint64
	var first, last int64
	have := false
	for {
		v, ok, err := sr.Next(^uint64(0))
		if err != nil {
			// Truncated mid-entry: stop here, keeping everything decoded
			// cleanly before it.
			break
		}
		if !ok {
			break
		}
		if have && (v <= last || (v-last == 1 && last != 2)) {
			// The zero bits padding the final byte decode as a gap of 1 or
			// a full value of 2; neither can follow a real entry here.
			break
		}
		if have {
			gap := uint64(v - last)
			if enc := header.EncodeOffset(gap); enc > maxOffset {
				maxOffset = enc
			}
		} else {
			first = v
			have = true
		}
		last = v
		count++
	}

	if err := header.UpdateCountAndSave(f, count, uint32(maxOffset)); err != nil {
		return Info{}, err
	}

	var byteSize int64
	if st, err := f.Stat(); err == nil {
		byteSize = st.Size()
	}

	return Info{
		Path:               path,
		Version:            header.Version,
		Count:              count,
		BitsPerFullEntry:   hdr.BitsPerFullEntry,
		BitsPerOffsetEntry: hdr.BitsPerOffsetEntry,
		OffsetsPerFrame:    hdr.OffsetsPerFrame,
		MaxOffset:          uint32(maxOffset),
		First:              first,
		Last:               last,
		ByteSize:           byteSize,
		EstimatedCount:     hdr.EstimatedCount(byteSize - header.Size),
	}, nil
}
