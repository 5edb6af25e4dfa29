package seqfile

import "github.com/go-primes/primeseq/internal/header"

// Info summarizes a sequence file's geometry and contents, for the repair
// and info CLI subcommands and for diagnostics.
type Info struct {
	Path               string
	Version            uint8
	Count              uint64
	BitsPerFullEntry   uint8
	BitsPerOffsetEntry uint8
	OffsetsPerFrame    uint16
	MaxOffset          uint32
	First              int64
	Last               int64
	ByteSize           int64
	// EstimatedCount is the entry count implied by ByteSize alone (header
	// BitsPerFullEntry/BitsPerOffsetEntry/OffsetsPerFrame plus ByteSize),
	// independent of Count. It equals Count when the data ends exactly on a
	// byte boundary; otherwise the zero bits padding the final byte may be
	// counted as extra entries. A stale header also makes them differ; see
	// Repair.
	EstimatedCount uint64
}

// Info reports a summary of sf's current state.
func (sf *SeqFile) Info() (Info, error) {
	info := Info{
		Path:               sf.path,
		Version:            header.Version,
		Count:              sf.Count(),
		BitsPerFullEntry:   sf.hdr.BitsPerFullEntry,
		BitsPerOffsetEntry: sf.hdr.BitsPerOffsetEntry,
		OffsetsPerFrame:    sf.hdr.OffsetsPerFrame,
		MaxOffset:          sf.hdr.MaxOffset,
	}

	if st, err := sf.f.Stat(); err == nil {
		info.ByteSize = st.Size()
		info.EstimatedCount = sf.hdr.EstimatedCount(st.Size() - header.Size)
	}

	if info.Count == 0 {
		return info, nil
	}

	first, err := sf.getAt(0)
	if err != nil {
		return info, err
	}
	last, err := sf.getAt(info.Count - 1)
	if err != nil {
		return info, err
	}
	info.First, info.Last = first, last
	return info, nil
}

// GapHistogram tallies how often each gap between consecutive values occurs.
func (sf *SeqFile) GapHistogram() (map[int64]uint64, error) {
	it, err := sf.Iterate()
	if err != nil {
		return nil, err
	}

	hist := make(map[int64]uint64)
	var prev int64
	have := false
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if have {
			hist[v-prev]++
		}
		prev = v
		have = true
	}
	return hist, nil
}
