// Package batch drives a sieve run too large to fit in one bounded memory
// window: it partitions [2, max) into a chain of windows, sieving each one
// cold or warm-seeded from the scratch files of every window before it, and
// merges the chain into the caller's consumer as if it were one run.
package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-primes/primeseq/seqfile"
	"github.com/go-primes/primeseq/sieve"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "batch: " + string(e) }

// Options configures a Run.
type Options struct {
	// Max is the exclusive upper bound of the whole run. Zero means
	// unbounded (treated as math.MaxInt64).
	Max int64
	// WindowSize bounds how many integers a single in-memory sieve window
	// covers. Must be positive.
	WindowSize int64
	// ScratchDir holds the chain's scratch sequence files. Created if
	// missing; removed on success unless KeepScratch is set.
	ScratchDir string
	// Geometry fixes the bit widths scratch files (and thus the final
	// merged output, if any) are written with.
	Geometry seqfile.Geometry
	// Sync requests an fsync on every scratch file before close.
	Sync bool
	// KeepScratch leaves the scratch directory in place after a
	// successful run, instead of removing it.
	KeepScratch bool
	// Progress, if non-nil, is called after each window completes.
	Progress func(windowIndex int, windowMax int64, lastPrime int64)
}

const unboundedMax = int64(^uint64(0) >> 1) // math.MaxInt64

// tailFold bounds how small a trailing window is allowed to be: a remaining
// span under this is folded into the window before it instead of sieved on
// its own, so a run never ends on a near-empty stub window.
const tailFold = int64(10_000)

// Run sieves [2, Max) in windows of WindowSize, feeding every discovered
// prime to consume in ascending order exactly once, then calling
// consume.End(). Scratch files are cleaned up on both success and failure.
func Run(opts Options, consume sieve.Consumer) (last int64, err error) {
	if opts.WindowSize <= 0 {
		return 0, Error("window size must be positive")
	}
	max := opts.Max
	if max <= 0 {
		max = unboundedMax
	}

	if err := os.MkdirAll(opts.ScratchDir, 0755); err != nil {
		return 0, Error("creating scratch dir: " + err.Error())
	}

	var scratch []*seqfile.SeqFile
	cleanup := func() {
		for _, sf := range scratch {
			sf.Close()
		}
		if !opts.KeepScratch {
			os.RemoveAll(opts.ScratchDir)
		}
	}

	windowIdx := 0
	boundary := int64(0)
	var lastPrime int64
	for boundary < max {
		windowEnd := boundary + opts.WindowSize
		if rem := max - boundary; opts.WindowSize > rem || rem-opts.WindowSize < tailFold {
			windowEnd = max
		}

		scratchPath := filepath.Join(opts.ScratchDir, fmt.Sprintf("window-%04d.seq", windowIdx))
		sf, err := seqfile.Open(scratchPath, seqfile.Write, opts.Sync, opts.Geometry)
		if err != nil {
			cleanup()
			return 0, err
		}

		sink := sieve.FanOut{sf, sieve.SuppressEnd(consume)}

		var windowLast int64
		if windowIdx == 0 {
			windowLast, err = sieve.RunCold(windowEnd, sink, -1)
		} else {
			// RunWarm's start must be the last prime actually found by the
			// chain so far, not this window's arithmetic boundary: its seed
			// contract requires the seed sequence to end exactly at start.
			seed := seqfile.NewMultiSeqReader(scratch).Next
			windowLast, err = sieve.RunWarm(lastPrime, seed, sink, windowEnd, -1)
		}
		if err != nil {
			sf.Close()
			cleanup()
			return 0, err
		}
		if err := sf.Close(); err != nil {
			cleanup()
			return 0, err
		}

		sf, err = seqfile.Open(scratchPath, seqfile.Read, false, seqfile.Geometry{})
		if err != nil {
			cleanup()
			return 0, err
		}
		scratch = append(scratch, sf)

		if opts.Progress != nil {
			opts.Progress(windowIdx, windowEnd, windowLast)
		}

		if windowLast != 0 {
			lastPrime = windowLast
		}
		last = windowLast
		boundary = windowEnd
		windowIdx++
	}

	if err := consume.End(); err != nil {
		cleanup()
		return 0, err
	}

	for _, sf := range scratch {
		sf.Close()
	}
	if !opts.KeepScratch {
		if err := os.RemoveAll(opts.ScratchDir); err != nil {
			return last, Error("removing scratch dir: " + err.Error())
		}
	}
	return last, nil
}
