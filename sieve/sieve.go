// Package sieve implements the in-memory segmented sieve of Eratosthenes:
// a cold run starting from 2, and a warm run over a window [start, max)
// seeded by all primes up to start.
package sieve

import (
	"github.com/go-primes/primeseq/internal/bitset"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "sieve: " + string(e) }

var (
	// ErrBadSeed is raised when a warm run's seed supplier fails validation:
	// not starting at 2, not strictly ascending, failing the cheap
	// divisibility sanity check, exceeding max, or not ending at start.
	ErrBadSeed error = Error("bad seed")
)

// unlimited is the sentinel total meaning "no cap on emitted primes".
const unlimited = -1

// smoothnessBases are the small primes used for the warm seed's cheap
// compositeness sanity check. Preserved verbatim from the source: the check
// is `curr > base && curr % base == 0`, so 2, 3, 5, and 7 themselves pass
// (they are not greater than themselves).
var smoothnessBases = [4]int64{2, 3, 5, 7}

// seedSanityCheck reports whether p fails the cheap smoothness check.
func seedSanityCheck(p int64) bool {
	for _, base := range smoothnessBases {
		if p > base && p%base == 0 {
			return true
		}
	}
	return false
}

// RunCold sieves [2, max) from scratch, emitting primes in ascending order to
// consume. If total is non-negative, the run stops after emitting that many
// primes; a negative total means unlimited. Returns the last prime emitted.
func RunCold(max int64, consume Consumer, total int64) (int64, error) {
	if max < 2 {
		if err := consume.End(); err != nil {
			return 0, err
		}
		return 0, nil
	}

	bs := bitset.New(max)
	bs.SetAll(2, max)

	last, err := sieveLoop(bs, 0, max, consume, total)
	if err != nil {
		return 0, err
	}
	if err := consume.End(); err != nil {
		return 0, err
	}
	return last, nil
}

// Seed supplies the ascending sequence of every prime in [2, start] to a
// warm run. It returns ok=false once exhausted. The source used a -1
// sentinel value for this; per the same "Consumer chains" design note this
// redesign uses an explicit ok flag instead.
type Seed func() (p int64, ok bool, err error)

// RunWarm sieves [start, max), seeded by every prime in [2, start] supplied
// by seed in ascending order. If total is non-negative, the run stops after
// emitting that many primes; a negative total means unlimited. Returns the
// last prime emitted.
func RunWarm(start int64, seed Seed, consume Consumer, max int64, total int64) (int64, error) {
	if max <= start {
		if err := consume.End(); err != nil {
			return 0, err
		}
		return 0, nil
	}

	bs := bitset.New(max - start)
	bs.SetAll(0, max-start)

	if err := prepareFromSeed(bs, start, max, seed); err != nil {
		return 0, err
	}

	last, err := sieveLoop(bs, start, max, consume, total)
	if err != nil {
		return 0, err
	}
	if err := consume.End(); err != nil {
		return 0, err
	}
	return last, nil
}

// prepareFromSeed validates and consumes the warm seed, clearing every
// multiple of each seed prime that falls within [start, max) of bs (whose
// bit i represents the integer start+i).
func prepareFromSeed(bs *bitset.Bitset, start, max int64, seed Seed) error {
	var prev int64 = -1
	first := true
	for {
		p, ok, err := seed()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if first {
			if p != 2 {
				return ErrBadSeed
			}
			first = false
		} else if p <= prev {
			return ErrBadSeed
		}
		if seedSanityCheck(p) {
			return ErrBadSeed
		}
		if p > max {
			return ErrBadSeed
		}
		prev = p

		var lowest int64
		if start/p > 0 {
			lowest = (start/p + 1) * p
		} else {
			lowest = 2 * p
		}
		for m := lowest; m < max; m += p {
			if m >= start {
				bs.Clear(m - start)
			}
		}
	}
	if prev != start {
		return ErrBadSeed
	}
	return nil
}

// sieveLoop walks the set bits of bs (bit i representing integer base+i),
// emitting each surviving integer as a prime and crossing off its
// multiples, until the bitset is exhausted or total primes have been
// emitted. It starts at the bit after offset 0 so a warm run never
// re-emits the window's own start value.
func sieveLoop(bs *bitset.Bitset, base, max int64, consume Consumer, total int64) (int64, error) {
	var count, last int64
	idx := bs.NextSetBit(1)
	for idx != -1 {
		p := base + idx
		if err := consume.Accept(p); err != nil {
			return 0, err
		}
		last = p
		count++
		if total >= 0 && count >= total {
			break
		}
		for m := 2 * p; m < max; m += p {
			bs.Clear(m - base)
		}
		idx = bs.NextSetBit(idx + 1)
	}
	return last, nil
}
