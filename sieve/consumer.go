package sieve

// Consumer receives primes as a sieve run discovers them.
//
// The original pipeline threaded a -1 sentinel through a single Accept-style
// callback to mark end-of-stream; per the "Consumer chains" design note this
// redesign replaces the magic integer with an explicit End, so End is always
// called exactly once at the conclusion of a successful run and never
// confused with a legitimate value.
type Consumer interface {
	Accept(v int64) error
	End() error
}

// ConsumerFunc adapts a plain accept function to a Consumer whose End is a
// no-op, for simple callers (tests, one-off collectors) that don't care
// about the end-of-stream signal.
type ConsumerFunc func(v int64) error

// Accept implements Consumer.
func (f ConsumerFunc) Accept(v int64) error { return f(v) }

// End implements Consumer.
func (f ConsumerFunc) End() error { return nil }

// FanOut broadcasts each value and the end-of-stream signal to every
// consumer in order, replacing the "write to file AND print AND collect
// stats" chained-callback shape from the source with an explicit sink list.
type FanOut []Consumer

// Accept implements Consumer.
func (fo FanOut) Accept(v int64) error {
	for _, c := range fo {
		if err := c.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// End implements Consumer.
func (fo FanOut) End() error {
	for _, c := range fo {
		if err := c.End(); err != nil {
			return err
		}
	}
	return nil
}

// suppressEnd wraps a Consumer so that End is a no-op; the batch driver uses
// this to keep a user-supplied consumer open across window boundaries,
// calling the wrapped consumer's real End itself exactly once when the
// entire batched run finishes.
type suppressEnd struct{ Consumer }

func (suppressEnd) End() error { return nil }

// SuppressEnd returns c wrapped so End is suppressed.
func SuppressEnd(c Consumer) Consumer { return suppressEnd{c} }
