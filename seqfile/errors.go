package seqfile

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "seqfile: " + string(e) }

var (
	// ErrOutOfRange is raised by Get when index >= Count.
	ErrOutOfRange error = Error("index out of range")
	// ErrBadInput is raised by a writer when values aren't strictly
	// ascending or an encoded field doesn't fit its configured width.
	ErrBadInput error = Error("bad input")
	// ErrEmptyFilter is raised when a Filter's first pass accepts fewer
	// than two elements.
	ErrEmptyFilter error = Error("empty filter result")
	// ErrConcurrentAccess is raised when a sequential cursor observes that
	// the channel position moved between reads.
	ErrConcurrentAccess error = Error("concurrent access detected")
	// ErrTruncated is raised when the data section ends mid-entry before
	// Count was reached.
	ErrTruncated error = Error("truncated data section")
	// ErrIoError wraps an underlying read/write/seek failure.
	ErrIoError error = Error("i/o error")
)
