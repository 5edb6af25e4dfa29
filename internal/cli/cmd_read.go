package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/go-primes/primeseq/internal/config"
	"github.com/go-primes/primeseq/seqfile"
)

// ReadCmd returns the read command.
func ReadCmd(_ config.Config) *Command {
	flags := flag.NewFlagSet("read", flag.ContinueOnError)
	file := flags.String("file", "", "sequence file to read from (required)")
	from := flags.Uint64("from", 0, "logical index to start from")
	limit := flags.Int64("limit", -1, "stop after this many values (-1: read to the end)")

	return &Command{
		Flags: flags,
		Usage: "read -file=path [-from=N] [-limit=N]",
		Short: "dump a sequence file in order, starting from an index",
		Exec: func(o *IO, _ []string) error {
			if *file == "" {
				return Error("read: -file is required")
			}
			return execRead(o, *file, *from, *limit)
		},
	}
}

func execRead(o *IO, file string, from uint64, limit int64) error {
	sf, err := seqfile.Open(file, seqfile.Read, false, seqfile.Geometry{})
	if err != nil {
		return err
	}
	defer sf.Close()

	var it *seqfile.Iterator
	if from == 0 {
		it, err = sf.Iterate()
	} else {
		it, err = sf.IterateFrom(from)
	}
	if err != nil {
		return err
	}

	var n int64
	for limit < 0 || n < limit {
		v, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		o.Println(v)
		n++
	}
	return nil
}
