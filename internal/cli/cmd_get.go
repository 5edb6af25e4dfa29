package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/go-primes/primeseq/internal/config"
	"github.com/go-primes/primeseq/seqfile"
)

// GetCmd returns the get command.
func GetCmd(_ config.Config) *Command {
	flags := flag.NewFlagSet("get", flag.ContinueOnError)
	file := flags.String("file", "", "sequence file to read from (required)")
	index := flags.Uint64("index", 0, "0-based index to fetch")

	return &Command{
		Flags: flags,
		Usage: "get -file=path -index=N",
		Short: "fetch the value at a logical index",
		Exec: func(o *IO, _ []string) error {
			if *file == "" {
				return Error("get: -file is required")
			}
			sf, err := seqfile.Open(*file, seqfile.Read, false, seqfile.Geometry{})
			if err != nil {
				return err
			}
			defer sf.Close()

			v, err := sf.Get(*index)
			if err != nil {
				return err
			}
			o.Println(v)
			return nil
		},
	}
}
