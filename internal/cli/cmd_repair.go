package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/go-primes/primeseq/internal/config"
	"github.com/go-primes/primeseq/seqfile"
)

// RepairCmd returns the repair command.
func RepairCmd(_ config.Config) *Command {
	flags := flag.NewFlagSet("repair", flag.ContinueOnError)
	file := flags.String("file", "", "sequence file to repair in place (required)")

	return &Command{
		Flags: flags,
		Usage: "repair -file=path",
		Short: "rescan a sequence file's data section and rewrite its header",
		Exec: func(o *IO, _ []string) error {
			if *file == "" {
				return Error("repair: -file is required")
			}
			info, err := seqfile.Repair(*file)
			if err != nil {
				return err
			}
			o.Printf("repaired: count=%d first=%d last=%d max_offset=%d\n",
				info.Count, info.First, info.Last, info.MaxOffset)
			return nil
		},
	}
}
