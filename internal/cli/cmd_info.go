package cli

import (
	flag "github.com/spf13/pflag"

	dsnetstrconv "github.com/dsnet/golib/strconv"

	"github.com/go-primes/primeseq/internal/config"
	"github.com/go-primes/primeseq/seqfile"
)

// InfoCmd returns the info command.
func InfoCmd(_ config.Config) *Command {
	flags := flag.NewFlagSet("info", flag.ContinueOnError)
	file := flags.String("file", "", "sequence file to summarize (required)")

	return &Command{
		Flags: flags,
		Usage: "info -file=path",
		Short: "report a sequence file's geometry, count, and byte size",
		Exec: func(o *IO, _ []string) error {
			if *file == "" {
				return Error("info: -file is required")
			}
			return execInfo(o, *file)
		},
	}
}

func execInfo(o *IO, file string) error {
	sf, err := seqfile.Open(file, seqfile.Read, false, seqfile.Geometry{})
	if err != nil {
		return err
	}
	defer sf.Close()

	info, err := sf.Info()
	if err != nil {
		return err
	}

	o.Printf("path=%s version=%d\n", info.Path, info.Version)
	o.Printf("count=%d\n", info.Count)
	o.Printf("first=%d last=%d\n", info.First, info.Last)
	o.Printf("bits_per_full_entry=%d bits_per_offset_entry=%d offsets_per_frame=%d\n",
		info.BitsPerFullEntry, info.BitsPerOffsetEntry, info.OffsetsPerFrame)
	o.Printf("max_offset=%d\n", info.MaxOffset)
	o.Printf("size=%s estimated_count=%d\n",
		dsnetstrconv.FormatPrefix(float64(info.ByteSize), dsnetstrconv.Base1024, 2), info.EstimatedCount)
	return nil
}
