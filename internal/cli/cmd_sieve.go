package cli

import (
	"os"

	flag "github.com/spf13/pflag"

	"github.com/go-primes/primeseq/batch"
	"github.com/go-primes/primeseq/internal/config"
	"github.com/go-primes/primeseq/seqfile"
	"github.com/go-primes/primeseq/sieve"
)

// SieveCmd returns the sieve command.
func SieveCmd(cfg config.Config) *Command {
	flags := flag.NewFlagSet("sieve", flag.ContinueOnError)
	max := flags.Int64("max", 0, "sieve every prime in [2, max) (required)")
	out := flags.String("out", "", "write the result to a sequence file at `path`")
	total := flags.Int64("total", -1, "stop after this many primes (-1: unlimited); ignored when max is above -batch-threshold")
	batchThreshold := flags.Int64("batch-threshold", cfg.BatchThreshold, "window size above which the run is chained through scratch files")
	printAll := flags.Bool("print", false, "print every prime found to stdout")
	sync := flags.Bool("sync", cfg.SyncWrites, "fsync the output file before closing")

	return &Command{
		Flags: flags,
		Usage: "sieve -max=N [-out=path] [-total=N]",
		Short: "sieve every prime below a bound, optionally writing a sequence file",
		Exec: func(o *IO, _ []string) error {
			if *max <= 0 {
				return Error("sieve: -max must be positive")
			}
			return execSieve(o, cfg, *max, *out, *total, *batchThreshold, *printAll, *sync)
		},
	}
}

func execSieve(o *IO, cfg config.Config, max int64, out string, total int64, batchThreshold int64, printAll, sync bool) error {
	geom := seqfile.Geometry{
		BitsPerFullEntry:   config.BitsPerFullEntry(max),
		BitsPerOffsetEntry: cfg.BitsPerOffsetEntry,
		OffsetsPerFrame:    cfg.OffsetsPerFrame,
	}

	var sinks sieve.FanOut
	counter := &countingConsumer{}
	sinks = append(sinks, counter)
	if printAll {
		sinks = append(sinks, printingConsumer{o})
	}

	var outFile *seqfile.SeqFile
	if out != "" {
		sf, err := seqfile.Open(out, seqfile.Write, sync, geom)
		if err != nil {
			return err
		}
		outFile = sf
		sinks = append(sinks, sf)
	}

	var last int64
	var runErr error
	if max <= batchThreshold {
		last, runErr = sieve.RunCold(max, sinks, total)
	} else {
		scratchDir, err := os.MkdirTemp("", "primes-scratch-*")
		if err != nil {
			if outFile != nil {
				outFile.Close()
			}
			return Error("sieve: " + err.Error())
		}
		last, runErr = batch.Run(batch.Options{
			Max:        max,
			WindowSize: batchThreshold,
			ScratchDir: scratchDir,
			Geometry:   geom,
			Sync:       sync,
			Progress: func(windowIdx int, windowMax, lastPrime int64) {
				o.ErrPrintln("window", windowIdx, "done up to", windowMax, "last prime", lastPrime)
			},
		}, sinks)
	}

	if outFile != nil {
		if closeErr := outFile.Close(); runErr == nil {
			runErr = closeErr
		}
	}
	if runErr != nil {
		return runErr
	}

	o.Printf("found %d primes, last=%d\n", counter.count, last)
	return nil
}

type countingConsumer struct{ count int64 }

func (c *countingConsumer) Accept(int64) error { c.count++; return nil }
func (c *countingConsumer) End() error          { return nil }

type printingConsumer struct{ o *IO }

func (p printingConsumer) Accept(v int64) error { p.o.Println(v); return nil }
func (p printingConsumer) End() error           { return nil }
