// Command primes sieves primes and inspects bit-packed sequence files.
package main

import (
	"os"

	"github.com/go-primes/primeseq/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdout, os.Stderr, os.Args[1:]))
}
