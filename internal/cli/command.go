// Package cli implements the primes command-line front end: a thin layer
// of pflag-based subcommands over the sieve, seqfile, and batch packages.
// No sieve or file-format logic lives here.
package cli

import (
	"errors"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command defines a CLI subcommand with unified help generation, in the
// shape of calvinalkan-agent-task's internal/cli.Command.
type Command struct {
	// Flags defines the command's own flags. The FlagSet's name is unused;
	// command identity comes from Usage.
	Flags *flag.FlagSet

	// Usage is the freeform usage string shown after "primes" in help,
	// e.g. "sieve -max=N [-out=path]". Its first word is the command name.
	Usage string

	// Short is a one-line description for the top-level help listing.
	Short string

	// Exec runs the command after flags are parsed.
	Exec func(o *IO, args []string) error
}

// Name returns the command name (the first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine returns the command's line in the top-level help listing.
func (c *Command) HelpLine() string {
	return "  " + c.Usage + "\n        " + c.Short
}

// PrintHelp prints this command's own usage and flag defaults.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: primes", c.Usage)
	o.Println()
	o.Println(c.Short)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")
		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run parses args and executes the command, returning a process exit code.
func (c *Command) Run(o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{})

	// Accept the single-dash long form shown in Usage (-max=N) as well as
	// pflag's own --max=N.
	args = append([]string(nil), args...)
	for i, a := range args {
		name, _, _ := strings.Cut(strings.TrimPrefix(a, "-"), "=")
		if len(a) > 2 && a[0] == '-' && a[1] != '-' && c.Flags.Lookup(name) != nil {
			args[i] = "-" + a
		}
	}

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return 0
		}
		o.ErrPrintln("error:", err)
		return 1
	}

	if err := c.Exec(o, c.Flags.Args()); err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}
	return 0
}
