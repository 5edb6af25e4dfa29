package cli

import (
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/go-primes/primeseq/internal/config"
)

// Run is the CLI entry point. Returns a process exit code.
func Run(out, errOut io.Writer, args []string) int {
	globalFlags := flag.NewFlagSet("primes", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.Usage = func() {}
	globalFlags.SetOutput(&strings.Builder{})
	flagHelp := globalFlags.BoolP("help", "h", false, "show help")
	flagConfig := globalFlags.String("config", "", "use the config file at `path` instead of the usual precedence chain")

	// Accept the single-dash -config spelling shown in the usage text.
	args = append([]string(nil), args...)
	for i, a := range args {
		if !strings.HasPrefix(a, "-") {
			break
		}
		if a == "-config" || strings.HasPrefix(a, "-config=") {
			args[i] = "-" + a
		}
	}

	if err := globalFlags.Parse(args); err != nil {
		_, _ = io.WriteString(errOut, "error: "+err.Error()+"\n")
		return 1
	}

	workDir, err := os.Getwd()
	if err != nil {
		_, _ = io.WriteString(errOut, "error: "+err.Error()+"\n")
		return 1
	}
	cfg, err := config.Load(workDir, *flagConfig)
	if err != nil {
		_, _ = io.WriteString(errOut, "error: "+err.Error()+"\n")
		return 1
	}

	commands := allCommands(cfg)
	commandMap := make(map[string]*Command, len(commands))
	for _, cmd := range commands {
		commandMap[cmd.Name()] = cmd
	}

	rest := globalFlags.Args()
	cio := NewIO(out, errOut)

	if *flagHelp || len(rest) == 0 {
		printUsage(cio, commands)
		return 0
	}

	cmd, ok := commandMap[rest[0]]
	if !ok {
		cio.ErrPrintln("error: unknown command:", rest[0])
		printUsage(cio, commands)
		return 1
	}
	return cmd.Run(cio, rest[1:])
}

func allCommands(cfg config.Config) []*Command {
	return []*Command{
		SieveCmd(cfg),
		GetCmd(cfg),
		ReadCmd(cfg),
		InfoCmd(cfg),
		RepairCmd(cfg),
	}
}

func printUsage(o *IO, commands []*Command) {
	o.Println("primes - segmented prime sieve and bit-packed sequence file tool")
	o.Println()
	o.Println("Usage: primes [-config path] <command> [args]")
	o.Println()
	o.Println("Commands:")
	for _, cmd := range commands {
		o.Println(cmd.HelpLine())
	}
}
