package cli_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-primes/primeseq/internal/cli"
)

func run(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	code = cli.Run(out, errOut, args)
	return out.String(), errOut.String(), code
}

func TestNoArgsPrintsUsage(t *testing.T) {
	stdout, _, code := run(t)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "primes")
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, code := run(t, "bogus")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestSieveRejectsMissingMax(t *testing.T) {
	_, stderr, code := run(t, "sieve")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "-max")
}

func TestSieveWritesAndReportsCount(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "primes.seq")

	stdout, _, code := run(t, "sieve", "-max=1000", "-out="+outPath)
	require.Equal(t, 0, code, stdout)
	assert.Contains(t, stdout, "found 168 primes, last=997")

	infoOut, _, infoCode := run(t, "info", "-file="+outPath)
	require.Equal(t, 0, infoCode)
	assert.Contains(t, infoOut, "count=168")
	assert.Contains(t, infoOut, "first=2 last=997")
}

func TestSievePrintFlagListsValues(t *testing.T) {
	stdout, _, code := run(t, "sieve", "-max=20", "-print")
	require.Equal(t, 0, code)
	for _, want := range []string{"2", "3", "5", "7", "11", "13", "17", "19"} {
		assert.Contains(t, strings.Split(stdout, "\n"), want)
	}
}

func TestGetAndReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "primes.seq")
	_, _, code := run(t, "sieve", "-max=100", "-out="+outPath)
	require.Equal(t, 0, code)

	getOut, _, getCode := run(t, "get", "-file="+outPath, "-index=0")
	require.Equal(t, 0, getCode)
	assert.Equal(t, "2\n", getOut)

	readOut, _, readCode := run(t, "read", "-file="+outPath, "-from=3", "-limit=2")
	require.Equal(t, 0, readCode)
	assert.Equal(t, "7\n11\n", readOut)
}

func TestRepairReportsCounts(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "primes.seq")
	_, _, code := run(t, "sieve", "-max=50", "-out="+outPath)
	require.Equal(t, 0, code)

	repairOut, _, repairCode := run(t, "repair", "-file="+outPath)
	require.Equal(t, 0, repairCode)
	assert.Contains(t, repairOut, "last=47")
}
