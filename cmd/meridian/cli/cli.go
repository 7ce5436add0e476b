// FILE: cmd/meridian/cli/cli.go
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrInvalidDeals is returned by validate when any deal failed
var ErrInvalidDeals = errors.New("one or more deals are invalid")

const usage = `usage: meridian <command> [flags]

commands:
  validate [-db path] [-solve] <dir|file>...   check deal files, exit 1 if any is invalid
  generate [-mode m] [-difficulty d] [-seed n] [-count n] [-out dir]
  solve [-max-nodes n] [-max-time d] <dir|file>...
  db init|delete|query|actions|certs -path <db> [filters]`

// Run is the entry point for the CLI mini-app
func Run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("command required\n%s", usage)
	}

	switch args[0] {
	case "validate":
		return runValidate(args[1:], out)
	case "generate":
		return runGenerate(args[1:], out)
	case "solve":
		return runSolve(args[1:], out)
	case "db":
		return runDB(args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
}

type palette struct {
	green, red, yellow, bold, reset string
}

// colors returns ANSI codes when out is a terminal, blanks otherwise
func colors(out io.Writer) palette {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return palette{
			green:  "\033[32m",
			red:    "\033[31m",
			yellow: "\033[33m",
			bold:   "\033[1m",
			reset:  "\033[0m",
		}
	}
	return palette{}
}
