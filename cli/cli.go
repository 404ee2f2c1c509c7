// Package cli contains the command line interface of the mqtt-codec tool.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

const usage = `usage: %s <command> [flags]

commands:
  decode   decode MQTT frames and print one line per packet
  encode   encode JSON packets into MQTT frames

Use "%s <command> -help" for more information about a command.
`

// Run executes the command given in args and returns the process exit code. 0 means success, 1 that
// the command failed, and 2 that the command line was invalid.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	name := "mqtt-codec"
	if len(args) > 0 {
		name = args[0]
	}
	if len(args) < 2 {
		printUsage(stderr, name)
		return 2
	}
	switch args[1] {
	case "decode":
		return Decode(name+" decode", args[2:], stdin, stdout, stderr)
	case "encode":
		return Encode(name+" encode", args[2:], stdin, stdout, stderr)
	case "-h", "-help", "--help", "help":
		printUsage(stdout, name)
		return 0
	default:
		_, _ = io.WriteString(stderr, "unknown command "+args[1]+"\n")
		printUsage(stderr, name)
		return 2
	}
}

func printUsage(w io.Writer, name string) {
	_, _ = fmt.Fprintf(w, usage, name, name)
}

// readInput returns all bytes of the named file or of stdin when the name is empty or "-"
func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "" || name == "-" {
		bs, err := io.ReadAll(stdin)
		return bs, errors.Wrap(err, "read stdin")
	}
	bs, err := os.ReadFile(name)
	return bs, errors.Wrapf(err, "read %s", name)
}
