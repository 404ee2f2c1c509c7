package cli

import (
	"bytes"
	"encoding/hex"
	"flag"
	"io"

	"github.com/pkg/errors"

	"github.com/tada/mqtt-codec/logger"
	"github.com/tada/mqtt-codec/mqtt/pkg"
)

type encodeOptions struct {
	in     string
	hex    bool
	autoID bool
	debug  bool
	level  string
}

// Encode reads a stream of packets in JSON form and writes their MQTT frames on stdout.
func Encode(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &encodeOptions{}
	fs.StringVar(&opts.in, "in", "", "file to read JSON packets from (defaults to stdin)")
	fs.BoolVar(&opts.hex, "hex", false, "write each frame as a line of hex text")
	fs.BoolVar(&opts.autoID, "autoid", false, "assign packet identifiers to packets that need one but have id 0")
	fs.BoolVar(&opts.debug, "D", false, "Enable Debug logging")
	fs.BoolVar(&opts.debug, "debug", false, "Enable Debug logging")
	fs.StringVar(&opts.level, "loglevel", logger.Error.String(), "log level, one of silent, error, info, debug")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	lg, err := newLogger(opts.level, opts.debug, stderr)
	if err != nil {
		_, _ = io.WriteString(stderr, err.Error()+"\n")
		return 2
	}
	if err = encode(opts, stdin, stdout, lg); err != nil {
		lg.Error(err)
		return 1
	}
	return 0
}

func encode(opts *encodeOptions, stdin io.Reader, stdout io.Writer, lg logger.Logger) error {
	in, err := readInput(opts.in, stdin)
	if err != nil {
		return err
	}
	var ids pkg.IDManager
	if opts.autoID {
		ids = pkg.NewIDManager()
	}
	return pkg.ReadPackets(bytes.NewReader(in), func(p pkg.Packet) error {
		if ids != nil && pkg.AssignID(p, ids) && lg.DebugEnabled() {
			lg.Debug("assigned packet id", p.ID(), "to", p.Type())
		}
		bs, err := pkg.Pack(p)
		if err != nil {
			return errors.Wrapf(err, "encode %s", p)
		}
		if lg.DebugEnabled() {
			lg.Debug(p)
		}
		if opts.hex {
			_, err = io.WriteString(stdout, hex.EncodeToString(bs)+"\n")
		} else {
			_, err = stdout.Write(bs)
		}
		return err
	})
}
