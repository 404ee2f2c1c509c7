package cli

import (
	"encoding/hex"
	"flag"
	"io"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/tada/catch"
	"github.com/tada/catch/pio"

	"github.com/tada/mqtt-codec/logger"
	"github.com/tada/mqtt-codec/mqtt"
	"github.com/tada/mqtt-codec/mqtt/pkg"
	"github.com/tada/mqtt-codec/tap"
)

type decodeOptions struct {
	in      string
	hex     bool
	json    bool
	client  bool
	natsURL string
	subject string
	debug   bool
	level   string
}

// Decode reads a sequence of MQTT frames and writes one line per decoded packet on stdout. The line is
// either the brief log form of the packet or, with -json, its JSON form. Decoding stops at the first
// frame that cannot be decoded.
func Decode(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &decodeOptions{}
	fs.StringVar(&opts.in, "in", "", "file to read frames from (defaults to stdin)")
	fs.BoolVar(&opts.hex, "hex", false, "input is hex text, white space is ignored")
	fs.BoolVar(&opts.json, "json", false, "print packets as JSON")
	fs.BoolVar(&opts.client, "client", false, "decode in client role, i.e. accept CONNACK and SUBACK")
	fs.StringVar(&opts.natsURL, "natsurl", "", "NATS server URL. Enables publishing of decoded packets")
	fs.StringVar(&opts.subject, "subject", tap.DefaultPrefix, "subject prefix used when publishing on NATS")
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
	if err = decode(opts, stdin, stdout, lg); err != nil {
		lg.Error(err)
		return 1
	}
	return 0
}

func decode(opts *decodeOptions, stdin io.Reader, stdout io.Writer, lg logger.Logger) (err error) {
	var buf []byte
	buf, err = readInput(opts.in, stdin)
	if err != nil {
		return err
	}
	if opts.hex {
		if buf, err = hex.DecodeString(strings.Join(strings.Fields(string(buf)), "")); err != nil {
			return errors.Wrap(err, "hex input")
		}
	}

	var tp *tap.Tap
	if opts.natsURL != "" {
		if tp, err = tap.Connect(opts.natsURL, opts.subject, lg, nats.Name("MQTT Codec Decode")); err != nil {
			return err
		}
		defer func() {
			if cerr := tp.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	d := pkg.Decoder{}
	if opts.client {
		d.Role = pkg.ClientRole
	}
	for off := 0; off < len(buf); {
		var p pkg.Packet
		var n int
		if p, n, err = d.Unpack(buf[off:]); err != nil {
			return errors.Wrapf(err, "frame at offset %d (%s)", off, mqtt.Kind(err))
		}
		if lg.DebugEnabled() {
			lg.Debug("frame at offset", off, "length", pkg.FrameLen(n))
		}
		err = writePacket(p, opts.json, stdout)
		if err == nil && tp != nil {
			err = tp.Publish(p)
		}
		p.Release()
		if err != nil {
			return err
		}
		off += pkg.FrameLen(n)
	}
	return nil
}

func writePacket(p pkg.Packet, asJSON bool, w io.Writer) error {
	return catch.Do(func() {
		if asJSON {
			p.MarshalToJSON(w)
		} else {
			pio.WriteString(p.String(), w)
		}
		pio.WriteByte('\n', w)
	})
}

// newLogger creates the logger that writes on stderr. The debug flag takes precedence over the level.
func newLogger(level string, debug bool, stderr io.Writer) (logger.Logger, error) {
	l, err := logger.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if debug {
		l = logger.Debug
	}
	return logger.New(l, stderr, stderr), nil
}
