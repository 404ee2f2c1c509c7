// Package tap mirrors decoded MQTT packets onto NATS subjects so that a frame capture can be observed
// by any NATS subscriber.
package tap

import (
	"io"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nuid"
	"github.com/pkg/errors"
	"github.com/tada/catch/pio"
	"github.com/tada/jsonstream"

	"github.com/tada/mqtt-codec/logger"
	"github.com/tada/mqtt-codec/mqtt"
	"github.com/tada/mqtt-codec/mqtt/pkg"
)

// DefaultPrefix is the subject prefix used when none is given
const DefaultPrefix = "mqtt.frames"

// A Tap publishes packets as JSON on NATS. Each Tap has a unique session id that is included in every
// message so that subscribers can tell concurrent captures apart. A Tap is safe for concurrent use.
type Tap struct {
	conn    *nats.Conn
	prefix  string
	session string
	lg      logger.Logger
}

// Connect connects to the NATS server at the given URL and returns a Tap that publishes on subjects
// that start with prefix.
func Connect(url, prefix string, lg logger.Logger, opts ...nats.Option) (*Tap, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	opts = append([]nats.Option{nats.Name("MQTT Codec Tap")}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "tap connect to %s", url)
	}
	t := &Tap{conn: nc, prefix: prefix, session: nuid.Next(), lg: lg}
	if lg.InfoEnabled() {
		lg.Info("tap session", t.session, "connected to", nc.ConnectedUrl())
	}
	return t, nil
}

// Session returns the session id of this Tap
func (t *Tap) Session() string {
	return t.session
}

// Subjects returns the subjects that the given packet is published on. The first subject is always
// <prefix>.<type> where type is the lower case packet type name. A PUBLISH packet whose topic is a
// valid NATS subject is also published on <prefix>.publish.<subject>.
func (t *Tap) Subjects(p pkg.Packet) []string {
	tn := strings.ToLower(p.Type().String())
	ss := []string{t.prefix + "." + tn}
	if pp, ok := p.(*pkg.Publish); ok {
		if s, ok := mqtt.NATSSubject(string(pp.TopicName())); ok {
			ss = append(ss, t.prefix+"."+tn+"."+s)
		}
	}
	return ss
}

type message struct {
	session string
	packet  pkg.Packet
}

func (m *message) MarshalToJSON(w io.Writer) {
	pio.WriteString(`{"session":`, w)
	jsonstream.WriteString(m.session, w)
	pio.WriteString(`,"packet":`, w)
	m.packet.MarshalToJSON(w)
	pio.WriteByte('}', w)
}

// Publish sends the JSON form of the given packet to all subjects returned by Subjects.
func (t *Tap) Publish(p pkg.Packet) error {
	bs, err := jsonstream.Marshal(&message{session: t.session, packet: p})
	if err != nil {
		return err
	}
	for _, s := range t.Subjects(p) {
		if err = t.conn.Publish(s, bs); err != nil {
			return errors.Wrapf(err, "tap publish on %s", s)
		}
		if t.lg.DebugEnabled() {
			t.lg.Debug("tap", s, p)
		}
	}
	return nil
}

// Close flushes pending messages and closes the NATS connection.
func (t *Tap) Close() error {
	err := t.conn.Flush()
	t.conn.Close()
	if err != nil {
		return errors.Wrap(err, "tap flush")
	}
	return nil
}
