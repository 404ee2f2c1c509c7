package pkg

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/tada/catch/pio"

	"github.com/tada/mqtt-codec/mqtt"
)

// The Publish type represents the MQTT PUBLISH packet
type Publish struct {
	header   FixedHeader
	id       uint16
	topic    []byte
	payload  []byte
	released bool
}

// NewPublish creates a new Publish packet with dup and retain flags cleared. The packet takes ownership
// of the given slices. The id is ignored when qos is AtMostOnce.
func NewPublish(qos QoS, id uint16, topic, payload []byte) *Publish {
	return NewPublish2(id, topic, payload, qos, false, false)
}

// NewPublish2 creates a new Publish packet
func NewPublish2(id uint16, topic, payload []byte, qos QoS, dup, retain bool) *Publish {
	if qos == AtMostOnce {
		id = 0
	}
	return &Publish{header: NewFixedHeader(TpPublish, dup, qos, retain), id: id, topic: topic, payload: payload}
}

// parsePublish parses the publish packet from the given reader.
func parsePublish(r *mqtt.Reader, h FixedHeader) (Packet, int, error) {
	pkLen, err := r.ReadVarInt()
	if err != nil {
		return nil, 0, err
	}
	if r, err = r.ReadPacket(pkLen); err != nil {
		return nil, 0, err
	}
	if h.QoS() > ExactlyOnce {
		return nil, 0, errors.Wrap(mqtt.ErrMalformedPacket, "publish QoS 3")
	}

	p := &Publish{header: h}
	if p.topic, err = r.ReadBytes(); err != nil {
		p.Release()
		return nil, 0, errors.Wrap(err, "publish topic")
	}

	payloadLen := pkLen - fieldLen(p.topic)
	if h.QoS() > AtMostOnce {
		if p.id, err = r.ReadUint16(); err != nil {
			p.Release()
			return nil, 0, errors.Wrap(err, "publish packet identifier")
		}
		payloadLen -= 2
	}
	if payloadLen < 0 {
		p.Release()
		return nil, 0, errors.Wrap(mqtt.ErrMalformedPacket, "publish payload length")
	}
	if p.payload, err = r.ReadExact(payloadLen); err != nil {
		p.Release()
		return nil, 0, errors.Wrap(err, "publish payload")
	}
	return p, pkLen, nil
}

// Header returns the fixed header
func (p *Publish) Header() FixedHeader {
	return p.header
}

// Type returns TpPublish
func (p *Publish) Type() PacketType {
	return TpPublish
}

// ID returns the MQTT Packet Identifier. The identifier is only valid if QoS > 0
func (p *Publish) ID() uint16 {
	return p.id
}

// SetID sets the packet identifier. It has no effect on the wire unless QoS > 0
func (p *Publish) SetID(id uint16) {
	p.id = id
}

// IsDup returns true if the packet is a duplicate of a previously sent packet
func (p *Publish) IsDup() bool {
	return p.header.Dup()
}

// QoSLevel returns the quality of service level
func (p *Publish) QoSLevel() QoS {
	return p.header.QoS()
}

// Retain returns the retain flag setting
func (p *Publish) Retain() bool {
	return p.header.Retain()
}

// TopicName returns the name of the topic
func (p *Publish) TopicName() []byte {
	return p.topic
}

// Payload returns the payload of the published message
func (p *Publish) Payload() []byte {
	return p.payload
}

// Equals returns true if this packet is equal to the given packet, false if not
func (p *Publish) Equals(other Packet) bool {
	op, ok := other.(*Publish)
	return ok &&
		p.header == op.header &&
		p.id == op.id &&
		bytes.Equal(p.topic, op.topic) &&
		bytes.Equal(p.payload, op.payload)
}

// Release drops the topic and the payload
func (p *Publish) Release() {
	if p.released {
		return
	}
	p.topic = nil
	p.payload = nil
	p.released = true
}

// String returns a brief string representation of the packet. Suitable for logging
func (p *Publish) String() string {
	// layout borrowed from mosquitto_sub log output
	return fmt.Sprintf("PUBLISH (d%d, q%d, r%d, m%d, '%s', ... (%d bytes))",
		boolBit(p.header.Dup()),
		p.header.QoS(),
		boolBit(p.header.Retain()),
		p.id,
		p.topic,
		len(p.payload))
}

// Write writes the MQTT bits of this packet on the given Writer
func (p *Publish) Write(w *mqtt.Writer) error {
	if p.released {
		return ErrReleased
	}
	qos := p.header.QoS()
	if qos > ExactlyOnce {
		return errors.Wrap(mqtt.ErrMalformedPacket, "publish QoS 3")
	}
	pkLen := fieldLen(p.topic) + len(p.payload)
	if qos > AtMostOnce {
		pkLen += 2
	}
	if err := PackHeader(w, p.header, pkLen); err != nil {
		return err
	}
	if err := w.WriteBytes(p.topic); err != nil {
		return err
	}
	if qos > AtMostOnce {
		w.WriteU16(p.id)
	}
	w.WriteRaw(p.payload)
	return nil
}

// MarshalToJSON marshals the packet as a JSON object onto the given writer
func (p *Publish) MarshalToJSON(w io.Writer) {
	writeJSONHeader(p.header, w)
	writeKey("id", false, w)
	pio.WriteInt(int64(p.id), w)
	writeText("topic", p.topic, w)
	if len(p.payload) > 0 {
		writeBinary("payload", p.payload, w)
	}
	pio.WriteByte('}', w)
}

// IsPrintableASCII returns true if the given bytes are constrained to the ASCII 7-bit character set and
// has no control characters.
func IsPrintableASCII(bs []byte) bool {
	for _, c := range bs {
		if c < 32 || c > 126 {
			return false
		}
	}
	return true
}
