package pkg

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/tada/catch/pio"

	"github.com/tada/mqtt-codec/mqtt"
)

// Ack is the MQTT PUBACK, PUBREC, PUBREL, PUBCOMP, or UNSUBACK packet. They all consist of a fixed header
// and a packet identifier.
type Ack struct {
	header FixedHeader
	id     uint16
}

// IsAckType returns true for the types that are represented by an Ack
func IsAckType(t PacketType) bool {
	switch t {
	case TpPubAck, TpPubRec, TpPubRel, TpPubComp, TpUnsubAck:
		return true
	}
	return false
}

// NewAck creates a new Ack of the given type. The PUBREL header gets its mandatory flags.
func NewAck(t PacketType, id uint16) (*Ack, error) {
	if !IsAckType(t) {
		return nil, errors.Wrapf(mqtt.ErrUnsupportedPacketType, "%s is not an acknowledgement", t)
	}
	h := FixedHeader(t << 4)
	if t == TpPubRel {
		h |= reservedFlags
	}
	return &Ack{header: h, id: id}, nil
}

func parseAck(r *mqtt.Reader, h FixedHeader) (Packet, int, error) {
	pkLen, err := r.ReadVarInt()
	if err != nil {
		return nil, 0, err
	}
	if r, err = r.ReadPacket(pkLen); err != nil {
		return nil, 0, err
	}
	if pkLen != 2 {
		return nil, 0, errors.Wrapf(mqtt.ErrMalformedPacket, "%s remaining length %d", h.Type(), pkLen)
	}
	a := &Ack{header: h}
	if a.id, err = r.ReadUint16(); err != nil {
		return nil, 0, errors.Wrapf(err, "%s packet identifier", h.Type())
	}
	return a, pkLen, nil
}

// Header returns the fixed header
func (a *Ack) Header() FixedHeader {
	return a.header
}

// Type returns the type of acknowledgement
func (a *Ack) Type() PacketType {
	return a.header.Type()
}

// ID returns the packet ID
func (a *Ack) ID() uint16 {
	return a.id
}

// Equals returns true if this packet is equal to the given packet, false if not
func (a *Ack) Equals(other Packet) bool {
	oa, ok := other.(*Ack)
	return ok && *a == *oa
}

// Release is a no-op since an Ack owns no buffers
func (a *Ack) Release() {
}

// String returns a brief string representation of the packet. Suitable for logging
func (a *Ack) String() string {
	return fmt.Sprintf("%s (m%d)", a.Type(), a.id)
}

// Write writes the MQTT bits of this packet on the given Writer
func (a *Ack) Write(w *mqtt.Writer) error {
	if err := PackHeader(w, a.header, 2); err != nil {
		return err
	}
	w.WriteU16(a.id)
	return nil
}

// MarshalToJSON streams the JSON form of the packet onto the given writer
func (a *Ack) MarshalToJSON(w io.Writer) {
	writeJSONHeader(a.header, w)
	writeKey("id", false, w)
	pio.WriteInt(int64(a.id), w)
	pio.WriteByte('}', w)
}
