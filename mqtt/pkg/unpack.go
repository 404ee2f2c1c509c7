package pkg

import (
	"github.com/pkg/errors"

	"github.com/tada/mqtt-codec/mqtt"
)

// Role determines which packet types a Decoder accepts.
type Role int

const (
	// ServerRole accepts the packets that a server receives from a client. CONNACK and SUBACK are rejected.
	ServerRole = Role(iota)

	// ClientRole accepts everything that ServerRole accepts plus CONNACK and SUBACK.
	ClientRole
)

func (r Role) String() string {
	if r == ClientRole {
		return "client"
	}
	return "server"
}

// Decoder unpacks MQTT frames. The zero value decodes in the ServerRole.
type Decoder struct {
	Role Role
}

// Unpack decodes one frame from the start of buf in the ServerRole. See Decoder.Unpack.
func Unpack(buf []byte) (Packet, int, error) {
	return Decoder{}.Unpack(buf)
}

// Unpack decodes one frame from the start of buf and returns the packet together with the remaining length
// declared by the frame. The frame occupies FrameLen(remaining) bytes of buf. The packet owns all its
// buffers so buf may be reused once Unpack returns.
//
// PINGREQ, PINGRESP and DISCONNECT are returned once the header byte is read and the returned remaining
// length is then always 0. The byte that follows the header must be present but its value is not
// checked.
//
// Errors wrap one of the mqtt error kinds. No packet is returned when an error occurs.
func (d Decoder) Unpack(buf []byte) (Packet, int, error) {
	return d.Read(mqtt.NewReader(buf))
}

// Read decodes one frame from the given reader. See Decoder.Unpack.
func (d Decoder) Read(r *mqtt.Reader) (Packet, int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, 0, err
	}
	h := FixedHeader(b)
	switch t := h.Type(); t {
	case TpPingReq, TpPingResp, TpDisconnect:
		// the length byte must be present but is not consumed
		if r.Len() < 1 {
			return nil, 0, mqtt.ErrTruncatedPacket
		}
		return HeaderOnly(h), 0, nil
	case TpConnect:
		return parseConnect(r, h)
	case TpPublish:
		return parsePublish(r, h)
	case TpPubAck, TpPubRec, TpPubRel, TpPubComp, TpUnsubAck:
		return parseAck(r, h)
	case TpSubscribe:
		return parseSubscribe(r, h)
	case TpUnsubscribe:
		return parseUnsubscribe(r, h)
	case TpConnAck:
		if d.Role == ClientRole {
			return parseConnAck(r, h)
		}
		return nil, 0, errors.Wrapf(mqtt.ErrUnsupportedPacketType, "%s in %s role", t, d.Role)
	case TpSubAck:
		if d.Role == ClientRole {
			return parseSubAck(r, h)
		}
		return nil, 0, errors.Wrapf(mqtt.ErrUnsupportedPacketType, "%s in %s role", t, d.Role)
	default:
		return nil, 0, errors.Wrapf(mqtt.ErrUnsupportedPacketType, "type %d", byte(t))
	}
}
