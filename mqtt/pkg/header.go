// Package pkg contains the MQTT packet structures together with the functions that unpack them from
// and pack them onto the wire.
package pkg

import (
	"github.com/tada/mqtt-codec/mqtt"
)

// PacketType is the MQTT control packet type found in the upper four bits of the fixed header.
type PacketType byte

const (
	// TpConnect is the MQTT CONNECT type
	TpConnect = PacketType(iota + 1)

	// TpConnAck is the MQTT CONNACK type
	TpConnAck

	// TpPublish is the MQTT PUBLISH type
	TpPublish

	// TpPubAck is the MQTT PUBACK type
	TpPubAck

	// TpPubRec is the MQTT PUBREC type
	TpPubRec

	// TpPubRel is the MQTT PUBREL type
	TpPubRel

	// TpPubComp is the MQTT PUBCOMP type
	TpPubComp

	// TpSubscribe is the MQTT SUBSCRIBE type
	TpSubscribe

	// TpSubAck is the MQTT SUBACK type
	TpSubAck

	// TpUnsubscribe is the MQTT UNSUBSCRIBE type
	TpUnsubscribe

	// TpUnsubAck is the MQTT UNSUBACK type
	TpUnsubAck

	// TpPingReq is the MQTT PINGREQ type
	TpPingReq

	// TpPingResp is the MQTT PINGRESP type
	TpPingResp

	// TpDisconnect is the MQTT DISCONNECT type
	TpDisconnect
)

var typeNames = [...]string{
	"RESERVED",
	"CONNECT",
	"CONNACK",
	"PUBLISH",
	"PUBACK",
	"PUBREC",
	"PUBREL",
	"PUBCOMP",
	"SUBSCRIBE",
	"SUBACK",
	"UNSUBSCRIBE",
	"UNSUBACK",
	"PINGREQ",
	"PINGRESP",
	"DISCONNECT",
	"RESERVED",
}

// Valid returns true unless the type is one of the reserved values 0 and 15.
func (t PacketType) Valid() bool {
	return t >= TpConnect && t <= TpDisconnect
}

// String returns the upper case MQTT name of the type, e.g. "PUBLISH".
func (t PacketType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "RESERVED"
}

// ParsePacketType returns the PacketType with the given name. The second return value is false if the
// name is not the name of a valid type.
func ParsePacketType(name string) (PacketType, bool) {
	for i := TpConnect; i <= TpDisconnect; i++ {
		if typeNames[i] == name {
			return i, true
		}
	}
	return 0, false
}

// QoS is the MQTT quality of service level
type QoS byte

const (
	// AtMostOnce is QoS level 0
	AtMostOnce = QoS(iota)

	// AtLeastOnce is QoS level 1
	AtLeastOnce

	// ExactlyOnce is QoS level 2
	ExactlyOnce
)

const (
	retainFlag = 0x01
	qosMask    = 0x06
	dupFlag    = 0x08
	flagsMask  = 0x0f

	// flags mandated for PUBREL, SUBSCRIBE and UNSUBSCRIBE
	reservedFlags = 0x02
)

// FixedHeader is the first byte of every MQTT control packet. Bits 7-4 hold the packet type, bit 3 the
// dup flag, bits 2-1 the QoS level and bit 0 the retain flag.
type FixedHeader byte

// NewFixedHeader composes a FixedHeader from its parts.
func NewFixedHeader(t PacketType, dup bool, qos QoS, retain bool) FixedHeader {
	h := FixedHeader(t<<4) | FixedHeader(qos<<1)&qosMask
	if dup {
		h |= dupFlag
	}
	if retain {
		h |= retainFlag
	}
	return h
}

// Type returns the packet type
func (h FixedHeader) Type() PacketType {
	return PacketType(h >> 4)
}

// Dup returns the dup flag
func (h FixedHeader) Dup() bool {
	return h&dupFlag != 0
}

// QoS returns the quality of service. Note that the value 3 is possible although not valid.
func (h FixedHeader) QoS() QoS {
	return QoS((h & qosMask) >> 1)
}

// Retain returns the retain flag
func (h FixedHeader) Retain() bool {
	return h&retainFlag != 0
}

// Flags returns the lower four bits
func (h FixedHeader) Flags() byte {
	return byte(h) & flagsMask
}

// PackHeader writes the header byte followed by the remaining length.
func PackHeader(w *mqtt.Writer, h FixedHeader, remaining int) error {
	w.WriteU8(byte(h))
	return w.WriteVarInt(remaining)
}

// FrameLen returns the total number of bytes occupied by a frame with the given remaining length.
func FrameLen(remaining int) int {
	return 1 + mqtt.RemainingLengthSize(remaining) + remaining
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}
