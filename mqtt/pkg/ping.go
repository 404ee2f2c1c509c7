package pkg

import (
	"io"

	"github.com/tada/catch/pio"

	"github.com/tada/mqtt-codec/mqtt"
)

// HeaderOnly represents the MQTT packets that consist of nothing but a fixed header and a zero remaining
// length, i.e. PINGREQ, PINGRESP, and DISCONNECT.
type HeaderOnly FixedHeader

const (
	// PingRequestSingleton is the one and only instance of the PINGREQ packet
	PingRequestSingleton = HeaderOnly(TpPingReq << 4)

	// PingResponseSingleton is the one and only instance of the PINGRESP packet
	PingResponseSingleton = HeaderOnly(TpPingResp << 4)

	// DisconnectSingleton is the one and only instance of the DISCONNECT packet
	DisconnectSingleton = HeaderOnly(TpDisconnect << 4)
)

// Header returns the fixed header
func (h HeaderOnly) Header() FixedHeader {
	return FixedHeader(h)
}

// Type returns TpPingReq, TpPingResp, or TpDisconnect
func (h HeaderOnly) Type() PacketType {
	return FixedHeader(h).Type()
}

// ID always returns 0
func (h HeaderOnly) ID() uint16 {
	return 0
}

// Equals returns true if this packet is equal to the given packet, false if not
func (h HeaderOnly) Equals(p Packet) bool {
	return p == Packet(h)
}

// Release is a no-op
func (h HeaderOnly) Release() {
}

// String returns a brief string representation of the packet. Suitable for logging
func (h HeaderOnly) String() string {
	return h.Type().String()
}

// Write writes the MQTT bits of this packet on the given Writer
func (h HeaderOnly) Write(w *mqtt.Writer) error {
	return PackHeader(w, FixedHeader(h), 0)
}

// MarshalToJSON streams the JSON form of the packet onto the given writer
func (h HeaderOnly) MarshalToJSON(w io.Writer) {
	writeJSONHeader(FixedHeader(h), w)
	pio.WriteByte('}', w)
}
