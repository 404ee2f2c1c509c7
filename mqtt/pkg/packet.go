package pkg

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tada/jsonstream"

	"github.com/tada/mqtt-codec/mqtt"
)

// ErrReleased is returned when a packet is written after it has been released.
var ErrReleased = errors.New("packet has been released")

// The Packet interface is implemented by all MQTT packet types
type Packet interface {
	fmt.Stringer
	jsonstream.Streamer

	// Header returns the fixed header
	Header() FixedHeader

	// Type returns the packet type
	Type() PacketType

	// ID returns the packet ID or 0 if not applicable
	ID() uint16

	// Equals returns true if this packet is equal to the given packet, false if not
	Equals(other Packet) bool

	// Write writes the MQTT bits of this packet, fixed header included, on the given Writer
	Write(w *mqtt.Writer) error

	// Release drops the buffers owned by the packet. The packet must not be used afterwards. Calling
	// Release more than once is harmless.
	Release()
}

// writeFields writes each field prefixed with its length.
func writeFields(w *mqtt.Writer, fields ...[]byte) error {
	for _, f := range fields {
		if err := w.WriteBytes(f); err != nil {
			return err
		}
	}
	return nil
}

// fieldLen returns the number of bytes a length prefixed field occupies.
func fieldLen(f []byte) int {
	return 2 + len(f)
}
