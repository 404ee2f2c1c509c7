package pkg

import (
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tada/catch/pio"

	"github.com/tada/mqtt-codec/mqtt"
)

// Unsubscribe is the MQTT UNSUBSCRIBE packet
type Unsubscribe struct {
	header   FixedHeader
	id       uint16
	filters  [][]byte
	released bool
}

// NewUnsubscribe creates a new Unsubscribe packet that takes ownership of the given filters
func NewUnsubscribe(id uint16, filters ...[]byte) *Unsubscribe {
	return &Unsubscribe{header: FixedHeader(TpUnsubscribe<<4) | reservedFlags, id: id, filters: filters}
}

// parseUnsubscribe parses the unsubscribe packet from the given reader.
func parseUnsubscribe(r *mqtt.Reader, h FixedHeader) (Packet, int, error) {
	pkLen, err := r.ReadVarInt()
	if err != nil {
		return nil, 0, err
	}
	if r, err = r.ReadPacket(pkLen); err != nil {
		return nil, 0, err
	}

	up := &Unsubscribe{header: h}
	if err = up.parse(r, pkLen); err != nil {
		up.Release()
		return nil, 0, err
	}
	return up, pkLen, nil
}

func (u *Unsubscribe) parse(r *mqtt.Reader, pkLen int) error {
	var err error
	if u.id, err = r.ReadUint16(); err != nil {
		return errors.Wrap(err, "unsubscribe packet identifier")
	}
	remaining := pkLen - 2
	for remaining > 0 {
		var f []byte
		if f, err = r.ReadBytes(); err != nil {
			return errors.Wrapf(err, "unsubscribe topic filter %d", len(u.filters))
		}
		u.filters = append(u.filters, f)
		remaining -= fieldLen(f)
	}
	if remaining != 0 {
		return errors.Wrap(mqtt.ErrMalformedPacket, "unsubscribe topics overshoot remaining length")
	}
	return nil
}

// Header returns the fixed header
func (u *Unsubscribe) Header() FixedHeader {
	return u.header
}

// Type returns TpUnsubscribe
func (u *Unsubscribe) Type() PacketType {
	return TpUnsubscribe
}

// ID returns the MQTT Packet Identifier
func (u *Unsubscribe) ID() uint16 {
	return u.id
}

// SetID sets the MQTT Packet Identifier
func (u *Unsubscribe) SetID(id uint16) {
	u.id = id
}

// Filters returns the list of topic filters to unsubscribe from
func (u *Unsubscribe) Filters() [][]byte {
	return u.filters
}

// Equals returns true if this packet is equal to the given packet, false if not
func (u *Unsubscribe) Equals(p Packet) bool {
	if os, ok := p.(*Unsubscribe); ok && u.header == os.header && u.id == os.id && len(u.filters) == len(os.filters) {
		for i := range u.filters {
			if !bytes.Equal(u.filters[i], os.filters[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Release drops every topic filter and the filter list
func (u *Unsubscribe) Release() {
	if u.released {
		return
	}
	for i := range u.filters {
		u.filters[i] = nil
	}
	u.filters = nil
	u.released = true
}

// String returns a brief string representation of the packet. Suitable for logging
func (u *Unsubscribe) String() string {
	bs := bytes.NewBufferString("UNSUBSCRIBE (m")
	bs.WriteString(strconv.Itoa(int(u.id)))
	bs.WriteString(", [")
	for i, f := range u.filters {
		if i > 0 {
			bs.WriteString(", ")
		}
		bs.WriteByte('\'')
		bs.Write(f)
		bs.WriteByte('\'')
	}
	bs.WriteString("])")
	return bs.String()
}

// Write writes the MQTT bits of this packet on the given Writer
func (u *Unsubscribe) Write(w *mqtt.Writer) error {
	if u.released {
		return ErrReleased
	}
	pkLen := 2 // packet id
	for i := range u.filters {
		pkLen += fieldLen(u.filters[i])
	}
	if err := PackHeader(w, u.header, pkLen); err != nil {
		return err
	}
	w.WriteU16(u.id)
	return writeFields(w, u.filters...)
}

// MarshalToJSON streams the JSON form of the packet onto the given writer
func (u *Unsubscribe) MarshalToJSON(w io.Writer) {
	writeJSONHeader(u.header, w)
	writeKey("id", false, w)
	pio.WriteInt(int64(u.id), w)
	writeKey("topics", false, w)
	pio.WriteByte('[', w)
	for i, f := range u.filters {
		if i > 0 {
			pio.WriteByte(',', w)
		}
		pio.WriteByte('{', w)
		writeTextFirst("filter", f, true, w)
		pio.WriteByte('}', w)
	}
	pio.WriteString("]}", w)
}
