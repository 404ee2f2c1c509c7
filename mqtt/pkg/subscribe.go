package pkg

import (
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tada/catch/pio"

	"github.com/tada/mqtt-codec/mqtt"
)

// Topic is an MQTT Topic subscription with filter and desired quality of service
type Topic struct {
	// Filter is the Topic Filter
	Filter []byte

	// QoS Quality of Service, will be 0, 1, or 2.
	QoS QoS
}

// Subscribe is the MQTT SUBSCRIBE packet
type Subscribe struct {
	header   FixedHeader
	id       uint16
	topics   []Topic
	released bool
}

// NewSubscribe creates a new MQTT SUBSCRIBE packet. The packet takes ownership of the topic filters.
func NewSubscribe(id uint16, topics ...Topic) *Subscribe {
	return &Subscribe{header: FixedHeader(TpSubscribe<<4) | reservedFlags, id: id, topics: topics}
}

// parseSubscribe parses the subscribe packet from the given reader.
func parseSubscribe(r *mqtt.Reader, h FixedHeader) (Packet, int, error) {
	pkLen, err := r.ReadVarInt()
	if err != nil {
		return nil, 0, err
	}
	if r, err = r.ReadPacket(pkLen); err != nil {
		return nil, 0, err
	}

	sp := &Subscribe{header: h}
	if err = sp.parse(r, pkLen); err != nil {
		sp.Release()
		return nil, 0, err
	}
	return sp, pkLen, nil
}

func (s *Subscribe) parse(r *mqtt.Reader, pkLen int) error {
	var err error
	if s.id, err = r.ReadUint16(); err != nil {
		return errors.Wrap(err, "subscribe packet identifier")
	}
	remaining := pkLen - 2
	for remaining > 0 {
		t := Topic{}
		if t.Filter, err = r.ReadBytes(); err != nil {
			return errors.Wrapf(err, "subscribe topic filter %d", len(s.topics))
		}
		var q byte
		if q, err = r.ReadByte(); err != nil {
			return errors.Wrapf(err, "subscribe requested QoS %d", len(s.topics))
		}
		if q > byte(ExactlyOnce) {
			return errors.Wrapf(mqtt.ErrMalformedPacket, "subscribe requested QoS %d", q)
		}
		t.QoS = QoS(q)
		s.topics = append(s.topics, t)
		remaining -= fieldLen(t.Filter) + 1
	}
	if remaining != 0 {
		return errors.Wrap(mqtt.ErrMalformedPacket, "subscribe topics overshoot remaining length")
	}
	return nil
}

// Header returns the fixed header
func (s *Subscribe) Header() FixedHeader {
	return s.header
}

// Type returns TpSubscribe
func (s *Subscribe) Type() PacketType {
	return TpSubscribe
}

// ID returns the MQTT Packet Identifier
func (s *Subscribe) ID() uint16 {
	return s.id
}

// SetID sets the MQTT Packet Identifier
func (s *Subscribe) SetID(id uint16) {
	s.id = id
}

// Topics returns the list of topics to subscribe to
func (s *Subscribe) Topics() []Topic {
	return s.topics
}

// Equals returns true if this packet is equal to the given packet, false if not
func (s *Subscribe) Equals(p Packet) bool {
	if os, ok := p.(*Subscribe); ok && s.header == os.header && s.id == os.id && len(s.topics) == len(os.topics) {
		for i := range s.topics {
			if s.topics[i].QoS != os.topics[i].QoS || !bytes.Equal(s.topics[i].Filter, os.topics[i].Filter) {
				return false
			}
		}
		return true
	}
	return false
}

// Release drops every topic filter and the topic list
func (s *Subscribe) Release() {
	if s.released {
		return
	}
	for i := range s.topics {
		s.topics[i].Filter = nil
	}
	s.topics = nil
	s.released = true
}

// String returns a brief string representation of the packet. Suitable for logging
func (s *Subscribe) String() string {
	bs := bytes.NewBufferString("SUBSCRIBE (m")
	bs.WriteString(strconv.Itoa(int(s.id)))
	bs.WriteString(", ")
	wt := func(t Topic) {
		bs.WriteByte('q')
		bs.WriteString(strconv.Itoa(int(t.QoS)))
		bs.WriteString(", '")
		bs.Write(t.Filter)
		bs.WriteByte('\'')
	}
	if len(s.topics) != 1 {
		bs.WriteByte('[')
		for i, t := range s.topics {
			if i > 0 {
				bs.WriteString(", ")
			}
			bs.WriteByte('(')
			wt(t)
			bs.WriteByte(')')
		}
		bs.WriteByte(']')
	} else {
		wt(s.topics[0])
	}
	bs.WriteByte(')')
	return bs.String()
}

// Write writes the MQTT bits of this packet on the given Writer
func (s *Subscribe) Write(w *mqtt.Writer) error {
	if s.released {
		return ErrReleased
	}
	pkLen := 2 // id
	for i := range s.topics {
		pkLen += fieldLen(s.topics[i].Filter) + 1
	}
	if err := PackHeader(w, s.header, pkLen); err != nil {
		return err
	}
	w.WriteU16(s.id)
	for i := range s.topics {
		t := s.topics[i]
		if err := w.WriteBytes(t.Filter); err != nil {
			return err
		}
		w.WriteU8(byte(t.QoS))
	}
	return nil
}

// MarshalToJSON streams the JSON form of the packet onto the given writer
func (s *Subscribe) MarshalToJSON(w io.Writer) {
	writeJSONHeader(s.header, w)
	writeKey("id", false, w)
	pio.WriteInt(int64(s.id), w)
	writeKey("topics", false, w)
	pio.WriteByte('[', w)
	for i, t := range s.topics {
		if i > 0 {
			pio.WriteByte(',', w)
		}
		pio.WriteByte('{', w)
		writeKey("qos", true, w)
		pio.WriteInt(int64(t.QoS), w)
		writeText("filter", t.Filter, w)
		pio.WriteByte('}', w)
	}
	pio.WriteString("]}", w)
}

// SubAck is the MQTT SUBACK packet
type SubAck struct {
	header      FixedHeader
	id          uint16
	returnCodes []byte
	released    bool
}

// SubAckFailure is the SUBACK return code that signals a failed subscription
const SubAckFailure = 0x80

// NewSubAck creates a new SubAck packet that takes ownership of the given return codes.
func NewSubAck(id uint16, returnCodes []byte) *SubAck {
	return &SubAck{header: FixedHeader(TpSubAck << 4), id: id, returnCodes: returnCodes}
}

func parseSubAck(r *mqtt.Reader, h FixedHeader) (Packet, int, error) {
	pkLen, err := r.ReadVarInt()
	if err != nil {
		return nil, 0, err
	}
	if r, err = r.ReadPacket(pkLen); err != nil {
		return nil, 0, err
	}
	sa := &SubAck{header: h}
	if sa.id, err = r.ReadUint16(); err != nil {
		return nil, 0, errors.Wrap(err, "suback packet identifier")
	}
	if sa.returnCodes, err = r.ReadRemainingBytes(); err != nil {
		return nil, 0, errors.Wrap(err, "suback return codes")
	}
	return sa, pkLen, nil
}

// Header returns the fixed header
func (s *SubAck) Header() FixedHeader {
	return s.header
}

// Type returns TpSubAck
func (s *SubAck) Type() PacketType {
	return TpSubAck
}

// ID returns the MQTT Packet Identifier
func (s *SubAck) ID() uint16 {
	return s.id
}

// ReturnCodes returns one return code for each topic of the acknowledged subscription
func (s *SubAck) ReturnCodes() []byte {
	return s.returnCodes
}

// Equals returns true if this packet is equal to the given packet, false if not
func (s *SubAck) Equals(p Packet) bool {
	os, ok := p.(*SubAck)
	return ok && s.header == os.header && s.id == os.id && bytes.Equal(s.returnCodes, os.returnCodes)
}

// Release drops the return codes
func (s *SubAck) Release() {
	if s.released {
		return
	}
	s.returnCodes = nil
	s.released = true
}

// String returns a brief string representation of the packet. Suitable for logging
func (s *SubAck) String() string {
	bs := bytes.NewBufferString("SUBACK (m")
	bs.WriteString(strconv.Itoa(int(s.id)))
	bs.WriteString(", [")
	for i, rc := range s.returnCodes {
		if i > 0 {
			bs.WriteString(", ")
		}
		bs.WriteString("rc")
		bs.WriteString(strconv.Itoa(int(rc)))
	}
	bs.WriteString("])")
	return bs.String()
}

// Write writes the MQTT bits of this packet on the given Writer
func (s *SubAck) Write(w *mqtt.Writer) error {
	if s.released {
		return ErrReleased
	}
	if err := PackHeader(w, s.header, 2+len(s.returnCodes)); err != nil {
		return err
	}
	w.WriteU16(s.id)
	w.WriteRaw(s.returnCodes)
	return nil
}

// MarshalToJSON streams the JSON form of the packet onto the given writer
func (s *SubAck) MarshalToJSON(w io.Writer) {
	writeJSONHeader(s.header, w)
	writeKey("id", false, w)
	pio.WriteInt(int64(s.id), w)
	writeKey("returnCodes", false, w)
	pio.WriteByte('[', w)
	for i, rc := range s.returnCodes {
		if i > 0 {
			pio.WriteByte(',', w)
		}
		pio.WriteInt(int64(rc), w)
	}
	pio.WriteString("]}", w)
}
