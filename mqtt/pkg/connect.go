package pkg

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/tada/catch/pio"

	"github.com/tada/mqtt-codec/mqtt"
)

const (
	// ProtocolName is the protocol name that NewConnect uses
	ProtocolName = "MQTT"

	// ProtocolLevel is the protocol level of MQTT 3.1.1
	ProtocolLevel = 0x4
)

// ConnectFlags is the flags byte of the CONNECT variable header
type ConnectFlags byte

const (
	reservedConnectFlag = ConnectFlags(0b00000001)
	cleanSessionFlag    = ConnectFlags(0b00000010)
	willFlag            = ConnectFlags(0b00000100)
	willQoSMask         = ConnectFlags(0b00011000)
	willRetainFlag      = ConnectFlags(0b00100000)
	passwordFlag        = ConnectFlags(0b01000000)
	userNameFlag        = ConnectFlags(0b10000000)
)

// Reserved returns the reserved bit. It should always be zero but is not validated.
func (f ConnectFlags) Reserved() bool {
	return f&reservedConnectFlag != 0
}

func (f ConnectFlags) CleanSession() bool {
	return f&cleanSessionFlag != 0
}

func (f ConnectFlags) Will() bool {
	return f&willFlag != 0
}

func (f ConnectFlags) WillQoS() QoS {
	return QoS((f & willQoSMask) >> 3)
}

func (f ConnectFlags) WillRetain() bool {
	return f&willRetainFlag != 0
}

func (f ConnectFlags) Password() bool {
	return f&passwordFlag != 0
}

func (f ConnectFlags) Username() bool {
	return f&userNameFlag != 0
}

// Connect is the MQTT CONNECT packet
type Connect struct {
	header      FixedHeader
	protoName   string
	protoLevel  byte
	flags       ConnectFlags
	keepAlive   uint16
	clientID    []byte
	willTopic   []byte
	willMessage []byte
	userName    []byte
	password    []byte
	released    bool
}

// NewConnect creates a new Connect packet. The packet takes ownership of the given slices. The will and
// the credentials are optional.
func NewConnect(clientID []byte, cleanSession bool, keepAlive uint16, will *Will, creds *Credentials) *Connect {
	c := &Connect{
		header:     NewFixedHeader(TpConnect, false, AtMostOnce, false),
		protoName:  ProtocolName,
		protoLevel: ProtocolLevel,
		keepAlive:  keepAlive,
		clientID:   clientID,
	}
	if cleanSession {
		c.flags |= cleanSessionFlag
	}
	if will != nil {
		c.flags |= willFlag | ConnectFlags(will.QoS<<3)&willQoSMask
		if will.Retain {
			c.flags |= willRetainFlag
		}
		c.willTopic = will.Topic
		c.willMessage = will.Message
	}
	if creds != nil {
		if creds.User != nil {
			c.flags |= userNameFlag
			c.userName = creds.User
		}
		if creds.Password != nil {
			c.flags |= passwordFlag
			c.password = creds.Password
		}
	}
	return c
}

// parseConnect parses the connect packet from the given reader. The protocol name and level are retained
// but not validated.
func parseConnect(r *mqtt.Reader, h FixedHeader) (Packet, int, error) {
	pkLen, err := r.ReadVarInt()
	if err != nil {
		return nil, 0, err
	}
	if r, err = r.ReadPacket(pkLen); err != nil {
		return nil, 0, err
	}

	c := &Connect{header: h}
	if err = c.parse(r); err != nil {
		c.Release()
		return nil, 0, err
	}
	return c, pkLen, nil
}

func (c *Connect) parse(r *mqtt.Reader) error {
	name, err := r.ReadBytes()
	if err != nil {
		return errors.Wrap(err, "connect protocol name")
	}
	c.protoName = string(name)

	if c.protoLevel, err = r.ReadByte(); err != nil {
		return errors.Wrap(err, "connect protocol level")
	}

	var b byte
	if b, err = r.ReadByte(); err != nil {
		return errors.Wrap(err, "connect flags")
	}
	c.flags = ConnectFlags(b)

	if c.keepAlive, err = r.ReadUint16(); err != nil {
		return errors.Wrap(err, "connect keep alive")
	}

	// Payload starts here
	if c.clientID, err = r.ReadBytes(); err != nil {
		return errors.Wrap(err, "connect client identifier")
	}

	if c.flags.Will() {
		if c.willTopic, err = r.ReadBytes(); err != nil {
			return errors.Wrap(err, "connect will topic")
		}
		if c.willMessage, err = r.ReadBytes(); err != nil {
			return errors.Wrap(err, "connect will message")
		}
	}

	if c.flags.Username() {
		if c.userName, err = r.ReadBytes(); err != nil {
			return errors.Wrap(err, "connect user name")
		}
	}

	if c.flags.Password() {
		if c.password, err = r.ReadBytes(); err != nil {
			return errors.Wrap(err, "connect password")
		}
	}

	if r.Len() > 0 {
		return errors.Wrapf(mqtt.ErrMalformedPacket, "connect has %d trailing bytes", r.Len())
	}
	return nil
}

// Header returns the fixed header
func (c *Connect) Header() FixedHeader {
	return c.header
}

// Type returns TpConnect
func (c *Connect) Type() PacketType {
	return TpConnect
}

// ID always returns 0 since CONNECT has no packet identifier
func (c *Connect) ID() uint16 {
	return 0
}

// ProtocolName returns the protocol name as found in the packet
func (c *Connect) ProtocolName() string {
	return c.protoName
}

// ProtocolLevel returns the protocol level as found in the packet
func (c *Connect) ProtocolLevel() byte {
	return c.protoLevel
}

// Flags returns the connect flags
func (c *Connect) Flags() ConnectFlags {
	return c.flags
}

// CleanSession returns true if the connection requests a clean session
func (c *Connect) CleanSession() bool {
	return c.flags.CleanSession()
}

// ClientID returns the client identifier
func (c *Connect) ClientID() []byte {
	return c.clientID
}

// KeepAlive returns the keep alive interval in seconds
func (c *Connect) KeepAlive() uint16 {
	return c.keepAlive
}

// Will returns the client will or nil if the packet has no will
func (c *Connect) Will() *Will {
	if !c.flags.Will() {
		return nil
	}
	return &Will{Topic: c.willTopic, Message: c.willMessage, QoS: c.flags.WillQoS(), Retain: c.flags.WillRetain()}
}

// Credentials returns the user credentials or nil if the packet has neither user name nor password
func (c *Connect) Credentials() *Credentials {
	if !(c.flags.Username() || c.flags.Password()) {
		return nil
	}
	return &Credentials{User: c.userName, Password: c.password}
}

// Equals returns true if this packet is equal to the given packet, false if not
func (c *Connect) Equals(p Packet) bool {
	oc, ok := p.(*Connect)
	return ok &&
		c.header == oc.header &&
		c.protoName == oc.protoName &&
		c.protoLevel == oc.protoLevel &&
		c.flags == oc.flags &&
		c.keepAlive == oc.keepAlive &&
		bytes.Equal(c.clientID, oc.clientID) &&
		bytes.Equal(c.willTopic, oc.willTopic) &&
		bytes.Equal(c.willMessage, oc.willMessage) &&
		bytes.Equal(c.userName, oc.userName) &&
		bytes.Equal(c.password, oc.password)
}

// Release drops the client identifier, the will, and the credentials
func (c *Connect) Release() {
	if c.released {
		return
	}
	c.clientID = nil
	c.willTopic = nil
	c.willMessage = nil
	c.userName = nil
	c.password = nil
	c.released = true
}

// String returns a brief string representation of the packet. Suitable for logging
func (c *Connect) String() string {
	s := fmt.Sprintf("CONNECT ('%s', c%d, k%d, u%d, p%d",
		c.clientID,
		boolBit(c.flags.CleanSession()),
		c.keepAlive,
		boolBit(c.flags.Username()),
		boolBit(c.flags.Password()))
	if w := c.Will(); w != nil {
		s += ", " + w.String()
	}
	return s + ")"
}

// Write writes the MQTT bits of this packet on the given Writer
func (c *Connect) Write(w *mqtt.Writer) error {
	if c.released {
		return ErrReleased
	}
	fields := make([][]byte, 1, 5)
	fields[0] = c.clientID
	if c.flags.Will() {
		fields = append(fields, c.willTopic, c.willMessage)
	}
	if c.flags.Username() {
		fields = append(fields, c.userName)
	}
	if c.flags.Password() {
		fields = append(fields, c.password)
	}

	pkLen := 2 + len(c.protoName) + 1 + 1 + 2
	for _, f := range fields {
		pkLen += fieldLen(f)
	}
	if err := PackHeader(w, c.header, pkLen); err != nil {
		return err
	}
	if err := w.WriteString(c.protoName); err != nil {
		return err
	}
	w.WriteU8(c.protoLevel)
	w.WriteU8(byte(c.flags))
	w.WriteU16(c.keepAlive)
	return writeFields(w, fields...)
}

// MarshalToJSON streams the JSON form of the packet onto the given writer
func (c *Connect) MarshalToJSON(w io.Writer) {
	writeJSONHeader(c.header, w)
	writeText("protocol", []byte(c.protoName), w)
	writeKey("level", false, w)
	pio.WriteInt(int64(c.protoLevel), w)
	writeKey("connectFlags", false, w)
	pio.WriteInt(int64(c.flags), w)
	writeKey("keepAlive", false, w)
	pio.WriteInt(int64(c.keepAlive), w)
	writeText("clientId", c.clientID, w)
	if c.flags.Will() {
		writeText("willTopic", c.willTopic, w)
		writeBinary("willMessage", c.willMessage, w)
	}
	if c.flags.Username() {
		writeText("username", c.userName, w)
	}
	if c.flags.Password() {
		writeBinary("password", c.password, w)
	}
	pio.WriteByte('}', w)
}

// ReturnCode is the return code of the MQTT CONNACK packet. It implements error so that a refused
// connection can be reported as one.
type ReturnCode byte

func (r ReturnCode) Error() string {
	switch r {
	case RtAccepted:
		return "accepted"
	case RtUnacceptableProtocolVersion:
		return "unacceptable protocol version"
	case RtIdentifierRejected:
		return "identifier rejected"
	case RtServerUnavailable:
		return "server unavailable"
	case RtBadUserNameOrPassword:
		return "bad user name or password"
	case RtNotAuthorized:
		return "not authorized"
	default:
		return "unknown error"
	}
}

const (
	// RtAccepted Connection Accepted
	RtAccepted = ReturnCode(iota)

	// RtUnacceptableProtocolVersion The Server does not support the level of the MQTT protocol requested by the Client
	RtUnacceptableProtocolVersion

	// RtIdentifierRejected The Client identifier is correct UTF-8 but not allowed by the Server
	RtIdentifierRejected

	// RtServerUnavailable The Network Connection has been made but the MQTT service is unavailable
	RtServerUnavailable

	// RtBadUserNameOrPassword The data in the user name or password is malformed
	RtBadUserNameOrPassword

	// RtNotAuthorized The Client is not authorized to connect
	RtNotAuthorized
)

// ConnAck is the MQTT CONNACK packet
type ConnAck struct {
	header     FixedHeader
	ackFlags   byte
	returnCode ReturnCode
}

// NewConnAck creates a new ConnAck packet
func NewConnAck(sessionPresent bool, returnCode ReturnCode) *ConnAck {
	return &ConnAck{
		header:     NewFixedHeader(TpConnAck, false, AtMostOnce, false),
		ackFlags:   byte(boolBit(sessionPresent)),
		returnCode: returnCode}
}

func parseConnAck(r *mqtt.Reader, h FixedHeader) (Packet, int, error) {
	pkLen, err := r.ReadVarInt()
	if err != nil {
		return nil, 0, err
	}
	if r, err = r.ReadPacket(pkLen); err != nil {
		return nil, 0, err
	}
	if pkLen != 2 {
		return nil, 0, errors.Wrapf(mqtt.ErrMalformedPacket, "CONNACK remaining length %d", pkLen)
	}
	a := &ConnAck{header: h}
	if a.ackFlags, err = r.ReadByte(); err != nil {
		return nil, 0, errors.Wrap(err, "connack flags")
	}
	var rc byte
	if rc, err = r.ReadByte(); err != nil {
		return nil, 0, errors.Wrap(err, "connack return code")
	}
	a.returnCode = ReturnCode(rc)
	return a, pkLen, nil
}

// Header returns the fixed header
func (a *ConnAck) Header() FixedHeader {
	return a.header
}

// Type returns TpConnAck
func (a *ConnAck) Type() PacketType {
	return TpConnAck
}

// ID always returns 0 since CONNACK has no packet identifier
func (a *ConnAck) ID() uint16 {
	return 0
}

// SessionPresent returns the session present flag
func (a *ConnAck) SessionPresent() bool {
	return a.ackFlags&0x01 != 0
}

// ReturnCode returns the return code
func (a *ConnAck) ReturnCode() ReturnCode {
	return a.returnCode
}

// Equals returns true if this packet is equal to the given packet, false if not
func (a *ConnAck) Equals(p Packet) bool {
	oa, ok := p.(*ConnAck)
	return ok && *a == *oa
}

// Release is a no-op since a ConnAck owns no buffers
func (a *ConnAck) Release() {
}

// String returns a brief string representation of the packet. Suitable for logging
func (a *ConnAck) String() string {
	return fmt.Sprintf("CONNACK (s%d, rt%d)", a.ackFlags&0x01, a.returnCode)
}

// Write writes the MQTT bits of this packet on the given Writer
func (a *ConnAck) Write(w *mqtt.Writer) error {
	if err := PackHeader(w, a.header, 2); err != nil {
		return err
	}
	w.WriteU8(a.ackFlags)
	w.WriteU8(byte(a.returnCode))
	return nil
}

// MarshalToJSON streams the JSON form of the packet onto the given writer
func (a *ConnAck) MarshalToJSON(w io.Writer) {
	writeJSONHeader(a.header, w)
	writeKey("ackFlags", false, w)
	pio.WriteInt(int64(a.ackFlags), w)
	writeKey("returnCode", false, w)
	pio.WriteInt(int64(a.returnCode), w)
	pio.WriteByte('}', w)
}
