package pkg

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/tada/catch"
	"github.com/tada/catch/pio"
	"github.com/tada/jsonstream"

	"github.com/tada/mqtt-codec/mqtt"
)

// encSuffix is appended to the key of a value that is written in base64 encoded form
const encSuffix = "Enc"

func writeKey(key string, first bool, w io.Writer) {
	if !first {
		pio.WriteByte(',', w)
	}
	jsonstream.WriteString(key, w)
	pio.WriteByte(':', w)
}

func writeJSONHeader(h FixedHeader, w io.Writer) {
	pio.WriteByte('{', w)
	writeKey("type", true, w)
	jsonstream.WriteString(h.Type().String(), w)
	writeKey("flags", false, w)
	pio.WriteInt(int64(h.Flags()), w)
}

// writeText writes a value that is expected to be UTF-8. Anything else, and text with control characters,
// is base64 encoded.
func writeText(key string, bs []byte, w io.Writer) {
	writeTextFirst(key, bs, false, w)
}

func writeTextFirst(key string, bs []byte, first bool, w io.Writer) {
	writeValue(key, bs, isPlainText(bs), first, w)
}

// writeBinary writes a value that may hold arbitrary bytes. Anything but printable ASCII is base64 encoded.
func writeBinary(key string, bs []byte, w io.Writer) {
	writeValue(key, bs, IsPrintableASCII(bs), false, w)
}

func writeValue(key string, bs []byte, plain, first bool, w io.Writer) {
	if plain {
		writeKey(key, first, w)
		jsonstream.WriteString(string(bs), w)
	} else {
		writeKey(key+encSuffix, first, w)
		jsonstream.WriteString(base64.StdEncoding.EncodeToString(bs), w)
	}
}

// isPlainText returns true if bs is valid UTF-8 without control characters. jsonstream.WriteString
// escapes nothing but the quote and the backslash.
func isPlainText(bs []byte) bool {
	for _, c := range bs {
		if c < 0x20 {
			return false
		}
	}
	return utf8.Valid(bs)
}

// valueKeys are the keys of the length prefixed values that each packet type accepts
var valueKeys = map[PacketType][]string{
	TpConnect: {"clientId", "willTopic", "willMessage", "username", "password"},
	TpPublish: {"topic", "payload"},
}

// jsonPacket collects the values of a JSON packet object so that the packet can be created once the
// type is known.
type jsonPacket struct {
	tp          PacketType
	flags       byte
	id          uint16
	protoName   string
	protoLevel  byte
	hasProto    bool
	hasLevel    bool
	connFlags   ConnectFlags
	keepAlive   uint16
	ackFlags    byte
	returnCode  ReturnCode
	values      map[string][]byte
	topics      []Topic
	returnCodes []byte
}

func assertUint(js jsonstream.Decoder, max int64, what string) int64 {
	i := js.ReadInt()
	if i < 0 || i > max {
		panic(catch.Error("%s %d is out of range", what, i))
	}
	return i
}

func assertValue(js jsonstream.Decoder, encoded bool) []byte {
	s := js.ReadString()
	if !encoded {
		return []byte(s)
	}
	bs, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(catch.Error(err))
	}
	return bs
}

func (p *jsonPacket) UnmarshalFromJSON(js jsonstream.Decoder, t json.Token) {
	jsonstream.AssertDelim(t, '{')
	p.values = make(map[string][]byte)
	for {
		k, ok := js.ReadStringOrEnd('}')
		if !ok {
			break
		}
		switch k {
		case "type":
			n := js.ReadString()
			if p.tp, ok = ParsePacketType(n); !ok {
				panic(catch.Error(errors.Wrapf(mqtt.ErrUnsupportedPacketType, "%q", n)))
			}
		case "flags":
			p.flags = byte(assertUint(js, flagsMask, k))
		case "id":
			p.id = uint16(assertUint(js, 0xffff, k))
		case "protocol", "protocolEnc":
			p.protoName = string(assertValue(js, k != "protocol"))
			p.hasProto = true
		case "level":
			p.protoLevel = byte(assertUint(js, 0xff, k))
			p.hasLevel = true
		case "connectFlags":
			p.connFlags = ConnectFlags(assertUint(js, 0xff, k))
		case "keepAlive":
			p.keepAlive = uint16(assertUint(js, 0xffff, k))
		case "ackFlags":
			p.ackFlags = byte(assertUint(js, 0xff, k))
		case "returnCode":
			p.returnCode = ReturnCode(assertUint(js, 0xff, k))
		case "returnCodes":
			js.ReadDelim('[')
			p.returnCodes = []byte{}
			for {
				i, ok := js.ReadIntOrEnd(']')
				if !ok {
					break
				}
				if i < 0 || i > 0xff {
					panic(catch.Error("return code %d is out of range", i))
				}
				p.returnCodes = append(p.returnCodes, byte(i))
			}
		case "topics":
			js.ReadDelim('[')
			p.topics = []Topic{}
			for {
				jt := &jsonTopic{}
				found, ok := js.ReadConsumerOrEnd(jt, ']')
				if !ok {
					break
				}
				if !found {
					panic(catch.Error("topic cannot be null"))
				}
				p.topics = append(p.topics, Topic(*jt))
			}
		case "clientId", "willTopic", "willMessage", "username", "password", "topic", "payload":
			p.values[k] = assertValue(js, false)
		case "clientIdEnc", "willTopicEnc", "willMessageEnc", "usernameEnc", "passwordEnc", "topicEnc", "payloadEnc":
			p.values[k[:len(k)-len(encSuffix)]] = assertValue(js, true)
		default:
			panic(catch.Error("unexpected key %q", k))
		}
	}
}

type jsonTopic Topic

func (t *jsonTopic) UnmarshalFromJSON(js jsonstream.Decoder, ft json.Token) {
	jsonstream.AssertDelim(ft, '{')
	for {
		k, ok := js.ReadStringOrEnd('}')
		if !ok {
			break
		}
		switch k {
		case "qos":
			t.QoS = QoS(assertUint(js, int64(ExactlyOnce), k))
		case "filter":
			t.Filter = assertValue(js, false)
		case "filterEnc":
			t.Filter = assertValue(js, true)
		default:
			panic(catch.Error("unexpected key %q", k))
		}
	}
}

// checkValues returns an error if a value was given that the packet type has no field for.
func (p *jsonPacket) checkValues() error {
	for k := range p.values {
		found := false
		for _, vk := range valueKeys[p.tp] {
			if k == vk {
				found = true
				break
			}
		}
		if !found {
			return errors.Errorf("%s has no %s", p.tp, k)
		}
	}
	return nil
}

// checkConnectFlag returns an error if any of the given values was given although the connect flag that
// announces it is not set.
func (p *jsonPacket) checkConnectFlag(set bool, keys ...string) error {
	if set {
		return nil
	}
	for _, k := range keys {
		if _, ok := p.values[k]; ok {
			return errors.Errorf("connectFlags %d does not announce %s", p.connFlags, k)
		}
	}
	return nil
}

// packet creates the packet that the collected values describe
func (p *jsonPacket) packet() (Packet, error) {
	if err := p.checkValues(); err != nil {
		return nil, err
	}
	h := FixedHeader(p.tp<<4) | FixedHeader(p.flags)
	switch p.tp {
	case TpConnect:
		f := p.connFlags
		for _, err := range []error{
			p.checkConnectFlag(f.Will(), "willTopic", "willMessage"),
			p.checkConnectFlag(f.Username(), "username"),
			p.checkConnectFlag(f.Password(), "password")} {
			if err != nil {
				return nil, err
			}
		}
		c := &Connect{
			header:     h,
			protoName:  ProtocolName,
			protoLevel: ProtocolLevel,
			flags:      p.connFlags,
			keepAlive:  p.keepAlive,
			clientID:   p.values["clientId"]}
		if p.hasProto {
			c.protoName = p.protoName
		}
		if p.hasLevel {
			c.protoLevel = p.protoLevel
		}
		if c.flags.Will() {
			c.willTopic = p.values["willTopic"]
			c.willMessage = p.values["willMessage"]
		}
		if c.flags.Username() {
			c.userName = p.values["username"]
		}
		if c.flags.Password() {
			c.password = p.values["password"]
		}
		return c, nil
	case TpConnAck:
		return &ConnAck{header: h, ackFlags: p.ackFlags, returnCode: p.returnCode}, nil
	case TpPublish:
		if h.QoS() > ExactlyOnce {
			return nil, errors.Wrap(mqtt.ErrMalformedPacket, "publish QoS 3")
		}
		pp := &Publish{header: h, topic: p.values["topic"], payload: p.values["payload"]}
		if h.QoS() > AtMostOnce {
			pp.id = p.id
		}
		return pp, nil
	case TpSubscribe:
		return &Subscribe{header: h, id: p.id, topics: p.topics}, nil
	case TpSubAck:
		return &SubAck{header: h, id: p.id, returnCodes: p.returnCodes}, nil
	case TpUnsubscribe:
		fs := make([][]byte, len(p.topics))
		for i := range p.topics {
			fs[i] = p.topics[i].Filter
		}
		return &Unsubscribe{header: h, id: p.id, filters: fs}, nil
	case TpPubAck, TpPubRec, TpPubRel, TpPubComp, TpUnsubAck:
		return &Ack{header: h, id: p.id}, nil
	case TpPingReq, TpPingResp, TpDisconnect:
		return HeaderOnly(h), nil
	default:
		return nil, errors.Wrap(mqtt.ErrUnsupportedPacketType, "packet has no type")
	}
}

// UnmarshalPacket creates a packet from its JSON form.
func UnmarshalPacket(bs []byte) (Packet, error) {
	jp := &jsonPacket{}
	if err := jsonstream.Unmarshal(jp, bs); err != nil {
		return nil, err
	}
	return jp.packet()
}

// ReadPackets reads a stream of JSON packet objects from the given reader and calls fn with each packet.
// The objects may be separated by white space or enclosed in JSON arrays. Reading stops at the end of
// the stream or when an error occurs. An error returned from fn is returned verbatim.
func ReadPackets(r io.Reader, fn func(Packet) error) error {
	js := json.NewDecoder(r)
	for {
		var raw json.RawMessage
		if err := js.Decode(&raw); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		objs := []json.RawMessage{raw}
		if bytes.HasPrefix(bytes.TrimSpace(raw), []byte{'['}) {
			objs = nil
			if err := json.Unmarshal(raw, &objs); err != nil {
				return err
			}
		}
		for _, obj := range objs {
			p, err := UnmarshalPacket(obj)
			if err == nil {
				err = fn(p)
			}
			if err != nil {
				return err
			}
		}
	}
}
