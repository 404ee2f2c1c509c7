package pkg_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tada/mqtt-codec/mqtt"
	"github.com/tada/mqtt-codec/mqtt/pkg"
)

var danzanConnect = []byte{
	0x10, 0x20,
	0x00, 0x04, 'M', 'Q', 'T', 'T',
	0x04,
	0xc2,
	0x00, 0x3c,
	0x00, 0x06, 'd', 'a', 'n', 'z', 'a', 'n',
	0x00, 0x05, 'h', 'e', 'l', 'l', 'o',
	0x00, 0x05, 'n', 'a', 'c', 'h', 'o',
}

func TestParseConnect(t *testing.T) {
	c1 := pkg.NewConnect([]byte(`cid`), true, 5, &pkg.Will{
		Topic:   []byte("my/will"),
		Message: []byte("the will"),
		QoS:     pkg.AtLeastOnce,
		Retain:  false,
	}, &pkg.Credentials{User: []byte("bob"), Password: []byte("password")})
	writeReadAndCompare(t, c1, "CONNECT ('cid', c1, k5, u1, p1, w(r0, q1, 'my/will', ... (8 bytes)))")
}

func TestParseConnect_minimal(t *testing.T) {
	writeReadAndCompare(t, pkg.NewConnect([]byte(`cid`), false, 0, nil, nil), "CONNECT ('cid', c0, k0, u0, p0)")
}

func TestParseConnect_binaryWill(t *testing.T) {
	c1 := pkg.NewConnect(nil, true, 30, &pkg.Will{
		Topic:   []byte("my/will"),
		Message: []byte{0, 1, 2, 0xff},
		QoS:     pkg.ExactlyOnce,
		Retain:  true,
	}, &pkg.Credentials{Password: []byte{0xfe, 0}})
	writeReadAndCompare(t, c1, "CONNECT ('', c1, k30, u0, p1, w(r1, q2, 'my/will', ... (4 bytes)))")
}

func TestUnpackConnect(t *testing.T) {
	p, n, err := pkg.Unpack(danzanConnect)
	require.NoError(t, err)
	require.Equal(t, 0x20, n)
	require.Equal(t, len(danzanConnect), pkg.FrameLen(n))

	c, ok := p.(*pkg.Connect)
	require.True(t, ok)
	require.Equal(t, pkg.TpConnect, c.Type())
	require.Equal(t, "MQTT", c.ProtocolName())
	require.Equal(t, byte(4), c.ProtocolLevel())
	require.Equal(t, []byte("danzan"), c.ClientID())
	require.Equal(t, uint16(60), c.KeepAlive())
	require.True(t, c.CleanSession())
	require.False(t, c.Flags().Reserved())
	require.Nil(t, c.Will())
	require.Equal(t, &pkg.Credentials{User: []byte("hello"), Password: []byte("nacho")}, c.Credentials())

	bs, err := pkg.Pack(pkg.NewConnect([]byte("danzan"), true, 60, nil,
		&pkg.Credentials{User: []byte("hello"), Password: []byte("nacho")}))
	require.NoError(t, err)
	require.Equal(t, danzanConnect, bs)
	checkTruncated(t, pkg.Decoder{}, danzanConnect)
}

func TestUnpackConnect_protocolNotValidated(t *testing.T) {
	bs := []byte{0x10, 0x0e, 0x00, 0x06, 'M', 'Q', 'I', 's', 'd', 'p', 0x03, 0x00, 0x00, 0x0a, 0x00, 0x00}
	p, n, err := pkg.Unpack(bs)
	require.NoError(t, err)
	require.Equal(t, 14, n)
	c := p.(*pkg.Connect)
	require.Equal(t, "MQIsdp", c.ProtocolName())
	require.Equal(t, byte(3), c.ProtocolLevel())
	require.Equal(t, uint16(10), c.KeepAlive())
	require.Empty(t, c.ClientID())

	bs2, err := pkg.Pack(c)
	require.NoError(t, err)
	require.Equal(t, bs, bs2)
}

func TestUnpackConnect_longRemainingLength(t *testing.T) {
	cid := bytes.Repeat([]byte{'x'}, 300)
	c1 := pkg.NewConnect(cid, true, 60, nil, &pkg.Credentials{User: []byte("hello")})
	bs, err := pkg.Pack(c1)
	require.NoError(t, err)
	require.Equal(t, byte(0x80), bs[1]&0x80)

	p, n, err := pkg.Unpack(bs)
	require.NoError(t, err)
	require.Equal(t, len(bs), pkg.FrameLen(n))
	require.True(t, c1.Equals(p))
	require.Equal(t, cid, p.(*pkg.Connect).ClientID())
}

func TestUnpackConnect_trailingBytes(t *testing.T) {
	bs := append([]byte{}, danzanConnect...)
	bs[1]++
	bs = append(bs, 0)
	requireKind(t, mqtt.ErrMalformedPacket, bs)
}

func TestUnpackConnect_missingPassword(t *testing.T) {
	// password flag is set but the frame ends after the user name
	bs := append([]byte{}, danzanConnect[:len(danzanConnect)-7]...)
	bs[1] -= 7
	requireKind(t, mqtt.ErrMalformedPacket, bs)
}

func TestUnpackConnect_fieldCrossesLength(t *testing.T) {
	bs := append([]byte{}, danzanConnect...)
	bs[1] -= 2
	requireKind(t, mqtt.ErrMalformedPacket, bs[:len(bs)-2])
}

func TestConnect_Equals(t *testing.T) {
	c1 := pkg.NewConnect([]byte(`cid`), true, 5, nil, nil)
	require.True(t, c1.Equals(pkg.NewConnect([]byte(`cid`), true, 5, nil, nil)))
	require.False(t, c1.Equals(pkg.NewConnect([]byte(`cid`), false, 5, nil, nil)))
	require.False(t, c1.Equals(pkg.NewConnect([]byte(`cid`), true, 6, nil, nil)))
	require.False(t, c1.Equals(pkg.NewConnect([]byte(`cie`), true, 5, nil, nil)))
	require.False(t, c1.Equals(pkg.PingRequestSingleton))
}

func TestConnect_Release(t *testing.T) {
	p, _, err := pkg.Unpack(danzanConnect)
	require.NoError(t, err)
	p.Release()
	p.Release()
	c := p.(*pkg.Connect)
	require.Nil(t, c.ClientID())
	require.Nil(t, c.Credentials().User)
	_, err = pkg.Pack(p)
	require.Equal(t, pkg.ErrReleased, err)
}

func TestParseConnAck(t *testing.T) {
	writeReadAndCompare(t, pkg.NewConnAck(false, pkg.RtAccepted), "CONNACK (s0, rt0)")
	writeReadAndCompare(t, pkg.NewConnAck(true, pkg.RtNotAuthorized), "CONNACK (s1, rt5)")
}

func TestUnpackConnAck(t *testing.T) {
	bs := []byte{0x20, 0x02, 0x01, 0x04}
	requireKind(t, mqtt.ErrUnsupportedPacketType, bs)

	p, n, err := pkg.Decoder{Role: pkg.ClientRole}.Unpack(bs)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	ca := p.(*pkg.ConnAck)
	require.True(t, ca.SessionPresent())
	require.Equal(t, pkg.RtBadUserNameOrPassword, ca.ReturnCode())
	require.EqualError(t, ca.ReturnCode(), "bad user name or password")

	requireRoleKind(t, pkg.ClientRole, mqtt.ErrMalformedPacket, []byte{0x20, 0x03, 0x00, 0x00, 0x00})
}

func TestReturnCode_Error(t *testing.T) {
	require.Equal(t, "accepted", pkg.RtAccepted.Error())
	require.Equal(t, "unacceptable protocol version", pkg.RtUnacceptableProtocolVersion.Error())
	require.Equal(t, "identifier rejected", pkg.RtIdentifierRejected.Error())
	require.Equal(t, "server unavailable", pkg.RtServerUnavailable.Error())
	require.Equal(t, "not authorized", pkg.RtNotAuthorized.Error())
	require.Equal(t, "unknown error", pkg.ReturnCode(6).Error())
}
