package pkg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tada/mqtt-codec/mqtt"
	"github.com/tada/mqtt-codec/mqtt/pkg"
)

func TestUnpack_empty(t *testing.T) {
	requireKind(t, mqtt.ErrTruncatedPacket, nil)
}

func TestUnpack_reservedTypes(t *testing.T) {
	for _, role := range []pkg.Role{pkg.ServerRole, pkg.ClientRole} {
		requireRoleKind(t, role, mqtt.ErrUnsupportedPacketType, []byte{0x00, 0x00})
		requireRoleKind(t, role, mqtt.ErrUnsupportedPacketType, []byte{0xf0, 0x00})
	}
}

func TestUnpack_serverRole(t *testing.T) {
	requireKind(t, mqtt.ErrUnsupportedPacketType, []byte{0x20, 0x02, 0x00, 0x00})
	requireKind(t, mqtt.ErrUnsupportedPacketType, []byte{0x90, 0x03, 0x00, 0x01, 0x00})
	require.Equal(t, "server", pkg.ServerRole.String())
	require.Equal(t, "client", pkg.ClientRole.String())
}

func TestUnpack_truncatedLength(t *testing.T) {
	requireKind(t, mqtt.ErrTruncatedPacket, []byte{0x30, 0x80})
}

func TestDecoder_Read(t *testing.T) {
	var stream []byte
	stream = append(stream, danzanConnect...)
	stream = append(stream, sensorPublish...)
	stream = append(stream, 0xc0, 0x00)
	stream = append(stream, twoTopicSubscribe...)
	stream = append(stream, 0xe0, 0x00)

	expected := []pkg.PacketType{pkg.TpConnect, pkg.TpPublish, pkg.TpPingReq, pkg.TpSubscribe, pkg.TpDisconnect}
	d := pkg.Decoder{}
	for _, tp := range expected {
		p, n, err := d.Unpack(stream)
		require.NoError(t, err)
		require.Equal(t, tp, p.Type())
		stream = stream[pkg.FrameLen(n):]
	}
	require.Empty(t, stream)
}

func TestDecoder_ReadReader(t *testing.T) {
	r := mqtt.NewReader(append(append([]byte{}, sensorPublish...), sensorPublish...))
	for i := 0; i < 2; i++ {
		p, _, err := pkg.Decoder{}.Read(r)
		require.NoError(t, err)
		require.Equal(t, pkg.TpPublish, p.Type())
	}
	require.Equal(t, 0, r.Len())
	_, _, err := pkg.Decoder{}.Read(r)
	require.ErrorIs(t, err, mqtt.ErrTruncatedPacket)
}

func TestPack_overflow(t *testing.T) {
	p := pkg.NewPublish(pkg.AtMostOnce, 0, make([]byte, 70000), nil)
	_, err := pkg.Pack(p)
	require.ErrorIs(t, err, mqtt.ErrEncodingOverflow)
}
