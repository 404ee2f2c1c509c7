package pkg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tada/mqtt-codec/mqtt"
	"github.com/tada/mqtt-codec/mqtt/pkg"
)

func newAck(t *testing.T, tp pkg.PacketType, id uint16) *pkg.Ack {
	t.Helper()
	a, err := pkg.NewAck(tp, id)
	require.NoError(t, err)
	return a
}

func TestParsePubAck(t *testing.T) {
	writeReadAndCompare(t, newAck(t, pkg.TpPubAck, 23), "PUBACK (m23)")
}

func TestParsePubRec(t *testing.T) {
	writeReadAndCompare(t, newAck(t, pkg.TpPubRec, 23), "PUBREC (m23)")
}

func TestParsePubRel(t *testing.T) {
	a := newAck(t, pkg.TpPubRel, 23)
	require.Equal(t, pkg.FixedHeader(0x62), a.Header())
	writeReadAndCompare(t, a, "PUBREL (m23)")
}

func TestParsePubComp(t *testing.T) {
	writeReadAndCompare(t, newAck(t, pkg.TpPubComp, 23), "PUBCOMP (m23)")
}

func TestNewAck_notAnAck(t *testing.T) {
	for _, tp := range []pkg.PacketType{0, pkg.TpConnect, pkg.TpPublish, pkg.TpSubAck, pkg.TpPingReq, 15} {
		a, err := pkg.NewAck(tp, 1)
		require.Nil(t, a)
		require.ErrorIs(t, err, mqtt.ErrUnsupportedPacketType)
	}
}

func TestUnpackAck_badLength(t *testing.T) {
	requireKind(t, mqtt.ErrMalformedPacket, []byte{0x40, 0x03, 0x00, 0x01, 0x02})
	requireKind(t, mqtt.ErrMalformedPacket, []byte{0x50, 0x01, 0x00})
	requireKind(t, mqtt.ErrMalformedPacket, []byte{0x70, 0x00})
}

func TestUnpackAck_truncated(t *testing.T) {
	requireKind(t, mqtt.ErrTruncatedPacket, []byte{0x40, 0x02, 0x00})
}

func TestAck_Equals(t *testing.T) {
	a := newAck(t, pkg.TpPubAck, 1)
	require.True(t, a.Equals(newAck(t, pkg.TpPubAck, 1)))
	require.False(t, a.Equals(newAck(t, pkg.TpPubAck, 2)))
	require.False(t, a.Equals(newAck(t, pkg.TpPubRec, 1)))
	a.Release()
	require.Equal(t, uint16(1), a.ID())
}
