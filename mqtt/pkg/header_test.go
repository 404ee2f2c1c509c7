package pkg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tada/mqtt-codec/mqtt"
	"github.com/tada/mqtt-codec/mqtt/pkg"
)

func TestFixedHeader(t *testing.T) {
	h := pkg.NewFixedHeader(pkg.TpPublish, true, pkg.ExactlyOnce, true)
	require.Equal(t, pkg.FixedHeader(0x3d), h)
	require.Equal(t, pkg.TpPublish, h.Type())
	require.True(t, h.Dup())
	require.True(t, h.Retain())
	require.Equal(t, pkg.ExactlyOnce, h.QoS())
	require.Equal(t, byte(0xd), h.Flags())

	h = pkg.NewFixedHeader(pkg.TpPublish, false, pkg.AtLeastOnce, false)
	require.Equal(t, pkg.FixedHeader(0x32), h)
	require.False(t, h.Dup())
	require.False(t, h.Retain())
	require.Equal(t, pkg.AtLeastOnce, h.QoS())
}

func TestPacketType(t *testing.T) {
	require.False(t, pkg.PacketType(0).Valid())
	require.False(t, pkg.PacketType(15).Valid())
	require.Equal(t, "RESERVED", pkg.PacketType(15).String())
	for tp := pkg.TpConnect; tp <= pkg.TpDisconnect; tp++ {
		require.True(t, tp.Valid())
		pt, ok := pkg.ParsePacketType(tp.String())
		require.True(t, ok)
		require.Equal(t, tp, pt)
	}
	require.Equal(t, "UNSUBACK", pkg.TpUnsubAck.String())
	_, ok := pkg.ParsePacketType("RESERVED")
	require.False(t, ok)
}

func TestPackHeader(t *testing.T) {
	w := mqtt.NewWriter()
	defer w.Free()
	require.NoError(t, pkg.PackHeader(w, pkg.FixedHeader(0x30), 321))
	require.Equal(t, []byte{0x30, 0xc1, 0x02}, w.Bytes())
	require.Error(t, pkg.PackHeader(w, pkg.FixedHeader(0x30), mqtt.MaxRemainingLength+1))
}

func TestFrameLen(t *testing.T) {
	require.Equal(t, 2, pkg.FrameLen(0))
	require.Equal(t, 129, pkg.FrameLen(127))
	require.Equal(t, 131, pkg.FrameLen(128))
	require.Equal(t, 1+4+mqtt.MaxRemainingLength, pkg.FrameLen(mqtt.MaxRemainingLength))
}
