package pkg_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/tada/jsonstream"

	"github.com/tada/mqtt-codec/mqtt"
	"github.com/tada/mqtt-codec/mqtt/pkg"
)

// writeReadAndCompare packs the given packet, unpacks the result and asserts that the two packets are
// equal. It then asserts that the packet survives a JSON round trip and that its string form is ex.
func writeReadAndCompare(t *testing.T, p pkg.Packet, ex string) {
	t.Helper()
	bs, err := pkg.Pack(p)
	require.NoError(t, err)

	d := pkg.Decoder{Role: pkg.ClientRole}
	p2, n, err := d.Unpack(bs)
	require.NoError(t, err)
	require.Equal(t, len(bs), pkg.FrameLen(n))
	require.Truef(t, p.Equals(p2), "%s != %s", p, p2)

	bs2, err := pkg.Pack(p2)
	require.NoError(t, err)
	require.Equal(t, bs, bs2)
	require.Equal(t, ex, p.String())

	js, err := jsonstream.Marshal(p)
	require.NoError(t, err)
	p3, err := pkg.UnmarshalPacket(js)
	require.NoError(t, err)
	require.Truef(t, p.Equals(p3), "%s != %s (%s)", p, p3, js)

	checkTruncated(t, d, bs)
}

// checkTruncated asserts that every proper prefix of the given frame is reported as truncated.
func checkTruncated(t *testing.T, d pkg.Decoder, frame []byte) {
	t.Helper()
	for i := 0; i < len(frame); i++ {
		p, _, err := d.Unpack(frame[:i])
		require.Nilf(t, p, "prefix of %d bytes", i)
		require.Truef(t, errors.Is(err, mqtt.ErrTruncatedPacket), "prefix of %d bytes: %v", i, err)
	}
}

func requireKind(t *testing.T, kind error, bs []byte) {
	t.Helper()
	requireRoleKind(t, pkg.ServerRole, kind, bs)
}

func requireRoleKind(t *testing.T, role pkg.Role, kind error, bs []byte) {
	t.Helper()
	p, _, err := pkg.Decoder{Role: role}.Unpack(bs)
	require.Nil(t, p)
	require.Truef(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}
