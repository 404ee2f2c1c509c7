package mqtt

import "github.com/pkg/errors"

// Error kinds produced by the codec. Errors returned from this module and from the pkg package
// wrap one of these, so callers should test with errors.Is.
var (
	// ErrMalformedLength is returned when a Remaining Length uses more than four bytes.
	ErrMalformedLength = errors.New("malformed remaining length")

	// ErrEncodingOverflow is returned when a value is too large for its wire encoding. That is a Remaining
	// Length of 2^28 or more, or a length prefixed field of more than 65535 bytes.
	ErrEncodingOverflow = errors.New("encoding overflow")

	// ErrTruncatedPacket is returned when the input holds fewer bytes than the frame declares. More bytes
	// may still arrive.
	ErrTruncatedPacket = errors.New("truncated packet")

	// ErrMalformedPacket is returned when the fields of a frame do not add up to its declared length or
	// when a field holds a value that is not permitted.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrUnsupportedPacketType is returned for reserved type values and for types that have no decoder.
	ErrUnsupportedPacketType = errors.New("unsupported packet type")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrMalformedLength, "MalformedLength"},
	{ErrEncodingOverflow, "EncodingOverflow"},
	{ErrTruncatedPacket, "TruncatedPacket"},
	{ErrMalformedPacket, "MalformedPacket"},
	{ErrUnsupportedPacketType, "UnsupportedPacketType"},
}

// Kind returns the name of the error kind that err wraps, or an empty string when err is nil or
// not a codec error.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
