package mqtt

import (
	"encoding/binary"
)

// Reader is a cursor over a byte slice. Every read is checked against the end of the slice and a
// read that would cross it fails with the overrun error of the Reader, leaving the cursor where it
// was.
type Reader struct {
	buf     []byte
	off     int
	overrun error
}

// NewReader returns a Reader positioned at the start of buf. Reads past the end of buf yield
// ErrTruncatedPacket.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf, overrun: ErrTruncatedPacket}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) ReadByte() (byte, error) {
	if r.Len() < 1 {
		return 0, r.overrun
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

// ReadUint16 reads a big endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.Len() < 2 {
		return 0, r.overrun
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

// ReadVarInt reads a Remaining Length. Running out of bytes in the middle of it is always reported
// as ErrTruncatedPacket since the integer precedes the bytes it describes.
func (r *Reader) ReadVarInt() (int, error) {
	v, n, err := DecodeRemainingLength(r.buf[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += n
	return int(v), nil
}

// ReadExact returns a newly allocated slice holding the next n bytes.
func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, r.overrun
	}
	bs := make([]byte, n)
	copy(bs, r.buf[r.off:])
	r.off += n
	return bs, nil
}

// ReadBytes reads a big endian uint16 that denotes the number of bytes that will follow. It then reads
// those bytes and returns them in a newly allocated slice that is owned by the caller. The length of
// the returned slice is the length read from the stream. The cursor is not moved when an error occurs.
func (r *Reader) ReadBytes() ([]byte, error) {
	start := r.off
	l, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	bs, err := r.ReadExact(int(l))
	if err != nil {
		r.off = start
		return nil, err
	}
	return bs, nil
}

// Skip advances the cursor n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.Len() < n {
		return r.overrun
	}
	r.off += n
	return nil
}

// ReadRemainingBytes returns all unread bytes in a newly allocated slice.
func (r *Reader) ReadRemainingBytes() ([]byte, error) {
	return r.ReadExact(r.Len())
}

// ReadPacket carves the next pkLen bytes into a Reader of their own and advances this Reader past
// them. ErrTruncatedPacket is returned if fewer than pkLen bytes remain. Reads that cross the end of
// the returned Reader fail with ErrMalformedPacket since they disagree with the declared length.
func (r *Reader) ReadPacket(pkLen int) (*Reader, error) {
	if pkLen < 0 || r.Len() < pkLen {
		return nil, ErrTruncatedPacket
	}
	pr := &Reader{buf: r.buf[r.off : r.off+pkLen : r.off+pkLen], overrun: ErrMalformedPacket}
	r.off += pkLen
	return pr, nil
}
