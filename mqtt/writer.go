package mqtt

import (
	"math"

	"github.com/valyala/bytebufferpool"
)

// Writer serializes MQTT fields onto a pooled buffer. A Writer must be obtained from NewWriter and
// handed back with Free once its bytes have been consumed.
type Writer struct {
	*bytebufferpool.ByteBuffer
}

// NewWriter returns a Writer backed by a buffer from the shared pool.
func NewWriter() *Writer {
	return &Writer{bytebufferpool.Get()}
}

// Free returns the buffer to the pool. Bytes obtained from the Writer must not be used afterwards.
func (w *Writer) Free() {
	if w.ByteBuffer != nil {
		bytebufferpool.Put(w.ByteBuffer)
		w.ByteBuffer = nil
	}
}

func (w *Writer) WriteU8(i uint8) {
	_ = w.WriteByte(i)
}

func (w *Writer) WriteU16(i uint16) {
	w.WriteU8(byte(i >> 8))
	w.WriteU8(byte(i))
}

// WriteString writes s prefixed with its length as a big endian uint16.
func (w *Writer) WriteString(s string) error {
	if len(s) > math.MaxUint16 {
		return ErrEncodingOverflow
	}
	w.WriteU16(uint16(len(s)))
	w.B = append(w.B, s...)
	return nil
}

// WriteBytes writes bs prefixed with its length as a big endian uint16.
func (w *Writer) WriteBytes(bs []byte) error {
	if len(bs) > math.MaxUint16 {
		return ErrEncodingOverflow
	}
	w.WriteU16(uint16(len(bs)))
	w.WriteRaw(bs)
	return nil
}

// WriteRaw writes bs without any length prefix.
func (w *Writer) WriteRaw(bs []byte) {
	w.B = append(w.B, bs...)
}

// WriteVarInt writes value as a Remaining Length.
func (w *Writer) WriteVarInt(value int) error {
	if value < 0 {
		return ErrEncodingOverflow
	}
	var err error
	w.B, err = AppendRemainingLength(w.B, uint64(value))
	return err
}
