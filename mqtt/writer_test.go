package mqtt

import (
	"strings"
	"testing"

	"github.com/tada/mqtt-codec/testutils"
)

func TestWriteVarInt(t *testing.T) {
	ints := []int{
		0, 1, 127, 128, 16383, 16384, 2097151, 2097152, 268435455,
	}
	lens := []int{
		1, 1, 1, 2, 2, 3, 3, 4, 4,
	}
	w := NewWriter()
	defer w.Free()
	tl := 0
	for i, v := range ints {
		testutils.CheckNotError(w.WriteVarInt(v), t)
		tl += lens[i]
		if tl != w.Len() {
			t.Fatalf("expected len %d, got %d", tl, w.Len())
		}
		testutils.CheckEqual(lens[i], RemainingLengthSize(v), t)
	}

	r := NewReader(w.Bytes())
	for _, v := range ints {
		x, err := r.ReadVarInt()
		testutils.CheckNotError(err, t)
		if v != x {
			t.Fatalf("expected %d, got %d", v, x)
		}
	}
}

func TestWriteVarInt_overflow(t *testing.T) {
	w := NewWriter()
	defer w.Free()
	testutils.CheckErrorIs(ErrEncodingOverflow, w.WriteVarInt(MaxRemainingLength+1), t)
	testutils.CheckErrorIs(ErrEncodingOverflow, w.WriteVarInt(-1), t)
	testutils.CheckEqual(0, w.Len(), t)
}

func TestWriter_WriteString(t *testing.T) {
	w := NewWriter()
	defer w.Free()
	testutils.CheckNotError(w.WriteString("MQTT"), t)
	testutils.CheckNotError(w.WriteBytes([]byte{1, 2}), t)
	w.WriteU16(0x0a0b)
	w.WriteRaw([]byte{9})
	testutils.CheckEqual([]byte{0, 4, 'M', 'Q', 'T', 'T', 0, 2, 1, 2, 0x0a, 0x0b, 9}, w.Bytes(), t)

	testutils.CheckErrorIs(ErrEncodingOverflow, w.WriteString(strings.Repeat("x", 65536)), t)
	testutils.CheckErrorIs(ErrEncodingOverflow, w.WriteBytes(make([]byte, 65536)), t)
}
