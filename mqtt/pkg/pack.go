package pkg

import (
	"github.com/tada/mqtt-codec/mqtt"
)

// Pack returns the wire form of the given packet in a newly allocated slice.
func Pack(p Packet) ([]byte, error) {
	w := mqtt.NewWriter()
	defer w.Free()
	if err := p.Write(w); err != nil {
		return nil, err
	}
	bs := make([]byte, w.Len())
	copy(bs, w.Bytes())
	return bs, nil
}
