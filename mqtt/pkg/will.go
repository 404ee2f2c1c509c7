package pkg

import (
	"bytes"
	"fmt"
)

// Will is the optional client will in the MQTT connect packet
type Will struct {
	Topic   []byte
	Message []byte
	QoS     QoS
	Retain  bool
}

// Equals returns true if this instance is equal to the given instance, false if not
func (w *Will) Equals(ow *Will) bool {
	if w == nil || ow == nil {
		return w == ow
	}
	return w.Retain == ow.Retain && w.QoS == ow.QoS && bytes.Equal(w.Topic, ow.Topic) && bytes.Equal(w.Message, ow.Message)
}

// String returns a brief string representation of the will. Suitable for logging
func (w *Will) String() string {
	return fmt.Sprintf("w(r%d, q%d, '%s', ... (%d bytes))", boolBit(w.Retain), w.QoS, w.Topic, len(w.Message))
}
