package mqtt

import (
	"io"
	"strings"
)

const (
	dot   = rune('.')
	slash = rune('/')
)

// ToNATS converts an MQTT topic to a NATS subject. The following conversions take place
//
// dots become slashes
// slashes become dots
func ToNATS(mqttTopic string) string {
	r := strings.NewReader(mqttTopic)
	w := strings.Builder{}
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			return w.String()
		}
		switch c {
		case dot:
			c = slash
		case slash:
			c = dot
		}
		_, _ = w.WriteRune(c)
	}
}

// NATSSubject converts the given MQTT topic into NATS subject tokens. The second return value is false
// when the result would not be a valid literal subject, i.e. when the topic is empty, has empty levels,
// contains whitespace, or contains characters that NATS treats as wildcards.
func NATSSubject(mqttTopic string) (string, bool) {
	if mqttTopic == "" {
		return "", false
	}
	s := ToNATS(mqttTopic)
	for _, tk := range strings.Split(s, ".") {
		if tk == "" || tk == "*" || tk == ">" {
			return "", false
		}
		if strings.ContainsAny(tk, " \t\r\n") {
			return "", false
		}
	}
	return s, true
}
