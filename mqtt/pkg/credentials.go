package pkg

import "bytes"

// Credentials are user credentials that originates from an MQTT CONNECT packet. A nil User or Password
// means that the corresponding connect flag is not set.
type Credentials struct {
	User     []byte
	Password []byte
}

// Equals returns true if this instance is equal to the given instance, false if not
func (c *Credentials) Equals(oc *Credentials) bool {
	if c == nil || oc == nil {
		return c == oc
	}
	return bytes.Equal(c.User, oc.User) && bytes.Equal(c.Password, oc.Password) &&
		(c.User == nil) == (oc.User == nil) && (c.Password == nil) == (oc.Password == nil)
}
