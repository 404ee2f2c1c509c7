package pkg

import (
	"encoding/json"
	"io"
	"sort"
	"sync"

	"github.com/tada/catch/pio"
	"github.com/tada/jsonstream"
)

// An IDManager manages packet IDs and ensures their uniqueness by maintaining a list of
// IDs that are in use
type IDManager interface {
	jsonstream.Streamer
	jsonstream.Consumer

	// NextFreePacketID allocates and returns the next free packet ID
	NextFreePacketID() uint16

	// ReleasePacketID releases a previously allocated packet ID
	ReleasePacketID(uint16)
}

type idManager struct {
	lock     sync.Mutex
	inFlight map[uint16]bool
	nextFree uint16
}

// NewIDManager creates a new IDManager. The first ID that it allocates is 1.
func NewIDManager() IDManager {
	return &idManager{inFlight: make(map[uint16]bool, 37)}
}

func (s *idManager) NextFreePacketID() uint16 {
	s.lock.Lock()
	defer s.lock.Unlock()
	for {
		s.nextFree++
		// zero is not a valid ID so it is skipped when the counter flips over
		if s.nextFree != 0 && !s.inFlight[s.nextFree] {
			break
		}
	}
	s.inFlight[s.nextFree] = true
	return s.nextFree
}

func (s *idManager) ReleasePacketID(id uint16) {
	s.lock.Lock()
	delete(s.inFlight, id)
	s.lock.Unlock()
}

func (s *idManager) MarshalToJSON(w io.Writer) {
	// take a snapshot of things in flight
	s.lock.Lock()
	nf := s.nextFree
	inf := make([]int, 0, len(s.inFlight))
	for k := range s.inFlight {
		inf = append(inf, int(k))
	}
	s.lock.Unlock()
	sort.Ints(inf)

	pio.WriteString(`{"next":`, w)
	pio.WriteInt(int64(nf), w)
	if len(inf) > 0 {
		pio.WriteString(`,"inFlight":[`, w)
		for i := range inf {
			if i > 0 {
				pio.WriteByte(',', w)
			}
			pio.WriteInt(int64(inf[i]), w)
		}
		pio.WriteByte(']', w)
	}
	pio.WriteByte('}', w)
}

func (s *idManager) UnmarshalFromJSON(js jsonstream.Decoder, t json.Token) {
	inFlight := make(map[uint16]bool, 37)
	var nf uint16
	jsonstream.AssertDelim(t, '{')
	for {
		k, ok := js.ReadStringOrEnd('}')
		if !ok {
			break
		}
		switch k {
		case "next":
			nf = uint16(assertUint(js, 0xffff, k))
		case "inFlight":
			js.ReadDelim('[')
			for {
				i, ok := js.ReadIntOrEnd(']')
				if !ok {
					break
				}
				inFlight[uint16(i)] = true
			}
		}
	}
	s.lock.Lock()
	s.nextFree = nf
	s.inFlight = inFlight
	s.lock.Unlock()
}

// AssignID allocates an ID from the given IDManager to a PUBLISH with QoS > 0, a SUBSCRIBE, or an
// UNSUBSCRIBE packet that has the ID 0. It returns true if an ID was assigned.
func AssignID(p Packet, m IDManager) bool {
	if p.ID() != 0 {
		return false
	}
	switch p := p.(type) {
	case *Publish:
		if p.QoSLevel() > AtMostOnce {
			p.SetID(m.NextFreePacketID())
			return true
		}
	case *Subscribe:
		p.SetID(m.NextFreePacketID())
		return true
	case *Unsubscribe:
		p.SetID(m.NextFreePacketID())
		return true
	}
	return false
}
