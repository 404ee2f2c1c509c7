package pkg

import (
	"math"
	"testing"

	"github.com/tada/jsonstream"

	"github.com/tada/mqtt-codec/testutils"
)

func TestIdManager_NextFreePacketID_first(t *testing.T) {
	idm := NewIDManager()
	testutils.CheckEqual(uint16(1), idm.NextFreePacketID(), t)
	testutils.CheckEqual(uint16(2), idm.NextFreePacketID(), t)
	idm.ReleasePacketID(1)
	testutils.CheckEqual(uint16(3), idm.NextFreePacketID(), t)
}

func TestIdManager_NextFreePacketID_flip(t *testing.T) {
	idm := NewIDManager().(*idManager)
	idm.nextFree = math.MaxUint16 - 1
	testutils.CheckEqual(uint16(math.MaxUint16), idm.NextFreePacketID(), t)
	testutils.CheckEqual(uint16(1), idm.NextFreePacketID(), t)
}

func TestIdManager_NextFreePacketID_flipInFlight(t *testing.T) {
	idm := NewIDManager().(*idManager)
	idm.nextFree = math.MaxUint16 - 2
	idm.inFlight[uint16(math.MaxUint16)] = true
	testutils.CheckEqual(uint16(math.MaxUint16-1), idm.NextFreePacketID(), t)
	testutils.CheckEqual(uint16(1), idm.NextFreePacketID(), t)
}

func TestIdManager_NextFreePacketID_json(t *testing.T) {
	idm := NewIDManager().(*idManager)
	idm.nextFree = math.MaxUint16 - 3
	idm.inFlight[uint16(math.MaxUint16-1)] = true
	idm.inFlight[uint16(math.MaxUint16)] = true
	idm.inFlight[uint16(1)] = true
	bs, err := jsonstream.Marshal(idm)
	testutils.CheckNotError(err, t)
	testutils.CheckEqual(`{"next":65532,"inFlight":[1,65534,65535]}`, string(bs), t)
	idm = &idManager{}
	testutils.CheckNotError(jsonstream.Unmarshal(idm, bs), t)
	testutils.CheckEqual(uint16(math.MaxUint16-2), idm.NextFreePacketID(), t)
	testutils.CheckEqual(uint16(2), idm.NextFreePacketID(), t)
}

func TestAssignID(t *testing.T) {
	idm := NewIDManager()
	p0 := NewPublish(AtMostOnce, 0, []byte("a"), nil)
	testutils.CheckFalse(AssignID(p0, idm), t)
	testutils.CheckEqual(uint16(0), p0.ID(), t)

	p1 := NewPublish(AtLeastOnce, 0, []byte("a"), nil)
	testutils.CheckTrue(AssignID(p1, idm), t)
	testutils.CheckEqual(uint16(1), p1.ID(), t)

	s := NewSubscribe(0, Topic{Filter: []byte("a/#")})
	testutils.CheckTrue(AssignID(s, idm), t)
	testutils.CheckEqual(uint16(2), s.ID(), t)

	u := NewUnsubscribe(7, []byte("a/#"))
	testutils.CheckFalse(AssignID(u, idm), t)
	testutils.CheckEqual(uint16(7), u.ID(), t)

	testutils.CheckFalse(AssignID(PingRequestSingleton, idm), t)
}
