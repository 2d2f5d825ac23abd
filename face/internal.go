package face

import (
	"sync/atomic"

	"github.com/ndn-forwarder/kernel/core"
	"github.com/ndn-forwarder/kernel/dispatch"
)

var nextFaceID uint64

func allocFaceID() uint64 { return atomic.AddUint64(&nextFaceID, 1) }

// InternalFace is an in-process, channel-backed face for local
// producer/consumer harnesses and the cmd/ndnfwd demo — the one
// transport the teacher ships that never touches a socket. Grounded
// on face/null-transport.go, generalized from "drops everything" to
// "delivers everything to an in-process peer" since a null sink is of
// no use to a demo binary that needs to talk to the forwarder.
type InternalFace struct {
	LeakyBucket

	id     uint64
	peer   dispatch.Dispatcher
	up     bool
	onSend chan interface{}
}

// NewInternalFace returns a face whose outgoing packets are delivered
// to peer's dispatcher as if they had arrived over the wire, and
// whose SendToApp channel carries whatever the forwarder sends back.
func NewInternalFace(peer dispatch.Dispatcher) *InternalFace {
	return &InternalFace{
		LeakyBucket: *NewLeakyBucket(),
		id:          allocFaceID(),
		peer:        peer,
		up:          true,
		onSend:      make(chan interface{}, 64),
	}
}

func (f *InternalFace) ID() uint64 { return f.id }

// Send implements dispatch.Face: packets handed to the face by the
// forwarding core (i.e. sent toward the application) land on
// SendToApp rather than a socket.
func (f *InternalFace) Send(packet interface{}) bool {
	if !f.up {
		return false
	}
	select {
	case f.onSend <- packet:
		return true
	default:
		core.LogWarn(f, "SendToApp channel full - DROP")
		return false
	}
}

// SendToApp is the channel a local application reads its Data/Interest
// replies from.
func (f *InternalFace) SendToApp() <-chan interface{} { return f.onSend }

// PushInterest simulates an application-originated Interest arriving
// on this face.
func (f *InternalFace) PushInterest(interest interface{}) {
	f.peer.QueueInterest(f, interest)
}

// PushData simulates an application-originated Content Object arriving
// on this face.
func (f *InternalFace) PushData(data interface{}) {
	f.peer.QueueData(f, data)
}

func (f *InternalFace) Up()   { f.up = true }
func (f *InternalFace) Down() { f.up = false }

func (f *InternalFace) String() string { return "InternalFace" }
