// Package dispatch holds the small interfaces that faces and the
// forwarding core share, so that face/ and fw/ can each depend on
// dispatch/ without depending on each other (the teacher's
// dispatch/face.go solves the same circular-dependency problem).
package dispatch

// Face is the contract the forwarding core consumes from a face
// transport (spec §6): a stable identity, a non-blocking send, a
// leaky-bucket admission hint, and up/down lifecycle signals.
type Face interface {
	ID() uint64

	// Send enqueues packet (an *ndn.Interest or *ndn.ContentObject)
	// for transmission. It never blocks; the bool reports whether the
	// packet was accepted for send.
	Send(packet interface{}) bool

	// IsBelowLimit reports whether the leaky bucket has room for one
	// more Interest. Faces without admission control always return
	// true.
	IsBelowLimit() bool

	SetBucketMax(max float64)
	SetBucketLeak(leak float64)

	Up()
	Down()
}

// Dispatcher receives packets from face transports and feeds them
// into the node's single-threaded event loop (spec §5). A face
// implementation never calls the forwarding strategy directly; it
// only ever reaches the core through this interface.
type Dispatcher interface {
	QueueInterest(face Face, interest interface{})
	QueueData(face Face, data interface{})
}
