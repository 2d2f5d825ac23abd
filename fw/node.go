package fw

import (
	"time"

	"github.com/ndn-forwarder/kernel/core"
	"github.com/ndn-forwarder/kernel/dispatch"
	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/table"
)

type interestArrival struct {
	face     dispatch.Face
	interest *ndn.Interest
}

type dataArrival struct {
	face dispatch.Face
	data *ndn.ContentObject
}

// Node is the single-threaded cooperative dispatch loop that owns the
// FIB, PIT, CS and the installed Strategy (spec §5): every packet
// arrival and every PIT expiry fire is processed to completion before
// the next is picked up, so table invariants are protected by the
// absence of interleaving rather than by locks. Grounded on the
// teacher's fw/thread.go, collapsed from N sharded forwarding threads
// down to the single thread spec §5 requires.
type Node struct {
	Fib *table.Fib
	Pit *table.Pit
	Cs  *table.Cs

	strategy Strategy

	// CacheUnsolicitedData and DetectRetransmissions are the two
	// configuration options spec §4.5 names explicitly.
	CacheUnsolicitedData  bool
	DetectRetransmissions bool

	interests chan interestArrival
	datas     chan dataArrival
	quit      chan struct{}
	running   bool
}

// NewNode constructs a Node around the given tables and strategy.
func NewNode(fib *table.Fib, pit *table.Pit, cs *table.Cs, strategy Strategy, queueSize int) *Node {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Node{
		Fib:                   fib,
		Pit:                   pit,
		Cs:                    cs,
		strategy:              strategy,
		DetectRetransmissions: true,
		interests:             make(chan interestArrival, queueSize),
		datas:                 make(chan dataArrival, queueSize),
		quit:                  make(chan struct{}),
	}
}

// QueueInterest implements dispatch.Dispatcher: a face hands an
// arriving Interest to the node's serial loop instead of calling the
// strategy directly.
func (n *Node) QueueInterest(face dispatch.Face, interest interface{}) {
	n.interests <- interestArrival{face: face, interest: interest.(*ndn.Interest)}
}

// QueueData implements dispatch.Dispatcher for Content Object arrivals.
func (n *Node) QueueData(face dispatch.Face, data interface{}) {
	n.datas <- dataArrival{face: face, data: data.(*ndn.ContentObject)}
}

// Run is the node's event loop. It returns when Stop is called.
// Calling Run on a Node that is already running is the one condition
// spec §7 marks as installer-level fatal (ErrAlreadyInstalled), not a
// per-packet disposition: this kernel's single-threaded invariant
// depends on exactly one goroutine ever owning the tables.
func (n *Node) Run() error {
	if n.running {
		return core.ErrAlreadyInstalled
	}
	n.running = true
	defer func() { n.running = false }()

	for {
		select {
		case a := <-n.interests:
			n.OnInterest(a.face, a.interest)
		case a := <-n.datas:
			n.OnData(a.face, a.data)
		case <-n.Pit.Expired():
			n.Pit.RemoveExpired(time.Now(), func(entry *table.PitEntry) {
				n.strategy.WillErasePendingInterest(n, entry)
			})
		case <-n.quit:
			return nil
		}
	}
}

// Stop ends Run at its next loop iteration.
func (n *Node) Stop() { close(n.quit) }

// OnInterest implements spec §4.5's Interest-arrival state machine.
func (n *Node) OnInterest(faceIn dispatch.Face, interest *ndn.Interest) {
	now := time.Now()
	core.LogTrace(core.TraceInInterests, interest.Name.String(), "from", faceIn.ID())

	pitEntry := n.Pit.Lookup(interest.Name)
	if pitEntry == nil {
		pitEntry = n.Pit.Create(n.Fib, interest, now)
		if pitEntry == nil {
			core.LogTrace(core.TraceDropInterests, interest.Name.String(), "no FIB route or PIT full")
			return
		}
		n.strategy.DidCreatePitEntry(n, faceIn, interest, pitEntry)
	}

	// Retransmission detection: face_in ∈ pit.incoming at entry time,
	// i.e. before this arrival's own mutations (spec §4.5).
	_, isRetransmission := pitEntry.Incoming[faceIn.ID()]

	if _, seen := pitEntry.NoncesSeen[interest.Nonce]; seen {
		n.strategy.DidReceiveDuplicateInterest(n, faceIn, interest, pitEntry)
		core.LogTrace(core.TraceDropInterests, interest.Name.String(), "duplicate nonce")
		return
	}
	pitEntry.NoncesSeen[interest.Nonce] = struct{}{}

	if data := n.Cs.Lookup(interest.Name, now, false); data != nil {
		pitEntry.Incoming[faceIn.ID()] = faceIn
		n.strategy.AfterContentStoreHit(n, faceIn, interest, data)
		n.Pit.MarkErased(pitEntry)
		return
	}

	wasPending := len(pitEntry.Incoming) > 0 || len(pitEntry.Outgoing) > 0
	_, inOutgoing := pitEntry.Outgoing[faceIn.ID()]
	if wasPending && !isRetransmission && !inOutgoing {
		pitEntry.Incoming[faceIn.ID()] = faceIn
		n.Pit.UpdateLifetime(pitEntry, now, interest.Lifetime)
		core.LogTrace(core.TraceDropInterests, interest.Name.String(), "suppressed")
		return
	}

	pitEntry.Incoming[faceIn.ID()] = faceIn
	n.Pit.UpdateLifetime(pitEntry, now, interest.Lifetime)

	sent := n.strategy.DoPropagateInterest(n, faceIn, interest, pitEntry)
	if !sent && isRetransmission && n.DetectRetransmissions {
		pitEntry.MaxRetxAllowed++
		sent = n.strategy.DoPropagateInterest(n, faceIn, interest, pitEntry)
	}
	if !sent && len(pitEntry.Outgoing) == 0 {
		n.strategy.DidExhaustForwardingOptions(n, faceIn, interest, pitEntry)
	}
}

// OnData implements spec §4.5's Content Object-arrival state machine.
func (n *Node) OnData(faceIn dispatch.Face, data *ndn.ContentObject) {
	core.LogTrace(core.TraceInData, data.Name.String(), "from", faceIn.ID())
	now := time.Now()

	pitEntry := n.Pit.LookupByData(data.Name)
	if pitEntry == nil {
		if n.CacheUnsolicitedData {
			n.Cs.Add(data, now, 0)
		} else {
			core.LogTrace(core.TraceDropData, data.Name.String(), "unsolicited")
		}
		return
	}

	n.Cs.Add(data, now, 0)

	for pitEntry != nil {
		if rec, ok := pitEntry.Outgoing[faceIn.ID()]; ok && pitEntry.FibEntry != nil {
			sample := now.Sub(rec.SendTime)
			n.Fib.UpdateFaceRtt(pitEntry.FibEntry, faceIn.ID(), sample)
			n.Fib.UpdateStatus(pitEntry.FibEntry, faceIn.ID(), table.StatusGreen)
		}

		n.strategy.AfterReceiveData(n, pitEntry, faceIn, data)
		n.satisfy(pitEntry, data)

		pitEntry = n.Pit.LookupByData(data.Name)
	}
}

// WillSendOutInterest is the admission check spec §4.5.4 runs before
// sending on a candidate outgoing face.
func (n *Node) WillSendOutInterest(faceOut dispatch.Face, interest *ndn.Interest, pitEntry *table.PitEntry) bool {
	if rec, ok := pitEntry.Outgoing[faceOut.ID()]; ok && rec.RetxCount >= pitEntry.MaxRetxAllowed {
		return false
	}
	if !faceOut.IsBelowLimit() {
		return false
	}

	now := time.Now()
	if rec, ok := pitEntry.Outgoing[faceOut.ID()]; ok {
		rec.SendTime = now
		rec.RetxCount++
	} else {
		pitEntry.Outgoing[faceOut.ID()] = &table.OutgoingRecord{Face: faceOut, SendTime: now}
	}
	return true
}

// satisfy implements spec §4.5.3 SatisfyPendingInterest: send to
// every incoming face, clear both sets, and erase the PIT entry.
func (n *Node) satisfy(pitEntry *table.PitEntry, data *ndn.ContentObject) {
	n.strategy.BeforeSatisfyInterest(n, pitEntry, data)

	for _, f := range pitEntry.Incoming {
		if f.Send(data) {
			core.LogTrace(core.TraceOutData, data.Name.String(), "to", f.ID())
		} else {
			core.LogTrace(core.TraceDropData, data.Name.String(), "to", f.ID())
		}
	}

	pitEntry.Incoming = map[uint64]dispatch.Face{}
	pitEntry.Outgoing = map[uint64]*table.OutgoingRecord{}
	n.Pit.MarkErased(pitEntry)
}
