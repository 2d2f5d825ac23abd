package fw

import (
	"github.com/ndn-forwarder/kernel/core"
	"github.com/ndn-forwarder/kernel/dispatch"
	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/table"
)

// Strategy is a forwarding strategy (spec §4.5, §9): one hot operation,
// DoPropagateInterest, plus a small set of hooks. The source's deep
// chain (Strategy ← Nacks ← Flooding ← …) collapses into this one
// interface; variants are tagged values embedding Base, not a
// subclass hierarchy.
type Strategy interface {
	Name() string

	// DoPropagateInterest sends interest out one or more faces chosen
	// by the variant's face-selection policy (spec §4.7). Returns
	// true iff at least one face passed WillSendOutInterest and was
	// handed the Interest, whether or not that face's Send accepted it.
	DoPropagateInterest(node *Node, faceIn dispatch.Face, interest *ndn.Interest, pitEntry *table.PitEntry) bool

	DidCreatePitEntry(node *Node, faceIn dispatch.Face, interest *ndn.Interest, pitEntry *table.PitEntry)
	DidReceiveDuplicateInterest(node *Node, faceIn dispatch.Face, interest *ndn.Interest, pitEntry *table.PitEntry)
	DidExhaustForwardingOptions(node *Node, faceIn dispatch.Face, interest *ndn.Interest, pitEntry *table.PitEntry)
	DidSendOutInterest(node *Node, faceOut dispatch.Face, interest *ndn.Interest, pitEntry *table.PitEntry)
	WillErasePendingInterest(node *Node, pitEntry *table.PitEntry)
	AfterContentStoreHit(node *Node, faceIn dispatch.Face, interest *ndn.Interest, data *ndn.ContentObject)
	AfterReceiveData(node *Node, pitEntry *table.PitEntry, faceIn dispatch.Face, data *ndn.ContentObject)
	BeforeSatisfyInterest(node *Node, pitEntry *table.PitEntry, data *ndn.ContentObject)
}

// Base supplies the default behavior spec §4.5 describes for every
// hook, so a concrete variant only overrides what it needs to —
// grounded on the teacher's StrategyBase, embedded by value since Go
// has no class inheritance.
type Base struct{}

func (Base) DidCreatePitEntry(*Node, dispatch.Face, *ndn.Interest, *table.PitEntry) {}

// DidReceiveDuplicateInterest records the arriving face as pending
// (spec §4.5 step 3): a duplicate nonce still means "this face wants
// the answer too."
func (Base) DidReceiveDuplicateInterest(node *Node, faceIn dispatch.Face, interest *ndn.Interest, pitEntry *table.PitEntry) {
	pitEntry.Incoming[faceIn.ID()] = faceIn
}

func (Base) DidExhaustForwardingOptions(node *Node, faceIn dispatch.Face, interest *ndn.Interest, pitEntry *table.PitEntry) {
	core.LogTrace(core.TraceDropInterests, interest.Name.String(), "forwarding options exhausted")
}

func (Base) DidSendOutInterest(*Node, dispatch.Face, *ndn.Interest, *table.PitEntry) {}

func (Base) WillErasePendingInterest(*Node, *table.PitEntry) {}

// AfterContentStoreHit answers directly from the cache on the
// arriving face (spec §4.5 step 4).
func (Base) AfterContentStoreHit(node *Node, faceIn dispatch.Face, interest *ndn.Interest, data *ndn.ContentObject) {
	if faceIn.Send(data) {
		core.LogTrace(core.TraceOutData, data.Name.String(), "to", faceIn.ID(), "cs-hit")
	} else {
		core.LogTrace(core.TraceDropData, data.Name.String(), "to", faceIn.ID())
	}
}

func (Base) AfterReceiveData(node *Node, pitEntry *table.PitEntry, faceIn dispatch.Face, data *ndn.ContentObject) {
}

func (Base) BeforeSatisfyInterest(*Node, *table.PitEntry, *ndn.ContentObject) {}

// NewStrategy builds the named forwarding strategy variant from the
// "strategy" config option (spec §6). This replaces the teacher's
// plugin/reflection-based loader with a small enumerated factory, per
// spec §9's "Global registration / type-factory" design note.
func NewStrategy(name string) Strategy {
	switch name {
	case "", "flooding":
		return Flooding{}
	case "best-route":
		return BestRoute{}
	default:
		core.LogFatal("Strategy", "unknown strategy ", name)
		return nil
	}
}
