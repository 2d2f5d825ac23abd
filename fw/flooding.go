package fw

import (
	"github.com/ndn-forwarder/kernel/core"
	"github.com/ndn-forwarder/kernel/dispatch"
	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/table"
)

// Flooding propagates an Interest to every eligible nexthop of the
// matched FIB entry (spec §4.7, Glossary), grounded on the teacher's
// fw/multicast.go and on original_source/model/fw/flooding.cc's
// DoPropagateInterest, which this kernel follows field-for-field: stop
// at the first RED metric, skip the incoming face, admit each
// remaining face through WillSendOutInterest, and rewrite the agent
// field on a freshly built packet when it is 1 (spec §9 open question
// 1 — confirmed against original_source, not guessed).
type Flooding struct {
	Base
}

func (Flooding) Name() string { return "flooding" }

func (s Flooding) DoPropagateInterest(node *Node, faceIn dispatch.Face, interest *ndn.Interest, pitEntry *table.PitEntry) bool {
	if pitEntry.FibEntry == nil {
		return false
	}

	propagated := 0
	for _, metric := range pitEntry.FibEntry.Faces() {
		if metric.Status == table.StatusRed {
			break // non-RED metrics sort first; nothing past here is eligible
		}
		if metric.Face.ID() == faceIn.ID() {
			continue
		}
		if !node.WillSendOutInterest(metric.Face, interest, pitEntry) {
			continue
		}

		out := interest
		if interest.Agent == 1 {
			out = interest.Copy()
			out.Agent = 2
		}

		if metric.Face.Send(out) {
			core.LogTrace(core.TraceOutInterests, interest.Name.String(), "to", metric.Face.ID())
		} else {
			core.LogTrace(core.TraceDropInterests, interest.Name.String(), "send rejected by", metric.Face.ID())
		}
		s.DidSendOutInterest(node, metric.Face, interest, pitEntry)
		propagated++
	}
	return propagated > 0
}
