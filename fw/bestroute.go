package fw

import (
	"github.com/ndn-forwarder/kernel/core"
	"github.com/ndn-forwarder/kernel/dispatch"
	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/table"
)

// BestRoute forwards an Interest to the single best eligible nexthop
// (lowest status then cost), falling through to the next-best
// candidate if the top one is the incoming face or inadmissible, and
// stopping at the first RED candidate without sending.
// Grounded on the teacher's fw/bestroute.go, generalized from a linear
// lowest-cost scan to the FIB's full metric order so BestRoute also
// respects face status — the spec's second documented variant
// (§4.7's "other variants ... would alter only the face-selection
// policy within the same scaffold").
type BestRoute struct {
	Base
}

func (BestRoute) Name() string { return "best-route" }

func (s BestRoute) DoPropagateInterest(node *Node, faceIn dispatch.Face, interest *ndn.Interest, pitEntry *table.PitEntry) bool {
	if pitEntry.FibEntry == nil {
		return false
	}

	for _, metric := range pitEntry.FibEntry.Faces() {
		if metric.Status == table.StatusRed {
			break
		}
		if metric.Face.ID() == faceIn.ID() {
			continue
		}
		if !node.WillSendOutInterest(metric.Face, interest, pitEntry) {
			continue
		}

		if metric.Face.Send(interest) {
			core.LogTrace(core.TraceOutInterests, interest.Name.String(), "to", metric.Face.ID())
		} else {
			core.LogTrace(core.TraceDropInterests, interest.Name.String(), "send rejected by", metric.Face.ID())
		}
		s.DidSendOutInterest(node, metric.Face, interest, pitEntry)
		return true
	}
	return false
}
